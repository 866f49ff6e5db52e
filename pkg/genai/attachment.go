package genai

import (
	"encoding/base64"
	"fmt"
)

// Attachment is a binary payload with a declared media type. Name is
// used as the display name when the attachment is registered with the
// file service.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// Media types the remote API accepts, grouped by kind. Anything not in
// this table is rejected before transmission.
var supportedMediaTypes = map[string]string{
	// documents
	"application/pdf": "document",
	"application/rtf": "document",

	// text
	"text/plain":       "text",
	"text/markdown":    "text",
	"text/html":        "text",
	"text/csv":         "text",
	"text/xml":         "text",
	"application/json": "text",

	// images
	"image/png":  "image",
	"image/jpeg": "image",
	"image/webp": "image",
	"image/heic": "image",
	"image/heif": "image",

	// audio
	"audio/mpeg": "audio",
	"audio/mp3":  "audio",
	"audio/wav":  "audio",
	"audio/ogg":  "audio",
	"audio/flac": "audio",
	"audio/aac":  "audio",
}

// IsSupportedMediaType reports whether the remote API accepts the given
// media type for attachments.
func IsSupportedMediaType(mediaType string) bool {
	_, ok := supportedMediaTypes[mediaType]
	return ok
}

// EncodeAttachment base64-encodes the attachment's bytes. It fails with
// UnsupportedMediaTypeError before performing any transformation when
// the declared media type is not in the supported table.
func EncodeAttachment(a Attachment) (string, error) {
	if !IsSupportedMediaType(a.MediaType) {
		return "", &UnsupportedMediaTypeError{MediaType: a.MediaType}
	}
	return base64.StdEncoding.EncodeToString(a.Data), nil
}

// EncodeAttachmentDataURI encodes the attachment as a data URI.
func EncodeAttachmentDataURI(a Attachment) (string, error) {
	encoded, err := EncodeAttachment(a)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", a.MediaType, encoded), nil
}
