package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Upload protocol headers. The "resumable" protocol here is a two-phase
// registration: start a session, then a single combined upload-and-
// finalize call. No partial-chunk resumption exists; a failure at either
// phase is terminal for the attempt and the caller restarts from Start.
const (
	headerUploadProtocol      = "X-Goog-Upload-Protocol"
	headerUploadCommand       = "X-Goog-Upload-Command"
	headerUploadOffset        = "X-Goog-Upload-Offset"
	headerUploadURL           = "X-Goog-Upload-URL"
	headerUploadContentLength = "X-Goog-Upload-Header-Content-Length"
	headerUploadContentType   = "X-Goog-Upload-Header-Content-Type"
)

// uploadState tracks the session through its one-way life cycle:
// notStarted -> sessionStarted -> finalized, or failed from either
// phase.
type uploadState int

const (
	uploadNotStarted uploadState = iota
	uploadSessionStarted
	uploadFinalized
	uploadFailed
)

// uploadSession is ephemeral protocol state, owned by the single Upload
// call that created it and discarded afterwards.
type uploadSession struct {
	exec     *executor
	endpoint string
	apiKey   string

	state       uploadState
	uploadURL   string
	totalBytes  int
	mediaType   string
	displayName string
}

type uploadStartBody struct {
	File struct {
		DisplayName string `json:"display_name"`
	} `json:"file"`
}

// uploadFinalizeBody tolerates both the nested and the flat response
// shape for the finalize call.
type uploadFinalizeBody struct {
	File     *FileRef `json:"file"`
	URI      string   `json:"uri"`
	MimeType string   `json:"mimeType"`
}

func validateUploadAttachment(a Attachment) error {
	return validation.Errors{
		"name":      validation.Validate(a.Name, validation.Required),
		"mediaType": validation.Validate(a.MediaType, validation.Required),
		"data":      validation.Validate(a.Data, validation.Required),
	}.Filter()
}

// start opens an upload session. The session URL must arrive in the
// X-Goog-Upload-URL response header; its absence is a protocol
// violation even on a success status.
func (s *uploadSession) start(ctx context.Context) error {
	if s.state != uploadNotStarted {
		return fmt.Errorf("upload session already started")
	}

	var body uploadStartBody
	body.File.DisplayName = s.displayName
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal upload start: %w", err)
	}

	header := jsonHeader()
	header.Set(headerUploadProtocol, "resumable")
	header.Set(headerUploadCommand, "start")
	header.Set(headerUploadContentLength, strconv.Itoa(s.totalBytes))
	header.Set(headerUploadContentType, s.mediaType)

	endpoint := s.endpoint + "?key=" + s.apiKey

	resp, err := s.exec.executeRaw(ctx, endpoint, requestSpec{
		method: http.MethodPost,
		header: header,
		body:   payload,
	})
	if err != nil {
		s.state = uploadFailed
		return err
	}

	uploadURL := resp.header.Get(headerUploadURL)
	if uploadURL == "" {
		s.state = uploadFailed
		return &ProtocolError{Reason: "upload start response is missing the " + headerUploadURL + " header"}
	}

	s.uploadURL = uploadURL
	s.state = uploadSessionStarted
	return nil
}

// uploadAndFinalize streams the full payload to the session URL with an
// explicit zero offset and a combined upload-and-finalize command. The
// session URL is scoped; no further credential is attached. A success
// response lacking a file URI is a protocol violation and is never
// retried.
func (s *uploadSession) uploadAndFinalize(ctx context.Context, data []byte) (*FileRef, error) {
	if s.state != uploadSessionStarted {
		return nil, fmt.Errorf("upload session is not started")
	}

	header := make(http.Header)
	header.Set("Content-Type", s.mediaType)
	header.Set(headerUploadCommand, "upload, finalize")
	header.Set(headerUploadOffset, "0")

	resp, err := s.exec.executeRaw(ctx, s.uploadURL, requestSpec{
		method: http.MethodPost,
		header: header,
		body:   data,
	})
	if err != nil {
		s.state = uploadFailed
		return nil, err
	}

	var body uploadFinalizeBody
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &body); err != nil {
			s.state = uploadFailed
			return nil, &ProtocolError{Reason: "upload finalize body is not valid JSON", Err: err}
		}
	}

	ref := body.File
	if ref == nil {
		ref = &FileRef{URI: body.URI, MimeType: body.MimeType}
	}
	if ref.URI == "" {
		s.state = uploadFailed
		return nil, &ProtocolError{Reason: "upload finalize response is missing the file URI"}
	}
	if ref.MimeType == "" {
		ref.MimeType = s.mediaType
	}

	s.state = uploadFinalized
	return ref, nil
}
