package genai

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAttachment_RoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x7f, 0xff, 0x10, 0x20}

	for mediaType := range supportedMediaTypes {
		t.Run(mediaType, func(t *testing.T) {
			encoded, err := EncodeAttachment(Attachment{
				Name:      "sample",
				MediaType: mediaType,
				Data:      payload,
			})
			require.NoError(t, err)

			decoded, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestEncodeAttachment_UnsupportedMediaType(t *testing.T) {
	_, err := EncodeAttachment(Attachment{
		Name:      "archive",
		MediaType: "application/zip",
		Data:      []byte("PK"),
	})

	var umt *UnsupportedMediaTypeError
	require.ErrorAs(t, err, &umt)
	assert.Equal(t, "application/zip", umt.MediaType)
}

func TestEncodeAttachmentDataURI(t *testing.T) {
	uri, err := EncodeAttachmentDataURI(Attachment{
		Name:      "note",
		MediaType: "text/plain",
		Data:      []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", uri)
}

func TestIsSupportedMediaType(t *testing.T) {
	assert.True(t, IsSupportedMediaType("application/pdf"))
	assert.True(t, IsSupportedMediaType("image/png"))
	assert.False(t, IsSupportedMediaType("video/mp4"))
	assert.False(t, IsSupportedMediaType(""))
}
