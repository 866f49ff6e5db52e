package docconvert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	var deleted bool

	mux := http.NewServeMux()
	mux.HandleFunc("/upload/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"file-1"}`))
	})
	mux.HandleFunc("/drive/v3/files/file-1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MimePDF, r.URL.Query().Get("mimeType"))
		w.Write([]byte("%PDF-1.4 converted"))
	})
	mux.HandleFunc("/drive/v3/files/file-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"file-1"}`))
		case http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		}
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(context.Background(), Config{
		HTTPClient:   server.Client(),
		Endpoint:     server.URL,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	out, err := client.Convert(context.Background(), "report.md", MimeText, []byte("# Report"), MimePDF)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 converted", string(out))
	assert.True(t, deleted)
}

func TestConvert_BoundedWait(t *testing.T) {
	gets := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/upload/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"file-2"}`))
	})
	mux.HandleFunc("/drive/v3/files/file-2", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		gets++
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(context.Background(), Config{
		HTTPClient:   server.Client(),
		Endpoint:     server.URL,
		PollInterval: time.Millisecond,
		PollAttempts: 3,
	})
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), "x", MimeText, []byte("x"), MimePDF)
	require.Error(t, err)
	assert.Equal(t, 3, gets)
}

func TestExport(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files/doc-9/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MimeText, r.URL.Query().Get("mimeType"))
		w.Write([]byte("plain text body"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(context.Background(), Config{
		HTTPClient: server.Client(),
		Endpoint:   server.URL,
	})
	require.NoError(t, err)

	out, err := client.Export(context.Background(), "doc-9", MimeText)
	require.NoError(t, err)
	assert.Equal(t, "plain text body", string(out))
}
