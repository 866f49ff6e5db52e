package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutor(doer Doer, retryCount int, retryDelay time.Duration) *executor {
	return newExecutor(doer, retryCount, retryDelay, hclog.NewNullLogger())
}

func TestExecutor_RetriesUntilSuccess(t *testing.T) {
	// Two 500s, then a 200 with a body. Three requests total, two
	// delayed waits between them.
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	delay := 30 * time.Millisecond
	exec := testExecutor(server.Client(), 3, delay)

	start := time.Now()
	var out struct {
		OK bool `json:"ok"`
	}
	err := exec.executeJSON(context.Background(), server.URL, requestSpec{method: http.MethodPost}, &out)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}

func TestExecutor_LastErrorWins(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "first failure", http.StatusInternalServerError)
			return
		}
		http.Error(w, "second failure", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 2, time.Millisecond)

	err := exec.executeJSON(context.Background(), server.URL, requestSpec{method: http.MethodPost}, nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Contains(t, te.Body, "second failure")
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecutor_DefaultIsSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 1, time.Millisecond)

	err := exec.executeJSON(context.Background(), server.URL, requestSpec{method: http.MethodPost}, nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecutor_InvalidJSONIsTerminal(t *testing.T) {
	// A 2xx with a broken body violates the remote contract; the
	// executor must not burn retries on it.
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok":`))
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 3, time.Millisecond)

	var out map[string]any
	err := exec.executeJSON(context.Background(), server.URL, requestSpec{method: http.MethodPost}, &out)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecutor_EmptyBodyIsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 1, time.Millisecond)

	var out map[string]any
	err := exec.executeJSON(context.Background(), server.URL, requestSpec{method: http.MethodPost}, &out)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecutor_SendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-Custom"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 1, time.Millisecond)

	header := jsonHeader()
	header.Set("X-Custom", "v")
	err := exec.executeJSON(context.Background(), server.URL, requestSpec{
		method: http.MethodPost,
		header: header,
		body:   []byte(`{"x":1}`),
	}, nil)
	require.NoError(t, err)
}

func TestExecutor_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try again", http.StatusInternalServerError)
	}))
	defer server.Close()

	exec := testExecutor(server.Client(), 5, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := exec.executeJSON(ctx, server.URL, requestSpec{method: http.MethodPost}, nil)
	require.Error(t, err)
}
