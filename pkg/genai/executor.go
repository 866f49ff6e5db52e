package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// Doer performs a single HTTP request. *http.Client satisfies it; tests
// and callers that need custom transports inject their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// requestSpec describes one logical request for the executor.
type requestSpec struct {
	method string
	header http.Header
	body   []byte
}

// rawResponse is a successful (2xx) exchange.
type rawResponse struct {
	statusCode int
	header     http.Header
	body       []byte
}

// executor sends one logical HTTP request with a bounded retry budget.
// The delay between attempts is constant; there is no jitter and no
// exponential growth. After the final failed attempt the most recent
// error is returned (earlier attempts' errors are discarded).
type executor struct {
	doer       Doer
	retryCount int
	retryDelay time.Duration
	logger     hclog.Logger
}

func newExecutor(doer Doer, retryCount int, retryDelay time.Duration, logger hclog.Logger) *executor {
	if retryCount < 1 {
		retryCount = 1
	}
	return &executor{
		doer:       doer,
		retryCount: retryCount,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// executeRaw performs the request, retrying transport failures. A status
// in [200,300) is a success; anything else counts as a failed attempt.
func (e *executor) executeRaw(ctx context.Context, endpoint string, spec requestSpec) (*rawResponse, error) {
	var result *rawResponse

	attempt := 0
	operation := func() error {
		attempt++
		e.logger.Debug("sending request",
			"method", spec.method,
			"endpoint", endpoint,
			"attempt", attempt,
		)

		req, err := http.NewRequestWithContext(ctx, spec.method, endpoint, bytes.NewReader(spec.body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, vs := range spec.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := e.doer.Do(req)
		if err != nil {
			return &TransportError{Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		result = &rawResponse{
			statusCode: resp.StatusCode,
			header:     resp.Header,
			body:       body,
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.retryDelay), uint64(e.retryCount-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

// executeJSON performs the request and decodes the JSON body into out.
// An empty body yields an untouched out. A non-empty body that is not
// valid JSON is a terminal protocol violation: the remote contract is
// "success status implies well-formed body".
func (e *executor) executeJSON(ctx context.Context, endpoint string, spec requestSpec, out interface{}) error {
	resp, err := e.executeRaw(ctx, endpoint, spec)
	if err != nil {
		return err
	}
	if len(resp.body) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &ProtocolError{Reason: "response body is not valid JSON", Err: err}
	}
	return nil
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}
