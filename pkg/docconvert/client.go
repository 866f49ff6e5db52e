// Package docconvert converts documents between formats through Google
// Drive: bytes are imported as a Google Doc and exported in the target
// format. It is a straight request/response wrapper with no decision
// logic of its own.
package docconvert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Export MIME types commonly used by callers.
const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeHTML = "text/html"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mimeGoogleDoc = "application/vnd.google-apps.document"
)

// Config holds configuration for the conversion client.
type Config struct {
	// HTTPClient is the authenticated transport to use. Required unless
	// ambient application-default credentials should be used.
	HTTPClient *http.Client

	// Endpoint overrides the Drive API endpoint (tests).
	Endpoint string

	// PollInterval and PollAttempts bound the fixed-sleep wait for a
	// newly imported file to become available (default: 2s, 5).
	PollInterval time.Duration
	PollAttempts int

	Logger hclog.Logger // logger (optional)
}

// Client wraps the Drive API for one-shot document conversions.
type Client struct {
	drive  *drive.Service
	cfg    Config
	logger hclog.Logger
}

// NewClient creates a document conversion client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{
		drive:  svc,
		cfg:    cfg,
		logger: cfg.Logger.Named("docconvert-client"),
	}, nil
}

// Convert imports the given bytes as a Google Doc, exports them in the
// target format, and deletes the intermediate file.
func (c *Client) Convert(ctx context.Context, name, sourceMime string, data []byte, targetMime string) ([]byte, error) {
	file := &drive.File{
		Name:     name,
		MimeType: mimeGoogleDoc,
	}

	created, err := c.drive.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType(sourceMime)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to import document: %w", err)
	}

	defer func() {
		if err := c.drive.Files.Delete(created.Id).Context(ctx).Do(); err != nil {
			c.logger.Warn("failed to delete intermediate file", "id", created.Id, "error", err)
		}
	}()

	if err := c.waitForFile(ctx, created.Id); err != nil {
		return nil, err
	}

	out, err := c.Export(ctx, created.Id, targetMime)
	if err != nil {
		return nil, err
	}

	c.logger.Info("converted document",
		"name", name,
		"source_mime", sourceMime,
		"target_mime", targetMime,
		"bytes", len(out),
	)
	return out, nil
}

// Export downloads an existing Drive file in the requested format.
func (c *Client) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := c.drive.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export body: %w", err)
	}
	return data, nil
}

// waitForFile waits for an imported file to become retrievable: a
// bounded loop with a fixed sleep, not a protocol.
func (c *Client) waitForFile(ctx context.Context, fileID string) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.cfg.PollInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		_, lastErr = c.drive.Files.Get(fileID).Fields("id").Context(ctx).Do()
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("file %s not available after %d attempts: %w", fileID, c.cfg.PollAttempts, lastErr)
}
