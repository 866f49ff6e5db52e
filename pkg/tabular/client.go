// Package tabular reads and writes spreadsheet rows through the Google
// Sheets values API. It is a straight request/response wrapper with no
// decision logic of its own.
package tabular

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config holds configuration for the tabular client.
type Config struct {
	// SpreadsheetID identifies the spreadsheet all operations target.
	SpreadsheetID string

	// HTTPClient is the authenticated transport to use.
	HTTPClient *http.Client

	// Endpoint overrides the Sheets API endpoint (tests).
	Endpoint string

	Logger hclog.Logger // logger (optional)
}

// Client wraps the Sheets values API for row-level CRUD.
type Client struct {
	sheets        *sheets.Service
	spreadsheetID string
	logger        hclog.Logger
}

// NewClient creates a tabular data client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
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

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		sheets:        svc,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        cfg.Logger.Named("tabular-client"),
	}, nil
}

// Read returns the values in the given A1-notation range.
func (c *Client) Read(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := c.sheets.Spreadsheets.Values.Get(c.spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}
	return resp.Values, nil
}

// Append adds rows after the last row of the given range.
func (c *Client) Append(ctx context.Context, writeRange string, rows [][]interface{}) error {
	body := &sheets.ValueRange{Values: rows}

	_, err := c.sheets.Spreadsheets.Values.Append(c.spreadsheetID, writeRange, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to range %s: %w", writeRange, err)
	}

	c.logger.Debug("appended rows", "range", writeRange, "rows", len(rows))
	return nil
}

// Update overwrites the values in the given range.
func (c *Client) Update(ctx context.Context, writeRange string, rows [][]interface{}) error {
	body := &sheets.ValueRange{Values: rows}

	_, err := c.sheets.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", writeRange, err)
	}

	c.logger.Debug("updated rows", "range", writeRange, "rows", len(rows))
	return nil
}

// Clear removes the values in the given range, leaving formatting
// intact.
func (c *Client) Clear(ctx context.Context, clearRange string) error {
	_, err := c.sheets.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear range %s: %w", clearRange, err)
	}
	return nil
}
