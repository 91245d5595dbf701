// Package source reads raw complaint rows from the external spreadsheet
// collaborator and normalizes them into candidate records. It performs no
// deduplication and no persistence.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/nikhilraghav/complaintdesk/internal/config"
)

// Sentinel errors for source failures.
var (
	ErrSourceUnavailable = errors.New("complaint source unreachable")
	ErrSourceTimeout     = errors.New("complaint source timeout")
	ErrSourceFormat      = errors.New("complaint source returned malformed data")
)

// Row is one normalized candidate record, in source order.
type Row struct {
	OrderID string
	Fields  map[string]string
}

// Client is the interface for fetching complaint rows.
type Client interface {
	FetchRows(ctx context.Context) ([]Row, error)
}

// New constructs the configured source client.
func New(cfg config.SourceConfig) (Client, error) {
	switch cfg.Kind {
	case "sheets":
		return NewSheetsClient(cfg), nil
	case "file":
		return NewFileClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q: must be one of sheets, file", cfg.Kind)
	}
}

// SheetsClient implements Client against the Google Sheets values API.
// The first row of the fetched range is the header; every later row is
// one complaint.
type SheetsClient struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	readRange     string
	orderIDColumn string
	client        *http.Client
}

// NewSheetsClient creates a new SheetsClient.
func NewSheetsClient(cfg config.SourceConfig) *SheetsClient {
	return &SheetsClient{
		baseURL:       cfg.Sheets.BaseURL,
		apiKey:        cfg.Sheets.APIKey,
		spreadsheetID: cfg.Sheets.SpreadsheetID,
		readRange:     cfg.Sheets.Range,
		orderIDColumn: cfg.OrderIDColumn,
		client:        &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *SheetsClient) FetchRows(ctx context.Context) ([]Row, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.readRange))
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var sheetResp valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sheetResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFormat, err)
	}

	return normalizeGrid(sheetResp.Values, c.orderIDColumn), nil
}

// normalizeGrid turns a header-plus-values grid into Rows, preserving
// source order. Rows without an order id are skipped with a warning;
// partial reads never fail the whole fetch.
func normalizeGrid(grid [][]string, orderIDColumn string) []Row {
	if len(grid) < 2 {
		return []Row{}
	}

	header := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for i, raw := range grid[1:] {
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if col < len(raw) {
				fields[name] = raw[col]
			} else {
				fields[name] = "" // short rows are padded
			}
		}

		orderID := fields[orderIDColumn]
		if orderID == "" {
			slog.Warn("skipping malformed source row", "row", i+2, "reason", "missing order id")
			continue
		}

		rows = append(rows, Row{OrderID: orderID, Fields: fields})
	}
	return rows
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrSourceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrSourceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}

// valuesResponse mirrors the Sheets values API payload.
type valuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

var _ Client = (*SheetsClient)(nil)
