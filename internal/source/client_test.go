package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikhilraghav/complaintdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheetsConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Kind:          "sheets",
		Timeout:       5 * time.Second,
		OrderIDColumn: "Order ID",
		Sheets: config.SheetsConfig{
			BaseURL:       baseURL,
			APIKey:        "test-key",
			SpreadsheetID: "sheet-1",
			Range:         "Responses!A:Z",
		},
	}
}

func sheetsServer(t *testing.T, grid [][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Responses!A:Z", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(valuesResponse{
			Range:          "Responses!A1:C3",
			MajorDimension: "ROWS",
			Values:         grid,
		})
	}))
}

func TestSheetsFetchRows(t *testing.T) {
	srv := sheetsServer(t, [][]string{
		{"Timestamp", "Order ID", "Complaint"},
		{"2024-01-05 10:00:00", "ORD-1001", "arrived broken"},
		{"2024-01-06 11:30:00", "ORD-1002", "wrong color"},
	})
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	rows, err := c.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ORD-1001", rows[0].OrderID)
	assert.Equal(t, "arrived broken", rows[0].Fields["Complaint"])
	assert.Equal(t, "2024-01-05 10:00:00", rows[0].Fields["Timestamp"])
	assert.Equal(t, "ORD-1002", rows[1].OrderID)
}

func TestSheetsFetchRows_ShortRowsPadded(t *testing.T) {
	srv := sheetsServer(t, [][]string{
		{"Order ID", "Complaint", "Product"},
		{"ORD-2001", "late delivery"},
	})
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	rows, err := c.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Missing trailing cells come back as empty strings, not absent keys.
	product, ok := rows[0].Fields["Product"]
	assert.True(t, ok)
	assert.Equal(t, "", product)
}

func TestSheetsFetchRows_SkipsRowsWithoutOrderID(t *testing.T) {
	srv := sheetsServer(t, [][]string{
		{"Order ID", "Complaint"},
		{"", "who sent this"},
		{"ORD-3001", "damaged box"},
	})
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	rows, err := c.FetchRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD-3001", rows[0].OrderID)
}

func TestSheetsFetchRows_EmptyAndHeaderOnly(t *testing.T) {
	for name, grid := range map[string][][]string{
		"empty":       {},
		"header only": {{"Order ID", "Complaint"}},
	} {
		t.Run(name, func(t *testing.T) {
			srv := sheetsServer(t, grid)
			defer srv.Close()

			c := NewSheetsClient(sheetsConfig(srv.URL))
			rows, err := c.FetchRows(context.Background())
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestSheetsFetchRows_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	_, err := c.FetchRows(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSheetsFetchRows_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	_, err := c.FetchRows(context.Background())
	assert.ErrorIs(t, err, ErrSourceFormat)
}

func TestSheetsFetchRows_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewSheetsClient(sheetsConfig(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchRows(ctx)
	assert.ErrorIs(t, err, ErrSourceTimeout)
}

func TestSheetsFetchRows_Unreachable(t *testing.T) {
	cfg := sheetsConfig("http://127.0.0.1:1")
	c := NewSheetsClient(cfg)

	_, err := c.FetchRows(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestNormalizeGrid_PreservesSourceOrder(t *testing.T) {
	rows := normalizeGrid([][]string{
		{"Order ID"},
		{"ORD-C"},
		{"ORD-A"},
		{"ORD-B"},
	}, "Order ID")

	require.Len(t, rows, 3)
	assert.Equal(t, "ORD-C", rows[0].OrderID)
	assert.Equal(t, "ORD-A", rows[1].OrderID)
	assert.Equal(t, "ORD-B", rows[2].OrderID)
}

func TestNormalizeGrid_IgnoresUnnamedColumns(t *testing.T) {
	rows := normalizeGrid([][]string{
		{"Order ID", "", "Complaint"},
		{"ORD-1", "stray", "too salty"},
	}, "Order ID")

	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{
		"Order ID":  "ORD-1",
		"Complaint": "too salty",
	}, rows[0].Fields)
}

func TestClassifyError(t *testing.T) {
	err := classifyError(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrSourceTimeout)

	err = classifyError(errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestNew(t *testing.T) {
	t.Run("sheets", func(t *testing.T) {
		c, err := New(sheetsConfig("http://localhost"))
		require.NoError(t, err)
		assert.IsType(t, &SheetsClient{}, c)
	})

	t.Run("file", func(t *testing.T) {
		c, err := New(config.SourceConfig{Kind: "file", File: config.FileConfig{Path: "x.yaml"}})
		require.NoError(t, err)
		assert.IsType(t, &FileClient{}, c)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(config.SourceConfig{Kind: "fax"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown source kind")
	})
}
