package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nikhilraghav/complaintdesk/internal/config"
	"gopkg.in/yaml.v3"
)

// FileClient implements Client from a YAML fixture file. It is used for
// local development and for seeding sample complaints.
//
// File layout:
//
//	complaints:
//	  - Order ID: "ORD-2024-001"
//	    Name: "John Doe"
//	    Description: "..."
type FileClient struct {
	path          string
	orderIDColumn string
}

// NewFileClient creates a new FileClient.
func NewFileClient(cfg config.SourceConfig) *FileClient {
	return &FileClient{
		path:          cfg.File.Path,
		orderIDColumn: cfg.OrderIDColumn,
	}
}

func (c *FileClient) FetchRows(_ context.Context) ([]Row, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var doc struct {
		Complaints []map[string]string `yaml:"complaints"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceFormat, err)
	}

	rows := make([]Row, 0, len(doc.Complaints))
	for i, fields := range doc.Complaints {
		orderID := fields[c.orderIDColumn]
		if orderID == "" {
			slog.Warn("skipping malformed source row", "row", i+1, "reason", "missing order id")
			continue
		}
		rows = append(rows, Row{OrderID: orderID, Fields: fields})
	}
	return rows, nil
}

var _ Client = (*FileClient)(nil)
