// Package output handles snapshot formatting and writing.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/dropwatch/internal/auction"
)

// Format represents output format types.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Columns is the snapshot header, in order.
var Columns = []string{"Domain", "Price", "Status", "Date", "Type", "Bids"}

// Row is one snapshot line.
type Row struct {
	Domain string `json:"Domain" yaml:"Domain"`
	Price  string `json:"Price" yaml:"Price"`
	Status string `json:"Status" yaml:"Status"`
	Date   string `json:"Date" yaml:"Date"`
	Type   string `json:"Type" yaml:"Type"`
	Bids   string `json:"Bids" yaml:"Bids"`
}

// Fields returns the row values in Columns order.
func (r Row) Fields() []string {
	return []string{r.Domain, r.Price, r.Status, r.Date, r.Type, r.Bids}
}

// FromRecord converts a ledger record into a snapshot row.
func FromRecord(rec auction.Record) Row {
	return Row{
		Domain: rec.Domain,
		Price:  rec.Price,
		Status: string(rec.Status),
		Date:   rec.Date,
		Type:   rec.Type,
		Bids:   rec.Bids,
	}
}

// FromRecords converts records preserving order.
func FromRecords(recs []auction.Record) []Row {
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = FromRecord(rec)
	}
	return rows
}

// Writer handles snapshot serialization.
type Writer interface {
	// Write outputs a single row.
	Write(row Row) error

	// WriteAll outputs multiple rows.
	WriteAll(rows []Row) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w, "  "), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ContentType returns the MIME type of a snapshot in format.
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}
