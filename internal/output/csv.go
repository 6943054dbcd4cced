package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
)

// CSVWriter writes snapshot rows as CSV with a header line.
type CSVWriter struct {
	w             *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (w *CSVWriter) header() error {
	if w.headerWritten {
		return nil
	}
	w.headerWritten = true
	return w.w.Write(Columns)
}

// Write writes a single row, emitting the header first if needed.
func (w *CSVWriter) Write(row Row) error {
	if err := w.header(); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := w.w.Write(row.Fields()); err != nil {
		return fmt.Errorf("writing CSV row: %w", err)
	}
	return nil
}

// WriteAll writes multiple rows.
func (w *CSVWriter) WriteAll(rows []Row) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header for empty snapshots and flushes buffered rows.
func (w *CSVWriter) Flush() error {
	if err := w.header(); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}

// ErrBadHeader is returned by ReadCSV when the header does not match Columns.
var ErrBadHeader = errors.New("unexpected snapshot header")

// ReadCSV parses a CSV snapshot.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if !slices.Equal(header, Columns) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, Row{
			Domain: rec[0],
			Price:  rec[1],
			Status: rec[2],
			Date:   rec[3],
			Type:   rec[4],
			Bids:   rec[5],
		})
	}
	return rows, nil
}
