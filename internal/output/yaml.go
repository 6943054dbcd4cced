package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes the snapshot as a YAML sequence.
type YAMLWriter struct {
	w    *bufio.Writer
	rows []Row
	done bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:    bufio.NewWriter(w),
		rows: make([]Row, 0),
	}
}

// Write buffers a single row.
func (w *YAMLWriter) Write(row Row) error {
	w.rows = append(w.rows, row)
	return nil
}

// WriteAll buffers multiple rows.
func (w *YAMLWriter) WriteAll(rows []Row) error {
	w.rows = append(w.rows, rows...)
	return nil
}

// Flush writes the buffered rows. Only the first call produces output.
func (w *YAMLWriter) Flush() error {
	if w.done {
		return nil
	}
	w.done = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(w.rows); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
