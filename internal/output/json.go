package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes the snapshot as a JSON array.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
	rows   []Row
	done   bool
}

// NewJSONWriter creates a JSON writer. An empty indent produces compact output.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
		rows:   make([]Row, 0),
	}
}

// Write buffers a single row.
func (w *JSONWriter) Write(row Row) error {
	w.rows = append(w.rows, row)
	return nil
}

// WriteAll buffers multiple rows.
func (w *JSONWriter) WriteAll(rows []Row) error {
	w.rows = append(w.rows, rows...)
	return nil
}

// Flush writes the buffered rows. Only the first call produces output.
func (w *JSONWriter) Flush() error {
	if w.done {
		return nil
	}
	w.done = true

	var out []byte
	var err error
	if w.indent != "" {
		out, err = json.MarshalIndent(w.rows, "", w.indent)
	} else {
		out, err = json.Marshal(w.rows)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}
