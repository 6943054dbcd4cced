package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmylchreest/dropwatch/internal/auction"
)

// SnapshotFile overwrites a file with the full ledger on every Save. The new
// content is written to a temporary file in the same directory and renamed
// into place, so readers never observe a partial snapshot.
type SnapshotFile struct {
	path   string
	format Format
}

// NewSnapshotFile validates format and returns a snapshot target.
func NewSnapshotFile(path string, format Format) (*SnapshotFile, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	if _, err := NewWriter(&bytes.Buffer{}, format); err != nil {
		return nil, err
	}
	return &SnapshotFile{path: path, format: format}, nil
}

// Path returns the snapshot location.
func (s *SnapshotFile) Path() string { return s.path }

// Format returns the snapshot format.
func (s *SnapshotFile) Format() Format { return s.format }

// Save writes recs and returns the snapshot size in bytes.
func (s *SnapshotFile) Save(recs []auction.Record) (int64, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, s.format)
	if err != nil {
		return 0, err
	}
	if err := w.WriteAll(FromRecords(recs)); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing snapshot: %w", err)
	}
	// CreateTemp uses 0600.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return 0, fmt.Errorf("replacing snapshot %s: %w", s.path, err)
	}

	return int64(buf.Len()), nil
}
