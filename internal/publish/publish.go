// Package publish uploads finished snapshots to object storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/logger"
	"github.com/jmylchreest/dropwatch/internal/output"
)

// Uploader stores one object.
type Uploader interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Publisher uploads snapshot files under a dated key.
type Publisher struct {
	uploader Uploader
	prefix   string
	now      func() time.Time
}

// New creates a publisher writing under prefix.
func New(up Uploader, prefix string) *Publisher {
	return &Publisher{uploader: up, prefix: prefix, now: time.Now}
}

// Publish uploads the file at localPath and returns the object key.
func (p *Publisher) Publish(ctx context.Context, localPath string, format output.Format) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	key := ObjectKey(p.prefix, p.now(), localPath)
	if err := p.uploader.Put(ctx, key, f, output.ContentType(format)); err != nil {
		return "", fmt.Errorf("publish %s: %w", key, err)
	}

	logger.Info("snapshot published", "key", key)
	return key, nil
}

// ObjectKey builds <prefix>/<YYYY-MM-DD>/<basename>. An empty prefix is
// omitted.
func ObjectKey(prefix string, at time.Time, localPath string) string {
	parts := []string{at.Format(auction.DateLayout), filepath.Base(localPath)}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append([]string{p}, parts...)
	}
	return path.Join(parts...)
}
