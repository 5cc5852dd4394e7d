// Package sink provides destinations for export files.
//
// Every sink commits a file atomically: the caller's write function runs
// against a temporary handle, and the file only becomes visible under its
// final name once writing and closing both succeed. A failed write leaves
// nothing behind that looks like a finished export.
//
// Targets are selected with [Open]:
//
//	exports/            local directory (created if missing)
//	file:///srv/out     local directory
//	gs://bucket/prefix  Google Cloud Storage
//	mem://              in-process buffers (tests, previews)
package sink

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Sink is satisfied by every destination in this package.
type Sink interface {
	Write(ctx context.Context, name string, write func(io.Writer) error) (string, error)
}

// Closer is implemented by sinks that hold client connections.
type Closer interface {
	Close() error
}

// Open returns the sink for target.
func Open(ctx context.Context, target string) (Sink, error) {
	target = strings.TrimSpace(target)

	switch {
	case target == "":
		return nil, fmt.Errorf("empty output target")
	case strings.HasPrefix(target, "gs://"):
		bucket, prefix, err := parseGCSTarget(target)
		if err != nil {
			return nil, err
		}
		return NewGCS(ctx, bucket, prefix)
	case strings.HasPrefix(target, "mem://"):
		return NewMemory(), nil
	case strings.HasPrefix(target, "file://"):
		return NewDir(strings.TrimPrefix(target, "file://"))
	case strings.Contains(target, "://"):
		return nil, fmt.Errorf("unsupported output target %q", target)
	default:
		return NewDir(target)
	}
}

// validName rejects names that would escape the sink root.
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// contentType guesses a MIME type from the file extension.
func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
