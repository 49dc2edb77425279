// Package storage keeps uploaded scan videos somewhere ffmpeg can read them.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when an upload exceeds the store's limit.
	ErrTooLarge = errors.New("storage: upload too large")
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("storage: object not found")
)

// Object is a stored upload. Path is always a local file.
type Object struct {
	Key         string
	Path        string
	Size        int64
	ContentType string
}

// Store saves uploads and opens them again by key.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (Object, error)
}

// NewKey builds a unique, filesystem-safe key for an uploaded file name.
func NewKey(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		clean = "upload"
	}
	return uuid.NewString() + "_" + clean
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && !strings.HasPrefix(key, ".")
}

// copyLimited copies at most max bytes (no limit when max <= 0).
func copyLimited(dst io.Writer, src io.Reader, max int64) (int64, error) {
	if max <= 0 {
		return io.Copy(dst, src)
	}
	n, err := io.Copy(dst, io.LimitReader(src, max+1))
	if err != nil {
		return n, err
	}
	if n > max {
		return n, ErrTooLarge
	}
	return n, nil
}
