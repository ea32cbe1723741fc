// Package storage holds the blob stores that keep scholar images.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// KeyPrefix is the object prefix every uploaded image lives under.
const KeyPrefix = "uploads/"

// ImageStore writes and removes image objects addressed by key.
type ImageStore interface {
	// Upload stores body under key and returns a retrievable URL.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewImageKey returns uploads/<unix-millis>_<filename>. Directory components of
// filename are dropped.
func NewImageKey(now time.Time, filename string) string {
	return fmt.Sprintf("%s%d_%s", KeyPrefix, now.UnixMilli(), baseName(filename))
}

// KeyFromURL recovers the object key from a URL returned by Upload, using the
// last path segment under KeyPrefix.
func KeyFromURL(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return KeyPrefix + path.Base(u.Path)
	}
	return KeyPrefix + path.Base(raw)
}

// objectName strips KeyPrefix from key.
func objectName(key string) string {
	return strings.TrimPrefix(key, KeyPrefix)
}

func baseName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	name := path.Base(filename)
	if name == "." || name == "/" || name == ".." {
		return "image"
	}
	return name
}
