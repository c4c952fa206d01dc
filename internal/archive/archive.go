// Package archive stores exported images and hands back a URL for them.
package archive

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("invalid archive key")

// Archiver persists one object and returns where it can be fetched.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}

// cleanKey rejects keys that would escape the archive root.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return "", ErrInvalidKey
		}
	}
	return key, nil
}
