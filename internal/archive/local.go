package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalArchive writes objects under a directory served at baseURL.
type LocalArchive struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

func NewLocalArchive(basePath, baseURL string, log zerolog.Logger) (*LocalArchive, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		log:      log.With().Str("component", "local-archive").Logger(),
	}, nil
}

func (l *LocalArchive) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("export archived")

	if l.baseURL == "" {
		return fullPath, nil
	}
	return l.baseURL + "/" + key, nil
}
