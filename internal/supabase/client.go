// Package supabase adapts a Supabase project into the entity store's
// key-value backend (PostgREST) and the export archive (Storage).
package supabase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

type Client struct {
	Supabase *supabase.Client
	URL      string
	Key      string
}

func NewClient(url, key string) (*Client, error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}

	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{Schema: "public"})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		URL:      url,
		Key:      key,
	}, nil
}
