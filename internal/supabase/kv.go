package supabase

import (
	"context"
	"fmt"
)

const entriesTable = "kv_entries"

type entryRow struct {
	EntryKey   string `json:"entry_key"`
	EntryValue string `json:"entry_value"`
}

// RESTBackend keeps entity collections in the kv_entries table through
// PostgREST. The table is created by the postgres migration.
type RESTBackend struct {
	client *Client
}

func NewRESTBackend(client *Client) *RESTBackend {
	return &RESTBackend{client: client}
}

// Get ignores ctx: the PostgREST client has no per-request context.
func (b *RESTBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var rows []entryRow
	_, err := b.client.Supabase.From(entriesTable).
		Select("entry_key,entry_value", "", false).
		Eq("entry_key", key).
		ExecuteTo(&rows)
	if err != nil {
		return nil, false, fmt.Errorf("failed to select %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return []byte(rows[0].EntryValue), true, nil
}

func (b *RESTBackend) Set(_ context.Context, key string, value []byte) error {
	row := entryRow{EntryKey: key, EntryValue: string(value)}
	_, _, err := b.client.Supabase.From(entriesTable).
		Upsert(row, "entry_key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

func (b *RESTBackend) Close() error { return nil }
