package entity

import (
	"context"
	"fmt"
	"sync"
)

// Collection is one named set of records. A mutex serialises each
// read-modify-write cycle so concurrent callers never lose updates, whatever
// latency the backend has.
type Collection struct {
	name  string
	key   string
	store *Store
	mu    sync.Mutex
}

func (s *Store) newCollection(name string) *Collection {
	return &Collection{name: name, key: s.key(name), store: s}
}

func (c *Collection) Name() string {
	return c.name
}

// Create stores a copy of data with a fresh id, the creation timestamp and the
// current profile's email. Caller-supplied id, created_date and created_by are
// discarded.
func (c *Collection) Create(ctx context.Context, data Record) (Record, error) {
	item, err := normalize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", c.name, err)
	}
	delete(item, FieldID)
	delete(item, FieldCreatedDate)
	delete(item, FieldCreatedBy)

	createdBy, err := c.store.Profiles.email(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.store.load(ctx, c.key)
	if err != nil {
		return nil, err
	}

	item[FieldID] = c.store.newID()
	item[FieldCreatedDate] = c.store.timestamp()
	item[FieldCreatedBy] = createdBy

	if err := c.store.save(ctx, c.key, append(items, item)); err != nil {
		return nil, err
	}
	return item, nil
}

// Filter returns matching records in the requested order. The result is
// decoded fresh from storage; changing it never changes stored state.
func (c *Collection) Filter(ctx context.Context, q Query) ([]Record, error) {
	match, err := normalize(q.Match)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s query: %w", c.name, err)
	}
	q.Match = match

	c.mu.Lock()
	items, err := c.store.load(ctx, c.key)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return apply(items, q), nil
}

// Get returns the record with the given id.
func (c *Collection) Get(ctx context.Context, id string) (Record, error) {
	c.mu.Lock()
	items, err := c.store.load(ctx, c.key)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
}

// Update shallow-merges patch into the record with the given id. id and
// created_date cannot be changed. Nothing is written when the id is unknown.
func (c *Collection) Update(ctx context.Context, id string, patch Record) (Record, error) {
	p, err := normalize(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s patch: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.store.load(ctx, c.key)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range items {
		if item.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}

	items[idx] = merge(items[idx], p)
	if err := c.store.save(ctx, c.key, items); err != nil {
		return nil, err
	}
	return items[idx], nil
}

// Delete removes the record with the given id. Unknown ids are a no-op.
func (c *Collection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.store.load(ctx, c.key)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return c.store.save(ctx, c.key, kept)
}
