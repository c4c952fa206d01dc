// Package entity is the document store behind projects, generated assets and
// the local profile. Every collection is a JSON array persisted under a single
// key-value entry and rewritten whole on each mutation.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"genr8-backend/internal/kv"
)

const (
	DefaultPrefix = "genr8_"

	CollectionProjects = "projects"
	CollectionAssets   = "assets"
	CollectionUsers    = "users"
)

// TimestampLayout is the creation timestamp format. Lexical order equals
// chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var ErrNotFound = errors.New("not found")

// NewID returns a time-ordered unique identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store is the application context holding every collection and the profile.
// Pass it explicitly to whatever needs persisted state.
type Store struct {
	backend kv.Backend
	prefix  string
	now     func() time.Time
	newID   func() string
	log     zerolog.Logger

	Projects *Collection
	Assets   *Collection
	Profiles *Profiles
}

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  DefaultPrefix,
		now:     time.Now,
		newID:   NewID,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "entity_store").Logger()

	s.Profiles = &Profiles{store: s, key: s.key(CollectionUsers)}
	s.Projects = s.newCollection(CollectionProjects)
	s.Assets = s.newCollection(CollectionAssets)
	return s
}

// Collection resolves a collection by name, for callers that address
// collections dynamically.
func (s *Store) Collection(name string) (*Collection, error) {
	switch name {
	case CollectionProjects:
		return s.Projects, nil
	case CollectionAssets:
		return s.Assets, nil
	default:
		return nil, fmt.Errorf("unknown collection %q: %w", name, ErrNotFound)
	}
}

func (s *Store) key(collection string) string {
	return s.prefix + collection
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// load decodes the array stored under key. A missing key is an empty
// collection; so is a document that no longer decodes, which is logged.
func (s *Store) load(ctx context.Context, key string) ([]Record, error) {
	data, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return []Record{}, nil
	}

	var items []Record
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stored collection is not valid JSON, treating as empty")
		return []Record{}, nil
	}
	if items == nil {
		items = []Record{}
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, key string, items []Record) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("storage write failed")
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
