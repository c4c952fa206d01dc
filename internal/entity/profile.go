package entity

import (
	"context"
	"fmt"
	"sync"
)

const (
	DefaultEmail   = "local@user.com"
	DefaultCredits = 1000
)

// Profiles exposes the single local profile, provisioning it on first access.
type Profiles struct {
	store *Store
	key   string
	mu    sync.Mutex
}

func (p *Profiles) defaultProfile() Record {
	return Record{
		FieldID:             p.store.newID(),
		"email":             DefaultEmail,
		"credits":           float64(DefaultCredits),
		"total_generations": float64(0),
		FieldCreatedDate:    p.store.timestamp(),
	}
}

// current loads the profile list, provisioning the default profile when the
// list is empty. Must be called with p.mu held.
func (p *Profiles) current(ctx context.Context) ([]Record, error) {
	users, err := p.store.load(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return users, nil
	}

	users = []Record{p.defaultProfile()}
	if err := p.store.save(ctx, p.key, users); err != nil {
		return nil, err
	}
	p.store.log.Info().Str("email", DefaultEmail).Msg("provisioned default profile")
	return users, nil
}

func (p *Profiles) Me(ctx context.Context) (Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	users, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// UpdateMe shallow-merges patch into the profile. Values are not validated.
func (p *Profiles) UpdateMe(ctx context.Context, patch Record) (Record, error) {
	norm, err := normalize(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile patch: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	users, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	users[0] = merge(users[0], norm)
	if err := p.store.save(ctx, p.key, users); err != nil {
		return nil, err
	}
	return users[0], nil
}

// Charge deducts n credits, clamping at zero, and counts n generations.
func (p *Profiles) Charge(ctx context.Context, n int) (Record, error) {
	if n < 0 {
		return nil, fmt.Errorf("charge must not be negative: %d", n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	users, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	me := users[0]
	me["credits"] = float64(max(0, me.Int("credits")-n))
	me["total_generations"] = float64(me.Int("total_generations") + n)

	if err := p.store.save(ctx, p.key, users); err != nil {
		return nil, err
	}
	return me, nil
}

// email is the created_by stamp for new records. It does not provision.
func (p *Profiles) email(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	users, err := p.store.load(ctx, p.key)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return DefaultEmail, nil
	}
	if email := users[0].String("email"); email != "" {
		return email, nil
	}
	return DefaultEmail, nil
}
