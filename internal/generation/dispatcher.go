// Package generation turns prompts into image URLs. A failed call never
// surfaces as an error: the caller gets a placeholder image and the cause.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"genr8-backend/internal/metrics"
)

const DefaultPlaceholderBaseURL = "https://picsum.photos/512/512"

// Generator is the upstream text-to-image call.
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	Prompt string `json:"prompt"`
	// ExistingImageURLs is accepted for compatibility and not sent upstream.
	ExistingImageURLs []string `json:"existing_image_urls,omitempty"`
}

type Image struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

type Result struct {
	Image    Image
	Fallback bool
	Cause    error
}

type Dispatcher struct {
	generator   Generator
	placeholder string
	newID       func() string
	now         func() time.Time
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

type Option func(*Dispatcher)

func WithPlaceholderBaseURL(base string) Option {
	return func(d *Dispatcher) {
		if base != "" {
			d.placeholder = base
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

func NewDispatcher(generator Generator, newID func() string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		generator:   generator,
		placeholder: DefaultPlaceholderBaseURL,
		newID:       newID,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("component", "generation").Logger()
	return d
}

// Generate calls the generator once. On any failure the result carries a
// placeholder URL, Fallback set and the underlying cause.
func (d *Dispatcher) Generate(ctx context.Context, req Request) Result {
	if len(req.ExistingImageURLs) > 0 {
		d.log.Debug().Int("count", len(req.ExistingImageURLs)).Msg("existing image urls are not forwarded")
	}

	url, err := d.generator.GenerateImage(ctx, req.Prompt)
	if err != nil {
		d.log.Warn().Err(err).Msg("image generation failed, using placeholder")
		d.metrics.ObserveGeneration(true)
		return Result{
			Image: Image{
				ID:    d.newID(),
				URL:   d.PlaceholderURL(),
				Error: err.Error(),
			},
			Fallback: true,
			Cause:    err,
		}
	}

	d.metrics.ObserveGeneration(false)
	return Result{Image: Image{ID: d.newID(), URL: url}}
}

// GenerateImage is Generate without the fallback details.
func (d *Dispatcher) GenerateImage(ctx context.Context, req Request) Image {
	return d.Generate(ctx, req).Image
}

// GenerateBatch issues n generations concurrently. Results are in issue order.
func (d *Dispatcher) GenerateBatch(ctx context.Context, req Request, n int) []Result {
	if n <= 0 {
		return []Result{}
	}

	results := make([]Result, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = d.Generate(ctx, req)
			return nil
		})
	}
	// Generate never fails, so neither does the group.
	_ = g.Wait()
	return results
}

func (d *Dispatcher) PlaceholderURL() string {
	sep := "?"
	if strings.Contains(d.placeholder, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%srandom=%d", d.placeholder, sep, d.now().UnixMilli())
}
