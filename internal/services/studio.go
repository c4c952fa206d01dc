// Package services holds the studio workflows: batch generation, variations,
// saving drafts into projects, favorites, export and library listing.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"genr8-backend/internal/archive"
	"genr8-backend/internal/entity"
	"genr8-backend/internal/generation"
	"genr8-backend/internal/metrics"
	"genr8-backend/internal/models"
)

const (
	DefaultBatchSize  = 4
	MaxBatchSize      = 8
	DefaultRecent     = 6
	VariationCost     = 1
	EditCost          = 2
	MaxUploadBytes    = 10 << 20
	// ExportPrefix is the archive key prefix, and the route the local archive is served under.
	ExportPrefix      = "exports"
	defaultEditPrompt = "Enhance image"
)

var ErrInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Downloader fetches a remote image, retrying transient failures.
type Downloader interface {
	DownloadWithRetry(ctx context.Context, url string) ([]byte, string, error)
}

type Studio struct {
	store      *entity.Store
	dispatcher *generation.Dispatcher
	archive    archive.Archiver
	downloader Downloader
	metrics    *metrics.Metrics
	now        func() time.Time
	log        zerolog.Logger
}

type Option func(*Studio)

// WithArchive stores a copy of every export. Both arguments are required.
func WithArchive(a archive.Archiver, d Downloader) Option {
	return func(s *Studio) {
		s.archive = a
		s.downloader = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Studio) { s.metrics = m }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Studio) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Studio) { s.now = now }
}

func NewStudio(store *entity.Store, dispatcher *generation.Dispatcher, opts ...Option) *Studio {
	s := &Studio{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "studio").Logger()
	return s
}

func (s *Studio) Store() *entity.Store {
	return s.store
}

// Generate runs a batch for one generator form and charges one credit per image.
func (s *Studio) Generate(ctx context.Context, req models.GenerateRequest) (*models.Batch, error) {
	if strings.TrimSpace(req.GeneratorType) == "" {
		return nil, invalid("generator_type is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, invalid("prompt is required")
	}
	count := req.Count
	if count == 0 {
		count = DefaultBatchSize
	}
	if count < 0 || count > MaxBatchSize {
		return nil, invalid("count must be between 1 and %d", MaxBatchSize)
	}

	results := s.dispatcher.GenerateBatch(ctx, generation.Request{
		Prompt:            req.Prompt,
		ExistingImageURLs: req.ReferenceImages,
	}, count)

	stamp := s.now().UnixMilli()
	batch := &models.Batch{Drafts: make([]models.Draft, 0, len(results))}
	for i, r := range results {
		if r.Fallback {
			batch.Fallbacks++
		}
		batch.Drafts = append(batch.Drafts, models.Draft{
			ID:            fmt.Sprintf("temp-%d-%d", stamp, i),
			ImageURL:      r.Image.URL,
			Prompt:        req.Prompt,
			Settings:      req.Settings,
			GeneratorType: req.GeneratorType,
			Error:         r.Image.Error,
		})
	}

	if err := s.charge(ctx, batch, count); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("generator_type", req.GeneratorType).
		Int("count", count).
		Int("fallbacks", batch.Fallbacks).
		Msg("batch generated")
	return batch, nil
}

// variationSuffix is appended to the source prompt, per generator type.
func variationSuffix(generatorType string) string {
	switch generatorType {
	case models.GeneratorAvatar:
		return " Variation with slight changes in pose or expression."
	case models.GeneratorUIMockup:
		return " Variation with slight changes in layout or design elements."
	default:
		return " Variation with slight changes in composition or details."
	}
}

// Variation regenerates one draft with a nudged prompt. The new draft keeps
// the source prompt and settings.
func (s *Studio) Variation(ctx context.Context, source models.Draft) (*models.Batch, error) {
	if strings.TrimSpace(source.Prompt) == "" {
		return nil, invalid("draft prompt is required")
	}

	r := s.dispatcher.Generate(ctx, generation.Request{Prompt: source.Prompt + variationSuffix(source.GeneratorType)})
	batch := &models.Batch{Drafts: []models.Draft{{
		ID:            fmt.Sprintf("temp-%d", s.now().UnixMilli()),
		ImageURL:      r.Image.URL,
		Prompt:        source.Prompt,
		Settings:      source.Settings,
		GeneratorType: source.GeneratorType,
		Error:         r.Image.Error,
	}}}
	if r.Fallback {
		batch.Fallbacks = 1
	}

	if err := s.charge(ctx, batch, VariationCost); err != nil {
		return nil, err
	}
	return batch, nil
}

// Edit produces one editor draft from an edit instruction.
func (s *Studio) Edit(ctx context.Context, req models.EditRequest) (*models.Batch, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = defaultEditPrompt
	}

	genReq := generation.Request{Prompt: prompt}
	settings := map[string]any{}
	if req.ImageURL != "" {
		genReq.ExistingImageURLs = []string{req.ImageURL}
		settings["source_image"] = req.ImageURL
	}
	if req.EditType != "" {
		settings["edit_type"] = req.EditType
	}

	r := s.dispatcher.Generate(ctx, genReq)
	batch := &models.Batch{Drafts: []models.Draft{{
		ID:            fmt.Sprintf("temp-%d", s.now().UnixMilli()),
		ImageURL:      r.Image.URL,
		Prompt:        prompt,
		Settings:      settings,
		GeneratorType: models.GeneratorEditor,
		Error:         r.Image.Error,
	}}}
	if r.Fallback {
		batch.Fallbacks = 1
	}

	if err := s.charge(ctx, batch, EditCost); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Studio) charge(ctx context.Context, batch *models.Batch, credits int) error {
	me, err := s.store.Profiles.Charge(ctx, credits)
	if err != nil {
		return fmt.Errorf("failed to charge credits: %w", err)
	}
	s.metrics.ObserveCharge(credits)
	batch.Charged = credits
	batch.Credits = me.Int("credits")
	return nil
}

// SaveToProject persists drafts as assets of an existing or a new project.
// An unknown ProjectID saves nothing.
func (s *Studio) SaveToProject(ctx context.Context, req models.SaveRequest) (*models.SaveResult, error) {
	if len(req.Drafts) == 0 {
		return nil, invalid("no drafts to save")
	}

	var (
		project entity.Record
		err     error
	)
	switch {
	case req.ProjectID != "":
		project, err = s.store.Projects.Get(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(req.NewProjectName) != "":
		project, err = s.store.Projects.Create(ctx, entity.Record{
			"name":        strings.TrimSpace(req.NewProjectName),
			"cover_image": req.Drafts[0].ImageURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create project: %w", err)
		}
	default:
		return nil, invalid("project_id or new_project_name is required")
	}

	result := &models.SaveResult{Assets: make([]models.GeneratedAsset, 0, len(req.Drafts))}
	s.decode(project, &result.Project)

	for _, d := range req.Drafts {
		rec, err := s.store.Assets.Create(ctx, draftRecord(d, project.ID()))
		if err != nil {
			return nil, fmt.Errorf("failed to save asset: %w", err)
		}
		result.Assets = append(result.Assets, s.decodeAsset(rec))
	}

	s.log.Info().
		Str("project_id", project.ID()).
		Int("assets", len(result.Assets)).
		Msg("drafts saved to project")
	return result, nil
}

func draftRecord(d models.Draft, projectID string) entity.Record {
	settings := d.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return entity.Record{
		"image_url":      d.ImageURL,
		"prompt":         d.Prompt,
		"settings":       settings,
		"is_favorite":    d.IsFavorite,
		"generator_type": d.GeneratorType,
		"project_id":     projectID,
	}
}

func (s *Studio) ToggleFavorite(ctx context.Context, assetID string) (*models.GeneratedAsset, error) {
	asset, err := s.store.Assets.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Assets.Update(ctx, assetID, entity.Record{"is_favorite": !asset.Bool("is_favorite")})
	if err != nil {
		return nil, err
	}
	out := s.decodeAsset(updated)
	return &out, nil
}

// Export records the license on the asset. With an archive configured the
// image is also copied to exports/<id>.<format>.
func (s *Studio) Export(ctx context.Context, assetID string, req models.ExportRequest) (*models.ExportResult, error) {
	if req.License == "" {
		req.License = models.LicensePersonal
	}
	if req.Format == "" {
		req.Format = models.FormatPNG
	}
	license, ok := models.LookupLicense(req.License)
	if !ok {
		return nil, invalid("unknown license %q", req.License)
	}
	if req.Format != models.FormatPNG && req.Format != models.FormatJPG {
		return nil, invalid("unknown format %q", req.Format)
	}

	asset, err := s.store.Assets.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}

	patch := entity.Record{
		"license_type": license.Type,
		"exported":     true,
	}
	downloadURL := asset.String("image_url")
	// uploaded images are inline data URLs and have nothing to fetch
	if s.archive != nil && downloadURL != "" && !strings.HasPrefix(downloadURL, "data:") {
		url, err := s.archiveExport(ctx, assetID, downloadURL, req.Format)
		if err != nil {
			return nil, err
		}
		patch["export_url"] = url
		downloadURL = url
	}

	updated, err := s.store.Assets.Update(ctx, assetID, patch)
	if err != nil {
		return nil, err
	}
	out := s.decodeAsset(updated)

	return &models.ExportResult{
		Asset:       out,
		License:     license,
		Format:      req.Format,
		Filename:    fmt.Sprintf("generated-asset-%d.%s", s.now().UnixMilli(), req.Format),
		DownloadURL: downloadURL,
	}, nil
}

func (s *Studio) archiveExport(ctx context.Context, assetID, imageURL, format string) (string, error) {
	data, contentType, err := s.downloader.DownloadWithRetry(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if detected := mimetype.Detect(data); !detected.Is("application/octet-stream") {
		contentType = detected.String()
	}

	key := fmt.Sprintf("%s/%s.%s", ExportPrefix, assetID, format)
	url, err := s.archive.Put(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	s.log.Info().Str("asset_id", assetID).Str("key", key).Msg("export archived")
	return url, nil
}

func (s *Studio) Licenses() []models.License {
	return models.Licenses
}

// Library lists the assets of one project, or every asset of the current
// profile, newest first.
func (s *Studio) Library(ctx context.Context, q models.LibraryQuery) ([]models.GeneratedAsset, error) {
	match := entity.Record{}
	if q.ProjectID != "" {
		match["project_id"] = q.ProjectID
	} else {
		email, err := s.currentEmail(ctx)
		if err != nil {
			return nil, err
		}
		match[entity.FieldCreatedBy] = email
	}

	records, err := s.store.Assets.Filter(ctx, entity.Query{Match: match, Sort: entity.DefaultSort})
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(q.Search)
	out := make([]models.GeneratedAsset, 0, len(records))
	for _, rec := range records {
		if !strings.Contains(strings.ToLower(rec.String("prompt")), search) {
			continue
		}
		if !matchesType(rec, q.Type) {
			continue
		}
		out = append(out, s.decodeAsset(rec))
	}
	return out, nil
}

func matchesType(rec entity.Record, filter string) bool {
	switch filter {
	case "", "all":
		return true
	case "favorites":
		return rec.Bool("is_favorite")
	default:
		return rec.String("generator_type") == filter
	}
}

// Recent returns the newest n assets of the current profile.
func (s *Studio) Recent(ctx context.Context, n int) ([]models.GeneratedAsset, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.Assets.Filter(ctx, entity.Query{
		Match: entity.Record{entity.FieldCreatedBy: email},
		Sort:  entity.DefaultSort,
		Limit: n,
	})
	if err != nil {
		return nil, err
	}
	return s.decodeAssets(records), nil
}

func (s *Studio) Projects(ctx context.Context) ([]models.Project, error) {
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.Projects.Filter(ctx, entity.Query{
		Match: entity.Record{entity.FieldCreatedBy: email},
		Sort:  entity.DefaultSort,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Project, 0, len(records))
	for _, rec := range records {
		var p models.Project
		s.decode(rec, &p)
		out = append(out, p)
	}
	return out, nil
}

func (s *Studio) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	data := entity.Record{"name": name}
	if req.Description != "" {
		data["description"] = req.Description
	}

	rec, err := s.store.Projects.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := rec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes the project only. Its assets keep their project_id.
func (s *Studio) DeleteProject(ctx context.Context, projectID string) error {
	return s.store.Projects.Delete(ctx, projectID)
}

// UploadFile encodes an uploaded file as a data URL.
func (s *Studio) UploadFile(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", invalid("file is empty")
	}
	if len(data) > MaxUploadBytes {
		return "", invalid("file exceeds %d bytes", MaxUploadBytes)
	}
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (s *Studio) currentEmail(ctx context.Context) (string, error) {
	me, err := s.store.Profiles.Me(ctx)
	if err != nil {
		return "", err
	}
	if email := me.String("email"); email != "" {
		return email, nil
	}
	return entity.DefaultEmail, nil
}

// decode fills out from rec. The generic entity routes accept any JSON, so a
// field of the wrong type is left zero and logged; the other fields still decode.
func (s *Studio) decode(rec entity.Record, out any) {
	if err := rec.Decode(out); err != nil {
		s.log.Warn().Err(err).Str("id", rec.ID()).Msg("record has fields of unexpected type, ignoring them")
	}
}

func (s *Studio) decodeAsset(rec entity.Record) models.GeneratedAsset {
	var a models.GeneratedAsset
	s.decode(rec, &a)
	return a
}

func (s *Studio) decodeAssets(records []entity.Record) []models.GeneratedAsset {
	out := make([]models.GeneratedAsset, 0, len(records))
	for _, rec := range records {
		out = append(out, s.decodeAsset(rec))
	}
	return out
}
