package models

type GenerateRequest struct {
	GeneratorType string `json:"generator_type"`
	Prompt        string `json:"prompt"`
	// Count defaults to 4.
	Count           int            `json:"count,omitempty"`
	Settings        map[string]any `json:"settings,omitempty"`
	ReferenceImages []string       `json:"reference_images,omitempty"`
}

type VariationRequest struct {
	Draft Draft `json:"draft"`
}

type EditRequest struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url,omitempty"`
	EditType string `json:"edit_type,omitempty"`
}

// SaveRequest targets an existing project or names a new one.
type SaveRequest struct {
	ProjectID      string  `json:"project_id,omitempty"`
	NewProjectName string  `json:"new_project_name,omitempty"`
	Drafts         []Draft `json:"drafts"`
}

type ExportRequest struct {
	License string `json:"license,omitempty"`
	Format  string `json:"format,omitempty"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type LibraryQuery struct {
	ProjectID string `form:"project_id"`
	Search    string `form:"search"`
	// Type is "all", "favorites" or a generator type.
	Type string `form:"type"`
}

type GenerateImageRequest struct {
	Prompt            string   `json:"prompt"`
	ExistingImageURLs []string `json:"existing_image_urls,omitempty"`
}

type FilterRequest struct {
	Query map[string]any `json:"query"`
	Sort  string         `json:"sort,omitempty"`
	Limit int            `json:"limit,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
