package models

type Batch struct {
	Drafts []Draft `json:"drafts"`
	// Charged is the number of credits deducted.
	Charged   int `json:"charged"`
	Credits   int `json:"credits"`
	Fallbacks int `json:"fallbacks"`
}

type SaveResult struct {
	Project Project          `json:"project"`
	Assets  []GeneratedAsset `json:"assets"`
}

type ExportResult struct {
	Asset       GeneratedAsset `json:"asset"`
	License     License        `json:"license"`
	Format      string         `json:"format"`
	Filename    string         `json:"filename"`
	DownloadURL string         `json:"download_url"`
}

type GenerateImageResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
}
