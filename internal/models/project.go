package models

// Generator type tags. Unknown tags are stored as given.
const (
	GeneratorLogo         = "logo"
	GeneratorAvatar       = "avatar"
	GeneratorArchitecture = "architecture"
	GeneratorProduct      = "product"
	GeneratorUIMockup     = "ui_mockup"
	GeneratorTattoo       = "tattoo"
	GeneratorEditor       = "editor"
)

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
	CreatedDate string `json:"created_date"`
	CreatedBy   string `json:"created_by"`
}

type GeneratedAsset struct {
	ID            string         `json:"id"`
	ImageURL      string         `json:"image_url"`
	Prompt        string         `json:"prompt"`
	Settings      map[string]any `json:"settings,omitempty"`
	IsFavorite    bool           `json:"is_favorite"`
	GeneratorType string         `json:"generator_type"`
	ProjectID     string         `json:"project_id,omitempty"`
	LicenseType   string         `json:"license_type,omitempty"`
	Exported      bool           `json:"exported,omitempty"`
	ExportURL     string         `json:"export_url,omitempty"`
	CreatedDate   string         `json:"created_date"`
	CreatedBy     string         `json:"created_by"`
}

type Profile struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Credits          int    `json:"credits"`
	TotalGenerations int    `json:"total_generations"`
	CreatedDate      string `json:"created_date"`
}

// Draft is a generated image that has not been saved to a project yet.
type Draft struct {
	ID            string         `json:"id"`
	ImageURL      string         `json:"image_url"`
	Prompt        string         `json:"prompt"`
	Settings      map[string]any `json:"settings,omitempty"`
	IsFavorite    bool           `json:"is_favorite"`
	GeneratorType string         `json:"generator_type"`
	// Error is set when ImageURL is a placeholder.
	Error string `json:"error,omitempty"`
}

type License struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Credits     int    `json:"credits"`
}

const (
	LicensePersonal   = "personal"
	LicenseCommercial = "commercial"
	LicenseExtended   = "extended"

	FormatPNG = "png"
	FormatJPG = "jpg"
)

var Licenses = []License{
	{Type: LicensePersonal, Label: "Personal Use", Description: "For personal projects, portfolios, and non-commercial use", Credits: 0},
	{Type: LicenseCommercial, Label: "Commercial License", Description: "For business use, marketing, and client projects", Credits: 2},
	{Type: LicenseExtended, Label: "Extended License", Description: "Unlimited use including merchandise and resale", Credits: 5},
}

func LookupLicense(licenseType string) (License, bool) {
	for _, l := range Licenses {
		if l.Type == licenseType {
			return l, true
		}
	}
	return License{}, false
}
