package source

import (
	"time"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	Language    string
}

// Entry is one upstream item, normalized for storage as a node.
type Entry struct {
	GUID        string
	Title       string
	Link        string
	Body        string // HTML content, falls back to the description
	Summary     string // plain text
	Image       string
	AuthorName  string
	Categories  []string
	PublishedAt time.Time
	UpdatedAt   *time.Time

	HasContent   bool // upstream carried full content, not just a description
	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"`         // seconds
	ExtractContent  bool `yaml:"extract_content"` // fetch the linked page when only a description is present
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

func (s ConfigSettings) RefreshDuration() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s ConfigSettings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
