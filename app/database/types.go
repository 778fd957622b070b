package database

import (
	"time"
)

type Node struct {
	ID          int64
	Source      string // Source name, "" for nodes created outside an import
	GUID        string
	Title       string
	Path        string // Site path or absolute URL of the node
	Body        string
	Summary     string
	Image       string
	BannerImage string
	AuthorName  string
	ContentHash string
	CreatedAt   time.Time
	ChangedAt   *time.Time
}

type Source struct {
	Name          string // Configuration source identifier derived from filename
	URL           string
	Title         string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
