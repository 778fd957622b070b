package database

import (
	"context"
	"time"
)

type NodeRepository interface {
	UpsertNode(node Node) error
	CheckDuplicate(sourceName, contentHash string) (bool, error)
	GetNodeCount() (int, error)
}

type SourceRepository interface {
	GetSource(name string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(name, url string) error
	UpdateSourceMetadata(name, title string, nextFetch time.Time) error
}

// RowSource runs view queries. limit < 0 fetches every row.
type RowSource interface {
	FetchRows(ctx context.Context, query string, limit, offset int) ([]map[string]interface{}, error)
	CountRows(ctx context.Context, query string) (int, error)
}
