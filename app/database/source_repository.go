package database

import (
	"database/sql"
	"fmt"
	"time"
)

type sourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) SourceRepository {
	return &sourceRepository{db: db}
}

func (r *sourceRepository) UpsertSource(name, url string) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		INSERT INTO sources (name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			next_fetch_at = CASE WHEN sources.url != excluded.url THEN NULL ELSE sources.next_fetch_at END,
			updated_at = excluded.updated_at
	`, name, url, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

func (r *sourceRepository) UpdateSourceMetadata(name, title string, nextFetch time.Time) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE sources
		SET title = ?, last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, title, now, nextFetch.Unix(), now, name)
	if err != nil {
		return fmt.Errorf("failed to update source metadata: %w", err)
	}
	return nil
}

func (r *sourceRepository) GetSource(name string) (*Source, error) {
	var (
		source                 Source
		lastFetched, nextFetch sql.NullInt64
		createdAt, updatedAt   int64
	)

	err := r.db.QueryRow(`
		SELECT name, url, title, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, name).Scan(&source.Name, &source.URL, &source.Title, &lastFetched, &nextFetch, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	source.LastFetchedAt = unixPtr(lastFetched)
	source.NextFetchAt = unixPtr(nextFetch)
	source.CreatedAt = time.Unix(createdAt, 0)
	source.UpdatedAt = time.Unix(updatedAt, 0)

	return &source, nil
}

func (r *sourceRepository) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
