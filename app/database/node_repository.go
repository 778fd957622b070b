package database

import (
	"database/sql"
	"fmt"
)

type nodeRepository struct {
	db *DB
}

func NewNodeRepository(db *DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) UpsertNode(node Node) error {
	var changedAt sql.NullInt64
	if node.ChangedAt != nil {
		changedAt = sql.NullInt64{Int64: node.ChangedAt.Unix(), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO nodes (
			source, guid, title, path, body, summary, image, banner_image,
			author_name, content_hash, created_at, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, guid) DO UPDATE SET
			title = excluded.title,
			path = excluded.path,
			body = excluded.body,
			summary = excluded.summary,
			image = excluded.image,
			banner_image = excluded.banner_image,
			author_name = excluded.author_name,
			content_hash = excluded.content_hash,
			changed_at = excluded.changed_at
	`, node.Source, node.GUID, node.Title, node.Path, node.Body, node.Summary,
		nullString(node.Image), nullString(node.BannerImage), nullString(node.AuthorName),
		node.ContentHash, node.CreatedAt.Unix(), changedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}

	return nil
}

func (r *nodeRepository) CheckDuplicate(sourceName, contentHash string) (bool, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM nodes WHERE source = ? AND content_hash = ? LIMIT 1`,
		sourceName, contentHash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return true, nil
}

func (r *nodeRepository) GetNodeCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get node count: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
