package database

import (
	"context"
	"fmt"
	"strings"
)

type rowSource struct {
	db *DB
}

func NewRowSource(db *DB) RowSource {
	return &rowSource{db: db}
}

func (r *rowSource) FetchRows(ctx context.Context, query string, limit, offset int) ([]map[string]interface{}, error) {
	query = trimQuery(query)

	var args []interface{}
	if limit >= 0 {
		query = fmt.Sprintf("SELECT * FROM (%s) LIMIT ? OFFSET ?", query)
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run view query: %w", err)
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan view row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view rows: %w", err)
	}

	return results, nil
}

func (r *rowSource) CountRows(ctx context.Context, query string) (int, error) {
	var count int
	err := r.db.QueryRowxContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM (%s)", trimQuery(query))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count view rows: %w", err)
	}
	return count, nil
}

func trimQuery(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), ";")
}
