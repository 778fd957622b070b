package views

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

type fakeRowSource struct {
	rows        []map[string]interface{}
	err         error
	lastLimit   int
	lastOffset  int
	fetchCalls  int
	countCalls  int
	lastQueries []string
}

func (f *fakeRowSource) FetchRows(ctx context.Context, query string, limit, offset int) ([]map[string]interface{}, error) {
	f.fetchCalls++
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastQueries = append(f.lastQueries, query)
	if f.err != nil {
		return nil, f.err
	}

	if limit < 0 {
		return f.rows, nil
	}
	if offset >= len(f.rows) {
		return []map[string]interface{}{}, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeRowSource) CountRows(ctx context.Context, query string) (int, error) {
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return len(f.rows), nil
}

type fakeRouter struct {
	base string
	err  error
}

func (r fakeRouter) Route(path string, query url.Values) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	u := r.base + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u, nil
}

var errFake = errors.New("boom")

func writeView(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func makeRows(n int) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]interface{}{
			"nid":   int64(i + 1),
			"title": "Post " + string(rune('A'+i)),
			"path":  "node/" + string(rune('a'+i)),
		})
	}
	return rows
}
