package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/site"
	"github.com/lysyi3m/jsonfeed-views/app/source"
	"github.com/lysyi3m/jsonfeed-views/app/tasks"
	"github.com/lysyi3m/jsonfeed-views/app/views"
)

const testAPIKey = "secret"

const postsView = `
title: "Latest posts"
query: "SELECT * FROM nodes"
fields:
  - id: nid
  - id: title
    label: "Title"
    type: text
  - id: path
  - id: body
    type: html
page:
  enabled: true
feed:
  link_display: page
  row:
    plugin: json_feed_fields
    id_field: nid
    url_field: path
    title_field: title
    content_html_field: body
  style:
    description: "Latest from {{ title }}"
    author_name_field: "Editors"
  pager:
    element: 0
    items_per_page: 2
`

const frontView = `
query: "SELECT * FROM nodes"
fields:
  - id: nid
  - id: path
page:
  enabled: true
feed:
  sitename_title: true
  link_display: page
  row:
    plugin: json_fields
    id_field: nid
    url_field: path
`

const brokenView = `
title: "Broken"
query: "SELECT * FROM nodes"
feed:
  row:
    plugin: json_fields
`

type fakeRowSource struct {
	rows []map[string]interface{}
	err  error
}

func (f *fakeRowSource) FetchRows(ctx context.Context, query string, limit, offset int) ([]map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < 0 {
		return f.rows, nil
	}
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeRowSource) CountRows(ctx context.Context, query string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.rows), nil
}

type fakeNodeRepo struct{}

func (fakeNodeRepo) UpsertNode(node database.Node) error                  { return nil }
func (fakeNodeRepo) CheckDuplicate(sourceName, hash string) (bool, error) { return false, nil }
func (fakeNodeRepo) GetNodeCount() (int, error)                           { return 3, nil }

type fakeSourceRepo struct{}

func (fakeSourceRepo) GetSource(name string) (*database.Source, error) {
	return &database.Source{Name: name, Title: "Upstream " + name}, nil
}
func (fakeSourceRepo) GetSourceCount() (int, error)                                  { return 1, nil }
func (fakeSourceRepo) UpsertSource(name, url string) error                           { return nil }
func (fakeSourceRepo) UpdateSourceMetadata(name, title string, next time.Time) error { return nil }

type fakeScheduler struct {
	enqueued []tasks.TaskInterface
	imports  []string
	err      error
}

func (s *fakeScheduler) Start() {}
func (s *fakeScheduler) Stop()  {}

func (s *fakeScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

func (s *fakeScheduler) EnqueueImport(name string) error {
	if s.err != nil {
		return s.err
	}
	s.imports = append(s.imports, name)
	return nil
}

type testEnv struct {
	router    http.Handler
	rows      *fakeRowSource
	scheduler *fakeScheduler
	viewsDir  string
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	viewsDir := t.TempDir()
	writeFile(t, viewsDir, "posts", postsView)
	writeFile(t, viewsDir, "front", frontView)
	writeFile(t, viewsDir, "broken", brokenView)

	sourcesDir := t.TempDir()
	writeFile(t, sourcesDir, "blog", "url: \"https://upstream.example.com/feed.xml\"\nsettings:\n  enabled: true\n")

	urls, err := site.NewURLs("https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	siteInfo, err := site.New(site.Info{Name: "Example", Slogan: "All the news", FrontPage: "/views/front", Favicon: "favicon.png"}, urls)
	if err != nil {
		t.Fatal(err)
	}

	viewCache := views.NewCache(viewsDir, siteInfo)
	if err := viewCache.Run(); err != nil {
		t.Fatal(err)
	}
	sourceCache := source.NewCache(sourcesDir)
	if err := sourceCache.Run(); err != nil {
		t.Fatal(err)
	}

	rows := &fakeRowSource{rows: []map[string]interface{}{
		{"nid": int64(1), "title": "First &amp; best", "path": "node/1", "body": "<p>One</p>"},
		{"nid": int64(2), "title": "Second", "path": "/node/2", "body": "<p>Two</p>"},
		{"nid": int64(3), "title": "Third", "path": "https://other.example.org/3", "body": ""},
	}}
	scheduler := &fakeScheduler{}

	handler := NewHandler(viewCache, views.NewExecutor(rows), urls, siteInfo,
		sourceCache, fakeSourceRepo{}, fakeNodeRepo{}, scheduler)

	return &testEnv{
		router:    NewServer(handler, testAPIKey),
		rows:      rows,
		scheduler: scheduler,
		viewsDir:  viewsDir,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetFeed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/views/posts/feed.json?sort=new", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}

	expected := map[string]interface{}{
		"version":       "https://jsonfeed.org/version/1",
		"title":         "Latest posts",
		"description":   "Latest from First & best",
		"home_page_url": "https://example.com/views/posts",
		"feed_url":      "https://example.com/views/posts/feed.json",
		"favicon":       "https://example.com/favicon.png",
		"next_url":      "https://example.com/views/posts/feed.json?page=1&sort=new",
		"expired":       false,
	}
	for key, want := range expected {
		if doc[key] != want {
			t.Errorf("Expected %s = %v, got %v", key, want, doc[key])
		}
	}

	author, _ := doc["author"].(map[string]interface{})
	if author["name"] != "Editors" {
		t.Errorf("Expected author name 'Editors', got %v", doc["author"])
	}

	items, _ := doc["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected 2 items on the first page, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["id"] != "1" || first["url"] != "https://example.com/node/1" || first["content_html"] != "<p>One</p>" {
		t.Errorf("Unexpected first item %v", first)
	}

	parsed, err := gofeed.NewParser().ParseString(w.Body.String())
	if err != nil {
		t.Fatalf("Expected a readable JSON feed, got %v", err)
	}
	if parsed.FeedType != "json" || len(parsed.Items) != 2 {
		t.Errorf("Unexpected parsed feed %s with %d items", parsed.FeedType, len(parsed.Items))
	}
}

func TestGetFeedLastPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/views/posts/feed.json?page=1", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["next_url"]; ok {
		t.Errorf("Expected no next_url on the last page, got %v", doc["next_url"])
	}

	items := doc["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["url"] != "https://other.example.org/3" {
		t.Errorf("Expected absolute URL to pass through, got %v", item["url"])
	}
	if _, ok := item["content_html"]; ok {
		t.Error("Expected empty content_html to be omitted")
	}
}

func TestGetFeedSiteNameTitle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/views/front/feed.json", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["title"] != "Example - All the news" {
		t.Errorf("Expected site name title, got %v", doc["title"])
	}
	if doc["home_page_url"] != "https://example.com/" {
		t.Errorf("Expected front page link display to map to the base URL, got %v", doc["home_page_url"])
	}
	if _, ok := doc["author"]; ok {
		t.Error("Expected author to be omitted")
	}
	if len(doc["items"].([]interface{})) != 3 {
		t.Errorf("Expected all rows without a pager")
	}
}

func TestGetFeedErrors(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/views/missing/feed.json", false); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown view, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/views/broken/feed.json", false); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 for misconfigured view, got %d", w.Code)
	}

	env.rows.err = errors.New("database is locked")
	if w := env.do(t, http.MethodGet, "/views/posts/feed.json", false); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on query failure, got %d", w.Code)
	}
}

func TestGetPageHeadLink(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/views/posts?sort=new&page=0", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	if err != nil {
		t.Fatal(err)
	}

	link := doc.Find(`head link[rel="alternate"]`)
	if link.Length() != 1 {
		t.Fatalf("Expected one alternate link, got %d", link.Length())
	}
	if typ, _ := link.Attr("type"); typ != "application/json" {
		t.Errorf("Expected application/json link, got %s", typ)
	}
	if title, _ := link.Attr("title"); title != "Latest posts" {
		t.Errorf("Expected link title 'Latest posts', got %s", title)
	}
	if href, _ := link.Attr("href"); href != "https://example.com/views/posts/feed.json?sort=new" {
		t.Errorf("Expected feed href without page, got %s", href)
	}

	if rows := doc.Find("tbody tr").Length(); rows != 2 {
		t.Errorf("Expected 2 rows, got %d", rows)
	}
	if doc.Find("tbody tr").First().Find("td").Eq(3).Find("p").Length() != 1 {
		t.Error("Expected html field to be rendered as markup")
	}
	if next, _ := doc.Find(`a[rel="next"]`).Attr("href"); next != "https://example.com/views/posts?page=1&sort=new" {
		t.Errorf("Unexpected next page link %s", next)
	}
}

func TestGetHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", false)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["views"] != float64(2) || health["invalid_views"] != float64(1) || health["nodes"] != float64(3) {
		t.Errorf("Unexpected health %v", health)
	}
}

func TestAPIRequiresKey(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/api/views", false); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/views", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected bearer token to be accepted, got %d", w.Code)
	}
}

func TestAPIListViews(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/views", true)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Views []struct {
			Name     string   `json:"name"`
			Valid    bool     `json:"valid"`
			FeedURL  string   `json:"feed_url"`
			Problems []string `json:"problems"`
		} `json:"views"`
		Invalid int `json:"invalid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	if len(body.Views) != 3 || body.Invalid != 1 {
		t.Fatalf("Unexpected listing %+v", body)
	}
	broken := body.Views[0]
	if broken.Name != "broken" || broken.Valid || len(broken.Problems) != 2 {
		t.Errorf("Expected broken view with id and url problems, got %+v", broken)
	}
	if body.Views[2].FeedURL != "https://example.com/views/posts/feed.json" {
		t.Errorf("Unexpected feed URL %s", body.Views[2].FeedURL)
	}
}

func TestAPIReloadView(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodPost, "/api/views/broken/reload", true); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for invalid view, got %d", w.Code)
	}

	writeFile(t, env.viewsDir, "broken", strings.Replace(frontView, "sitename_title: true", "sitename_title: false", 1)+"title: \"Fixed\"\n")
	if w := env.do(t, http.MethodPost, "/api/views/broken/reload", true); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 after fixing the view, got %d: %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/views/broken/feed.json", false); w.Code != http.StatusOK {
		t.Errorf("Expected fixed view to be served, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/api/views/nope/reload", true); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing view file, got %d", w.Code)
	}
}

func TestAPISources(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/sources", true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Upstream blog") {
		t.Errorf("Unexpected source listing %d: %s", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodPost, "/api/sources/blog/import", true); w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", w.Code)
	}
	if len(env.scheduler.imports) != 1 || env.scheduler.imports[0] != "blog" {
		t.Errorf("Expected import of blog, got %v", env.scheduler.imports)
	}

	if w := env.do(t, http.MethodPost, "/api/sources/missing/import", true); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown source, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/api/sources/blog/reload", true); w.Code != http.StatusOK {
		t.Errorf("Expected 200 on source reload, got %d", w.Code)
	}
	if len(env.scheduler.enqueued) != 1 || env.scheduler.enqueued[0].GetType() != tasks.TaskTypeSyncSource {
		t.Errorf("Expected a sync task to be enqueued")
	}
}
