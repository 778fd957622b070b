package views

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

var ErrViewNotFound = errors.New("view not found")

type Cache struct {
	viewsDir string
	site     jsonfeed.Site
	cache    map[string]*View
	problems map[string][]string
	mu       sync.RWMutex
}

func NewCache(viewsDir string, site jsonfeed.Site) *Cache {
	return &Cache{
		viewsDir: viewsDir,
		site:     site,
		cache:    make(map[string]*View),
		problems: make(map[string][]string),
	}
}

// Run loads every view file. A view with configuration problems is recorded
// and skipped; an unreadable file stops loading.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.viewsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.viewsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		viewName := strings.TrimSuffix(filepath.Base(file), ".yml")

		view, err := c.LoadView(viewName)
		var cfgErr *jsonfeed.ConfigurationError
		if errors.As(err, &cfgErr) {
			slog.Warn("View configuration invalid", "view", viewName, "problems", cfgErr.Problems)
			continue
		}
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("View loaded", "view", viewName, "plugin", view.Feed.Row.Plugin, "fields", len(view.Fields))
	}

	return nil
}

// LoadView (re)reads one view file. On configuration problems the view is
// taken out of service and a *jsonfeed.ConfigurationError is returned.
func (c *Cache) LoadView(viewName string) (*View, error) {
	view, err := c.parseView(c.getViewFilePath(viewName))
	if err != nil {
		return nil, err
	}
	view.Name = viewName

	if err := c.prepareView(view); err != nil {
		var cfgErr *jsonfeed.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.mu.Lock()
			delete(c.cache, viewName)
			c.problems[viewName] = cfgErr.Problems
			c.mu.Unlock()
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[viewName] = view
	delete(c.problems, viewName)

	return view, nil
}

// GetView returns a servable view. A view that failed validation yields its
// *jsonfeed.ConfigurationError.
func (c *Cache) GetView(viewName string) (*View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if view, ok := c.cache[viewName]; ok {
		return view, nil
	}
	if problems, ok := c.problems[viewName]; ok {
		return nil, &jsonfeed.ConfigurationError{Problems: problems}
	}
	return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewName)
}

func (c *Cache) GetViews() map[string]*View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	viewsCopy := make(map[string]*View, len(c.cache))
	for k, v := range c.cache {
		viewsCopy[k] = v
	}
	return viewsCopy
}

func (c *Cache) GetProblems() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	problemsCopy := make(map[string][]string, len(c.problems))
	for k, v := range c.problems {
		problemsCopy[k] = append([]string(nil), v...)
	}
	return problemsCopy
}

// Names lists every known view, valid or not, sorted.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.cache)+len(c.problems))
	for name := range c.cache {
		names = append(names, name)
	}
	for name := range c.problems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cache) GetViewCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseView(viewFile string) (*View, error) {
	data, err := os.ReadFile(viewFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var view View
	if err := yaml.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range view.Fields {
		if view.Fields[i].Column == "" {
			view.Fields[i].Column = view.Fields[i].ID
		}
		if view.Fields[i].Type == "" {
			view.Fields[i].Type = FieldTypeString
		}
	}

	return &view, nil
}

// prepareView validates the view and builds its serializer. Every problem is
// collected before returning.
func (c *Cache) prepareView(view *View) error {
	cfgErr := &jsonfeed.ConfigurationError{}

	if strings.TrimSpace(view.Query) == "" {
		cfgErr.Add("View requires a query.")
	}

	validTypes := map[string]bool{
		FieldTypeString: true,
		FieldTypeText:   true,
		FieldTypeHTML:   true,
		FieldTypeDate:   true,
	}

	seen := make(map[string]bool, len(view.Fields))
	for i, field := range view.Fields {
		if field.ID == "" {
			cfgErr.Add(fmt.Sprintf("Field at index %d requires an id.", i))
			continue
		}
		if seen[field.ID] {
			cfgErr.Add(fmt.Sprintf("Field id %s is used more than once.", field.ID))
		}
		seen[field.ID] = true
		if !validTypes[field.Type] {
			cfgErr.Add(fmt.Sprintf("Field %s has invalid type %s.", field.ID, field.Type))
		}
	}

	if view.Feed.LinkDisplay != "" && view.Feed.LinkDisplay != LinkDisplayPage {
		cfgErr.Add(fmt.Sprintf("Unknown link display %s.", view.Feed.LinkDisplay))
	}

	if view.Feed.Pager != nil && view.Feed.Pager.ItemsPerPage < 0 {
		cfgErr.Add("Pager items_per_page must be non-negative.")
	}
	if view.Feed.Pager != nil && view.Feed.Pager.Element != nil && *view.Feed.Pager.Element < 0 {
		cfgErr.Add("Pager element must be non-negative.")
	}

	opts := view.Feed.Style
	opts.SiteNameTitle = view.Feed.SiteNameTitle
	opts.PagerElement = view.PagerElement()

	mapper, err := jsonfeed.NewRowMapper(view.Feed.Row.Plugin, view.Feed.Row.FieldMapping)
	if err != nil {
		cfgErr.Add(fmt.Sprintf("Invalid row plugin: %v.", err))
	} else {
		for _, attr := range mapper.Schema() {
			fieldID := mapper.Mapping().Source(attr)
			if fieldID != "" && !seen[fieldID] {
				cfgErr.Add(fmt.Sprintf("The %s attribute is mapped to unknown field %s.", attr, fieldID))
			}
		}
	}

	if err := jsonfeed.Validate(mapper, opts, jsonfeed.Display{Title: view.Title}, c.site); err != nil {
		var validationErr *jsonfeed.ConfigurationError
		if errors.As(err, &validationErr) {
			cfgErr.Add(validationErr.Problems...)
		} else {
			return err
		}
	}

	if err := cfgErr.Err(); err != nil {
		return err
	}

	view.serializer = jsonfeed.NewSerializer(mapper, opts)
	return nil
}

func (c *Cache) getViewFilePath(viewName string) string {
	return filepath.Join(c.viewsDir, viewName+".yml")
}
