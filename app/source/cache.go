package source

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
)

const (
	defaultRefreshInterval = 3600
	defaultMaxItems        = 100
	defaultTimeout         = 30
)

var filterFields = map[string]bool{
	"title":      true,
	"summary":    true,
	"body":       true,
	"author":     true,
	"link":       true,
	"categories": true,
}

type Cache struct {
	sourcesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Config),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := c.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", name, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (c *Cache) LoadConfig(name string) (*Config, error) {
	configFile := filepath.Join(c.sourcesDir, name+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.Name = name
	applyDefaults(&config.Settings)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", configFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[name] = &config

	return &config, nil
}

func (c *Cache) GetConfig(name string) (*Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("source '%s' not found", name)
	}
	return config, nil
}

// GetConfigs returns every source sorted by name.
func (c *Cache) GetConfigs() []*Config {
	return c.list(func(*Config) bool { return true })
}

func (c *Cache) GetEnabledConfigs() []*Config {
	return c.list(func(config *Config) bool { return config.Settings.Enabled })
}

func (c *Cache) GetConfigCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) list(keep func(*Config) bool) []*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configs := make([]*Config, 0, len(c.cache))
	for _, config := range c.cache {
		if keep(config) {
			configs = append(configs, config)
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs
}

func applyDefaults(settings *ConfigSettings) {
	if settings.RefreshInterval == 0 {
		settings.RefreshInterval = defaultRefreshInterval
	}
	if settings.MaxItems == 0 {
		settings.MaxItems = defaultMaxItems
	}
	if settings.Timeout == 0 {
		settings.Timeout = defaultTimeout
	}
}

func validate(config *Config) error {
	var errs []error

	if config.URL == "" {
		errs = append(errs, errors.New("source URL is required"))
	}
	if config.Settings.RefreshInterval < 0 {
		errs = append(errs, errors.New("refresh interval must be non-negative"))
	}
	if config.Settings.MaxItems < 0 {
		errs = append(errs, errors.New("max items must be non-negative"))
	}
	if config.Settings.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be non-negative"))
	}

	for i, filter := range config.Filters {
		if !filterFields[filter.Field] {
			errs = append(errs, fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field))
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			errs = append(errs, fmt.Errorf("filter at index %d must have at least one include or exclude rule", i))
		}
	}

	return errors.Join(errs...)
}
