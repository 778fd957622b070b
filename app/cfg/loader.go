package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./data/jsonfeed-views.db" description:"SQLite database file"`
	ViewsDir   string `long:"views-dir" env:"VIEWS_DIR" default:"./views" description:"Directory containing view definitions"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing upstream source configuration files"`

	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseURL      string `long:"base-url" env:"BASE_URL" description:"Public base URL of the site (e.g., https://example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the admin endpoints (optional)"`

	SiteName      string `long:"site-name" env:"SITE_NAME" description:"Site name, used by views with sitename_title"`
	SiteSlogan    string `long:"site-slogan" env:"SITE_SLOGAN" description:"Site slogan appended to the site name title"`
	SiteFrontPage string `long:"site-front-page" env:"SITE_FRONT_PAGE" description:"Path of the site front page (e.g., /views/frontpage)"`
	SiteFavicon   string `long:"site-favicon" env:"SITE_FAVICON" description:"Path or URL of the site favicon"`

	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for source imports"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	UserAgent         string `long:"user-agent" env:"USER_AGENT" default:"JSON Feed Views/1.0" description:"User agent string for HTTP requests"`

	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for rendered dates (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses flags and environment. It returns (nil, nil) when help was
// requested.
func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		ViewsDir:          raw.ViewsDir,
		SourcesDir:        raw.SourcesDir,
		Port:              raw.Port,
		BaseURL:           raw.BaseURL,
		APIAccessKey:      raw.APIAccessKey,
		SiteName:          raw.SiteName,
		SiteSlogan:        raw.SiteSlogan,
		SiteFrontPage:     raw.SiteFrontPage,
		SiteFavicon:       raw.SiteFavicon,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SchedulerDuration is the interval between import scheduling rounds.
func (c *Cfg) SchedulerDuration() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
