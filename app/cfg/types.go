package cfg

type Cfg struct {
	// Storage
	DBPath     string
	ViewsDir   string
	SourcesDir string

	// HTTP
	Port         string
	BaseURL      string
	APIAccessKey string

	// Site identity used by feeds
	SiteName      string
	SiteSlogan    string
	SiteFrontPage string
	SiteFavicon   string

	// Importer
	WorkerCount       int
	SchedulerInterval int
	UserAgent         string

	Timezone string
	Debug    bool
	Version  string
}
