package jsonfeed

type Attribute string

const (
	AttrID            Attribute = "id"
	AttrURL           Attribute = "url"
	AttrTitle         Attribute = "title"
	AttrContentHTML   Attribute = "content_html"
	AttrContentText   Attribute = "content_text"
	AttrSummary       Attribute = "summary"
	AttrImage         Attribute = "image"
	AttrBannerImage   Attribute = "banner_image"
	AttrDatePublished Attribute = "date_published"
	AttrDateModified  Attribute = "date_modified"
)

// Row plugin names accepted by NewRowMapper.
const (
	PluginFields     = "json_fields"
	PluginFeedFields = "json_feed_fields"
)

var (
	minimalSchema = []Attribute{AttrID, AttrURL, AttrTitle}

	fullSchema = []Attribute{
		AttrID, AttrURL, AttrTitle,
		AttrContentHTML, AttrContentText, AttrSummary,
		AttrImage, AttrBannerImage,
		AttrDatePublished, AttrDateModified,
	}

	urlAttributes = map[Attribute]bool{
		AttrURL:         true,
		AttrImage:       true,
		AttrBannerImage: true,
	}
)

// FieldMapping names, for each feed attribute, the view field that feeds it.
// An empty string leaves the attribute unmapped.
type FieldMapping struct {
	ID            string `yaml:"id_field"`
	URL           string `yaml:"url_field"`
	Title         string `yaml:"title_field"`
	ContentHTML   string `yaml:"content_html_field"`
	ContentText   string `yaml:"content_text_field"`
	Summary       string `yaml:"summary_field"`
	Image         string `yaml:"image_field"`
	BannerImage   string `yaml:"banner_image_field"`
	DatePublished string `yaml:"date_published_field"`
	DateModified  string `yaml:"date_modified_field"`
}

func (m FieldMapping) Source(attr Attribute) string {
	switch attr {
	case AttrID:
		return m.ID
	case AttrURL:
		return m.URL
	case AttrTitle:
		return m.Title
	case AttrContentHTML:
		return m.ContentHTML
	case AttrContentText:
		return m.ContentText
	case AttrSummary:
		return m.Summary
	case AttrImage:
		return m.Image
	case AttrBannerImage:
		return m.BannerImage
	case AttrDatePublished:
		return m.DatePublished
	case AttrDateModified:
		return m.DateModified
	default:
		return ""
	}
}
