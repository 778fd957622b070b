package jsonfeed

const Version = "https://jsonfeed.org/version/1"

type Feed struct {
	Version     string  `json:"version"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	HomePageURL string  `json:"home_page_url"`
	FeedURL     string  `json:"feed_url"`
	Favicon     string  `json:"favicon,omitempty"`
	Author      *Author `json:"author,omitempty"`
	NextURL     string  `json:"next_url,omitempty"`
	Expired     bool    `json:"expired"`
	Items       []Item  `json:"items"`
}

type Author struct {
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (a Author) IsEmpty() bool {
	return a.Name == "" && a.URL == "" && a.Avatar == ""
}

// Item is one feed entry. Every attribute is optional on the wire: a mapped
// field that renders empty is left out instead of being sent as "".
type Item struct {
	ID            string `json:"id,omitempty"`
	URL           string `json:"url,omitempty"`
	Title         string `json:"title,omitempty"`
	ContentHTML   string `json:"content_html,omitempty"`
	ContentText   string `json:"content_text,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Image         string `json:"image,omitempty"`
	BannerImage   string `json:"banner_image,omitempty"`
	DatePublished string `json:"date_published,omitempty"`
	DateModified  string `json:"date_modified,omitempty"`
}

func (i *Item) set(attr Attribute, value string) {
	switch attr {
	case AttrID:
		i.ID = value
	case AttrURL:
		i.URL = value
	case AttrTitle:
		i.Title = value
	case AttrContentHTML:
		i.ContentHTML = value
	case AttrContentText:
		i.ContentText = value
	case AttrSummary:
		i.Summary = value
	case AttrImage:
		i.Image = value
	case AttrBannerImage:
		i.BannerImage = value
	case AttrDatePublished:
		i.DatePublished = value
	case AttrDateModified:
		i.DateModified = value
	}
}

// Get returns the value stored for attr, "" when the attribute was omitted.
func (i Item) Get(attr Attribute) string {
	switch attr {
	case AttrID:
		return i.ID
	case AttrURL:
		return i.URL
	case AttrTitle:
		return i.Title
	case AttrContentHTML:
		return i.ContentHTML
	case AttrContentText:
		return i.ContentText
	case AttrSummary:
		return i.Summary
	case AttrImage:
		return i.Image
	case AttrBannerImage:
		return i.BannerImage
	case AttrDatePublished:
		return i.DatePublished
	case AttrDateModified:
		return i.DateModified
	default:
		return ""
	}
}

// Options are the feed-level settings of a feed display.
type Options struct {
	Description   string `yaml:"description"`
	Expired       bool   `yaml:"expired"`
	AuthorName    string `yaml:"author_name_field"`
	AuthorURL     string `yaml:"author_url_field"`
	AuthorAvatar  string `yaml:"author_avatar_field"`
	SiteNameTitle bool   `yaml:"-"`
	PagerElement  *int   `yaml:"-"`
}

// Display carries the values the host resolves for the feed display before
// rendering: the view title and the absolute URLs of this display and of its
// link display ("" when there is none or it is disabled).
type Display struct {
	Title          string
	FeedURL        string
	LinkDisplayURL string
}

type Site struct {
	Name         string
	Slogan       string
	FrontPageURL string
	BaseURL      string
	Favicon      string
}

type PagerState struct {
	CurrentPage int
	TotalPages  int
}

type HeadLink struct {
	Rel   string `json:"rel"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Href  string `json:"href"`
}

func NewHeadLink(title, href string) HeadLink {
	return HeadLink{
		Rel:   "alternate",
		Type:  "application/json",
		Title: title,
		Href:  href,
	}
}
