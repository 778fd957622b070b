package views

import (
	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

const (
	FieldTypeString = "string"
	FieldTypeText   = "text"
	FieldTypeHTML   = "html"
	FieldTypeDate   = "date"
)

// LinkDisplayPage is the only link display a view can point its feed at.
const LinkDisplayPage = "page"

type View struct {
	Name   string      // Derived from filename (without .yml extension)
	Title  string      `yaml:"title"`
	Query  string      `yaml:"query"`
	Fields []Field     `yaml:"fields"`
	Page   PageDisplay `yaml:"page"`
	Feed   FeedDisplay `yaml:"feed"`

	serializer *jsonfeed.Serializer
}

type Field struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Column string `yaml:"column"` // defaults to ID
	Type   string `yaml:"type"`   // string, text, html or date
}

type PageDisplay struct {
	Enabled bool `yaml:"enabled"`
}

type FeedDisplay struct {
	SiteNameTitle bool             `yaml:"sitename_title"`
	LinkDisplay   string           `yaml:"link_display"`
	Row           RowConfig        `yaml:"row"`
	Style         jsonfeed.Options `yaml:"style"`
	Pager         *PagerConfig     `yaml:"pager"`
}

type RowConfig struct {
	Plugin                string `yaml:"plugin"`
	jsonfeed.FieldMapping `yaml:",inline"`
}

type PagerConfig struct {
	Element      *int `yaml:"element"` // nil: items are limited but no next_url is offered
	ItemsPerPage int  `yaml:"items_per_page"`
}

func (v *View) Serializer() *jsonfeed.Serializer {
	return v.serializer
}

func (v *View) PagePath() string {
	return "/views/" + v.Name
}

func (v *View) FeedPath() string {
	return "/views/" + v.Name + "/feed.json"
}

// ItemsPerPage is 0 when every row goes into a single page.
func (v *View) ItemsPerPage() int {
	if v.Feed.Pager == nil {
		return 0
	}
	return v.Feed.Pager.ItemsPerPage
}

func (v *View) PagerElement() *int {
	if v.Feed.Pager == nil || v.Feed.Pager.ItemsPerPage <= 0 {
		return nil
	}
	return v.Feed.Pager.Element
}

// HasLinkDisplay reports whether the feed derives its home page from the
// enabled page display.
func (v *View) HasLinkDisplay() bool {
	return v.Feed.LinkDisplay == LinkDisplayPage && v.Page.Enabled
}

func (v *View) field(id string) (Field, bool) {
	for _, f := range v.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func (v *View) FieldLabels() map[string]string {
	labels := make(map[string]string, len(v.Fields))
	for _, f := range v.Fields {
		labels[f.ID] = f.Label
		if f.Label == "" {
			labels[f.ID] = f.ID
		}
	}
	return labels
}
