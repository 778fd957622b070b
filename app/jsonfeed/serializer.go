package jsonfeed

import (
	"encoding/json"
	"fmt"
)

type Serializer struct {
	mapper RowMapper
	opts   Options
}

func NewSerializer(mapper RowMapper, opts Options) *Serializer {
	return &Serializer{mapper: mapper, opts: opts}
}

func (s *Serializer) Mapper() RowMapper { return s.mapper }

func (s *Serializer) Options() Options { return s.opts }

// Render builds the feed for rows 0..rowCount-1 and encodes it.
func (s *Serializer) Render(display Display, rowCount int, env Env) ([]byte, error) {
	feed, err := s.Build(display, rowCount, env)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	return data, nil
}

func (s *Serializer) Build(display Display, rowCount int, env Env) (*Feed, error) {
	items, err := s.Items(rowCount, env)
	if err != nil {
		return nil, err
	}

	description, err := s.substitute(env, s.opts.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve description: %w", err)
	}

	feed := &Feed{
		Version:     Version,
		Title:       s.Title(display, env.Site),
		Description: description,
		HomePageURL: homePageURL(display, env.Site),
		FeedURL:     display.FeedURL,
		Expired:     s.opts.Expired,
		Items:       items,
	}

	if env.Site.Favicon != "" {
		feed.Favicon, err = absoluteURL(env.URLs, env.Site.Favicon)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve favicon: %w", err)
		}
	}

	feed.Author, err = s.author(env)
	if err != nil {
		return nil, err
	}

	feed.NextURL, err = s.nextURL(env.Pager)
	if err != nil {
		return nil, err
	}

	return feed, nil
}

// Items maps every row in result order.
func (s *Serializer) Items(rowCount int, env Env) ([]Item, error) {
	items := make([]Item, 0, rowCount)
	for rowIndex := 0; rowIndex < rowCount; rowIndex++ {
		item, err := s.mapper.MapRow(rowIndex, env.Fields, env.URLs)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Title is the feed title: the site name (and slogan) or the view title.
func (s *Serializer) Title(display Display, site Site) string {
	if !s.opts.SiteNameTitle {
		return display.Title
	}

	title := site.Name
	if site.Slogan != "" {
		title += " - " + site.Slogan
	}
	return title
}

// homePageURL prefers the link display, unless it is the front page: then
// the plain base URL is used instead of the front page route.
func homePageURL(display Display, site Site) string {
	if display.LinkDisplayURL == "" {
		return site.BaseURL
	}
	if site.FrontPageURL != "" && display.LinkDisplayURL == site.FrontPageURL {
		return site.BaseURL
	}
	return display.LinkDisplayURL
}

func (s *Serializer) author(env Env) (*Author, error) {
	name, err := s.substitute(env, s.opts.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author name: %w", err)
	}

	author := Author{Name: name}

	if author.URL, err = s.authorURL(env, s.opts.AuthorURL); err != nil {
		return nil, fmt.Errorf("failed to resolve author url: %w", err)
	}
	if author.Avatar, err = s.authorURL(env, s.opts.AuthorAvatar); err != nil {
		return nil, fmt.Errorf("failed to resolve author avatar: %w", err)
	}

	if author.IsEmpty() {
		return nil, nil
	}
	return &author, nil
}

func (s *Serializer) authorURL(env Env, template string) (string, error) {
	value, err := s.substitute(env, template)
	if err != nil || value == "" {
		return "", err
	}
	return absoluteURL(env.URLs, value)
}

func (s *Serializer) nextURL(pager Pager) (string, error) {
	if pager == nil || s.opts.PagerElement == nil {
		return "", nil
	}

	element := *s.opts.PagerElement
	state, ok := pager.State(element)
	if !ok {
		return "", nil
	}

	if state.CurrentPage >= state.TotalPages-1 {
		return "", nil
	}

	next, err := pager.PageURL(element, state.CurrentPage+1)
	if err != nil {
		return "", fmt.Errorf("failed to build next page URL: %w", err)
	}
	return next, nil
}

// substitute resolves template against the first row.
func (s *Serializer) substitute(env Env, template string) (string, error) {
	if template == "" || env.Tokens == nil {
		return template, nil
	}
	return env.Tokens.Substitute(template, 0)
}
