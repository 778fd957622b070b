package site

import (
	"fmt"

	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

type Info struct {
	Name      string
	Slogan    string
	FrontPage string
	Favicon   string
}

// New resolves the site metadata the feed serializer needs.
func New(info Info, urls *URLs) (jsonfeed.Site, error) {
	s := jsonfeed.Site{
		Name:    info.Name,
		Slogan:  info.Slogan,
		BaseURL: urls.BaseURL(),
		Favicon: info.Favicon,
	}

	if info.FrontPage != "" {
		front, err := urls.AbsoluteURL(info.FrontPage)
		if err != nil {
			return jsonfeed.Site{}, fmt.Errorf("failed to resolve front page: %w", err)
		}
		s.FrontPageURL = front
	}

	return s, nil
}
