package views

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

const pageParam = "page"

type Router interface {
	Route(path string, query url.Values) (string, error)
}

var _ jsonfeed.Pager = (*RequestPager)(nil)

// RequestPager is the pagination state of one request. The page query
// parameter holds one zero-based page index per pager element, comma
// separated, so several pagers can share a URL.
type RequestPager struct {
	router  Router
	path    string
	query   url.Values
	element int
	state   jsonfeed.PagerState
}

func NewRequestPager(router Router, path string, query url.Values, element int, state jsonfeed.PagerState) *RequestPager {
	return &RequestPager{
		router:  router,
		path:    path,
		query:   query,
		element: element,
		state:   state,
	}
}

func (p *RequestPager) State(element int) (jsonfeed.PagerState, bool) {
	if element != p.element {
		return jsonfeed.PagerState{}, false
	}
	return p.state, true
}

// PageURL links to the current route with element moved to page and every
// other query parameter kept.
func (p *RequestPager) PageURL(element, page int) (string, error) {
	query := url.Values{}
	for k, v := range p.query {
		query[k] = append([]string(nil), v...)
	}
	query.Set(pageParam, SetPage(p.query.Get(pageParam), element, page))

	return p.router.Route(p.path, query)
}

// CurrentPage reads the page of element from a page parameter value.
func CurrentPage(raw string, element int) int {
	if raw == "" || element < 0 {
		return 0
	}

	parts := strings.Split(raw, ",")
	if element >= len(parts) {
		return 0
	}

	page, err := strconv.Atoi(strings.TrimSpace(parts[element]))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// SetPage returns raw with the page of element replaced, padding missing
// elements with 0.
func SetPage(raw string, element, page int) string {
	var parts []string
	if raw != "" {
		parts = strings.Split(raw, ",")
	}
	for len(parts) <= element {
		parts = append(parts, "0")
	}

	for i := range parts {
		if i == element {
			parts[i] = strconv.Itoa(page)
			continue
		}
		parts[i] = strconv.Itoa(CurrentPage(raw, i))
	}

	return strings.Join(parts, ",")
}
