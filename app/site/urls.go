package site

import (
	"fmt"
	"net/url"
	"strings"
)

// URLs resolves site paths against the public base URL of the service.
type URLs struct {
	base url.URL
}

func NewURLs(baseURL string) (*URLs, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	return &URLs{base: *u}, nil
}

// BaseURL is the absolute URL of the site root, with a trailing slash.
func (u *URLs) BaseURL() string {
	return u.base.String() + "/"
}

// AbsoluteURL returns absolute URLs unchanged and prefixes site paths with
// the base URL. A path without a leading slash is taken relative to the root,
// and a value starting with "//" takes the scheme of the base URL. Site paths
// are percent-encoded, so literal "%" and spaces are allowed.
func (u *URLs) AbsoluteURL(path string) (string, error) {
	if strings.HasPrefix(path, "//") {
		parsed, err := url.Parse(u.base.Scheme + ":" + path)
		if err == nil && parsed.Host != "" {
			return parsed.String(), nil
		}
	}

	if parsed, err := url.Parse(path); err == nil && parsed.Scheme != "" {
		if parsed.Host == "" {
			return "", fmt.Errorf("unsupported URL %q", path)
		}
		return path, nil
	}

	sitePath, query, fragment := splitPath(path)
	if !strings.HasPrefix(sitePath, "/") {
		sitePath = "/" + sitePath
	}

	abs := u.base
	abs.Path = u.base.Path + unescape(sitePath)
	abs.RawQuery = escapeQuery(query)
	abs.Fragment = unescape(fragment)
	return abs.String(), nil
}

// Route builds the absolute URL of path with the given query.
func (u *URLs) Route(path string, query url.Values) (string, error) {
	abs, err := u.AbsoluteURL(path)
	if err != nil {
		return "", err
	}
	if encoded := query.Encode(); encoded != "" {
		abs += "?" + encoded
	}
	return abs, nil
}

func splitPath(raw string) (path, query, fragment string) {
	path, fragment, _ = strings.Cut(raw, "#")
	path, query, _ = strings.Cut(path, "?")
	return path, query, fragment
}

// unescape decodes percent-escapes, keeping the value literal when it holds
// a bare "%".
func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// escapeQuery percent-encodes bytes that may not appear in a raw query,
// leaving its separators and existing escapes alone.
func escapeQuery(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			b.WriteByte(c)
		case c == '%', c <= ' ', c >= 0x7f:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
