package source

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"
)

var ErrNoContent = errors.New("no content extracted")

type Extracted struct {
	HTML string
	Text string
}

type ContentExtractor struct {
	policy *bluemonday.Policy
}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{policy: bluemonday.UGCPolicy()}
}

// Run extracts the main article of an HTML page. pageURL, when set, is used
// to resolve relative links inside the article.
func (e *ContentExtractor) Run(data []byte, pageURL string) (*Extracted, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	var base *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL: %w", err)
		}
		base = parsed
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	var htmlBuf, textBuf strings.Builder
	if err := article.RenderHTML(&htmlBuf); err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}
	if err := article.RenderText(&textBuf); err != nil {
		return nil, fmt.Errorf("failed to render text: %w", err)
	}

	extracted := &Extracted{
		HTML: strings.TrimSpace(e.policy.Sanitize(htmlBuf.String())),
		Text: strings.Join(strings.Fields(textBuf.String()), " "),
	}
	if extracted.HTML == "" || extracted.Text == "" {
		return nil, ErrNoContent
	}

	slog.Debug("Content extracted", "url", pageURL, "content_length", len(extracted.HTML))

	return extracted, nil
}
