package source

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const summaryLength = 300

var stripPolicy = bluemonday.StrictPolicy()

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document. Entries keep document order.
func (p *Parser) Run(data []byte) (*Metadata, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}
	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entry := p.normalizeItem(item)
		entry.ContentHash = contentHash(entry)
		entries = append(entries, entry)
	}

	return metadata, entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		GUID:       cmp.Or(item.GUID, item.Link),
		Title:      strings.TrimSpace(item.Title),
		Link:       item.Link,
		Body:       cmp.Or(item.Content, item.Description),
		HasContent: item.Content != "",
		Summary:    Summarize(cmp.Or(item.Description, item.Content)),
		AuthorName: authorName(item),
		Categories: item.Categories,
	}

	switch {
	case item.PublishedParsed != nil:
		entry.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		entry.PublishedAt = *item.UpdatedParsed
	default:
		entry.PublishedAt = time.Now().UTC()
	}
	if item.UpdatedParsed != nil {
		entry.UpdatedAt = item.UpdatedParsed
	}

	if item.Image != nil {
		entry.Image = item.Image.URL
	}
	if entry.Image == "" {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
				entry.Image = enclosure.URL
				break
			}
		}
	}

	return entry
}

func contentHash(entry Entry) string {
	hash := sha256.Sum256([]byte(entry.Title + "|" + entry.Link))
	return hex.EncodeToString(hash[:])
}

func authorName(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := cmp.Or(strings.TrimSpace(author.Name), strings.TrimSpace(author.Email)); name != "" {
			return name
		}
	}
	if item.Author != nil {
		return cmp.Or(strings.TrimSpace(item.Author.Name), strings.TrimSpace(item.Author.Email))
	}
	return ""
}

// Summarize reduces HTML to a plain text summary, cut at a word boundary.
func Summarize(s string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= summaryLength {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:summaryLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
