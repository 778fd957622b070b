package source

import (
	"fmt"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks entries rejected by the source filters. Excludes win over
// includes; an entry must match one include of every filter that has any.
func (f *Filterer) Run(entries []Entry, config *Config) []Entry {
	if len(config.Filters) == 0 {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entry.IsFiltered, entry.FilterReason = f.apply(entry, config.Filters)
		out = append(out, entry)
	}
	return out
}

func (f *Filterer) apply(entry Entry, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := strings.ToLower(fieldValue(entry, filter.Field))

		for _, exclude := range filter.Excludes {
			if strings.Contains(value, strings.ToLower(exclude)) {
				return true, fmt.Sprintf("excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}
		matched := false
		for _, include := range filter.Includes {
			if strings.Contains(value, strings.ToLower(include)) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
		}
	}

	return false, ""
}

func fieldValue(entry Entry, field string) string {
	switch field {
	case "title":
		return entry.Title
	case "summary":
		return entry.Summary
	case "body":
		return entry.Body
	case "author":
		return entry.AuthorName
	case "link":
		return entry.Link
	case "categories":
		return strings.Join(entry.Categories, " ")
	default:
		return ""
	}
}
