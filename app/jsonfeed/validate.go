package jsonfeed

import (
	"fmt"
	"strings"
)

// ConfigurationError lists every problem found in a feed display
// configuration. It is reported before rendering, never during it.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "invalid configuration"
	case 1:
		return "invalid configuration: " + e.Problems[0]
	default:
		return fmt.Sprintf("invalid configuration (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
	}
}

// Add appends problems and returns the receiver for chaining.
func (e *ConfigurationError) Add(problems ...string) *ConfigurationError {
	e.Problems = append(e.Problems, problems...)
	return e
}

// Err returns nil when no problem was recorded.
func (e *ConfigurationError) Err() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks a feed display before it is rendered. All applicable checks
// run; the returned *ConfigurationError carries every problem found.
func Validate(mapper RowMapper, opts Options, display Display, site Site) error {
	cfgErr := &ConfigurationError{}

	if mapper == nil {
		cfgErr.Add("Display requires a row plugin.")
	} else {
		cfgErr.Add(mapper.Problems()...)
	}

	if opts.SiteNameTitle {
		if site.Name == "" {
			cfgErr.Add("Display uses the site name as title but no site name is configured.")
		}
	} else if display.Title == "" {
		cfgErr.Add("Display requires a title, or the site name as title.")
	}

	return cfgErr.Err()
}
