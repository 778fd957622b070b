package views

import (
	"regexp"

	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

var (
	_ jsonfeed.FieldResolver    = (*Result)(nil)
	_ jsonfeed.TokenSubstituter = (*Result)(nil)
)

// Result is one executed page of a view.
type Result struct {
	view        *View
	rows        []map[string]interface{}
	Total       int
	CurrentPage int
	TotalPages  int
}

func (r *Result) Len() int {
	return len(r.rows)
}

func (r *Result) PagerState() jsonfeed.PagerState {
	return jsonfeed.PagerState{CurrentPage: r.CurrentPage, TotalPages: r.TotalPages}
}

func (r *Result) FieldValue(rowIndex int, fieldID string) (string, error) {
	if rowIndex < 0 || rowIndex >= len(r.rows) {
		return "", nil
	}

	field, ok := r.view.field(fieldID)
	if !ok {
		return "", nil
	}

	column := field.Column
	if column == "" {
		column = field.ID
	}

	return formatValue(r.rows[rowIndex][column], field.Type), nil
}

// Substitute replaces {{ field_id }} placeholders with the values of the
// given row. Placeholders naming no field of the view are left as they are.
func (r *Result) Substitute(template string, rowIndex int) (string, error) {
	var err error

	out := tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		fieldID := tokenPattern.FindStringSubmatch(match)[1]
		if _, ok := r.view.field(fieldID); !ok {
			return match
		}

		value, ferr := r.FieldValue(rowIndex, fieldID)
		if ferr != nil && err == nil {
			err = ferr
		}
		return value
	})

	if err != nil {
		return "", err
	}
	return out, nil
}
