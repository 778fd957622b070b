package views

import (
	"context"
	"fmt"

	"github.com/lysyi3m/jsonfeed-views/app/database"
)

type Executor struct {
	rows database.RowSource
}

func NewExecutor(rows database.RowSource) *Executor {
	return &Executor{rows: rows}
}

// Execute runs the view query for the requested page. Pages past the end are
// clamped to the last page.
func (e *Executor) Execute(ctx context.Context, view *View, page int) (*Result, error) {
	result := &Result{view: view}

	perPage := view.ItemsPerPage()
	if perPage <= 0 {
		rows, err := e.rows.FetchRows(ctx, view.Query, -1, 0)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", view.Name, err)
		}
		result.rows = rows
		result.Total = len(rows)
		if result.Total > 0 {
			result.TotalPages = 1
		}
		return result, nil
	}

	total, err := e.rows.CountRows(ctx, view.Query)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", view.Name, err)
	}

	result.Total = total
	result.TotalPages = (total + perPage - 1) / perPage

	if page > result.TotalPages-1 {
		page = result.TotalPages - 1
	}
	if page < 0 {
		page = 0
	}
	result.CurrentPage = page

	rows, err := e.rows.FetchRows(ctx, view.Query, perPage, page*perPage)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", view.Name, err)
	}
	result.rows = rows

	return result, nil
}
