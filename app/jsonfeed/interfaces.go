package jsonfeed

// FieldResolver returns the rendered value of a field for a row of the
// current result set. An unknown field or row yields "" and no error; an
// error means the lookup itself failed.
type FieldResolver interface {
	FieldValue(rowIndex int, fieldID string) (string, error)
}

// URLResolver turns a path, or an already absolute URL, into an absolute URL.
type URLResolver interface {
	AbsoluteURL(path string) (string, error)
}

// TokenSubstituter replaces the placeholders of template with the values of
// the given row.
type TokenSubstituter interface {
	Substitute(template string, rowIndex int) (string, error)
}

// Pager exposes the pagination state of the current request. State reports
// false when element has no pager attached.
type Pager interface {
	State(element int) (PagerState, bool)
	PageURL(element, page int) (string, error)
}

// Env bundles the collaborators of a single render.
type Env struct {
	Fields FieldResolver
	URLs   URLResolver
	Tokens TokenSubstituter
	Pager  Pager
	Site   Site
}
