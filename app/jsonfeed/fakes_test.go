package jsonfeed

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type fakeFields struct {
	rows []map[string]string
	err  error
}

func (f *fakeFields) FieldValue(rowIndex int, fieldID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if rowIndex < 0 || rowIndex >= len(f.rows) {
		return "", nil
	}
	return f.rows[rowIndex][fieldID], nil
}

type fakeURLs struct {
	base  string
	calls []string
}

func (f *fakeURLs) AbsoluteURL(path string) (string, error) {
	f.calls = append(f.calls, path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	return f.base + path, nil
}

type fakeTokens struct {
	fields *fakeFields
}

func (f *fakeTokens) Substitute(template string, rowIndex int) (string, error) {
	out := template
	if rowIndex < len(f.fields.rows) {
		for k, v := range f.fields.rows[rowIndex] {
			out = strings.ReplaceAll(out, "{{ "+k+" }}", v)
		}
	}
	return out, nil
}

type fakePager struct {
	states map[int]PagerState
	route  string
}

func (f *fakePager) State(element int) (PagerState, bool) {
	state, ok := f.states[element]
	return state, ok
}

func (f *fakePager) PageURL(element, page int) (string, error) {
	if f.route == "" {
		return "", fmt.Errorf("no route")
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return f.route + "?" + q.Encode(), nil
}
