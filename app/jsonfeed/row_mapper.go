package jsonfeed

import (
	"fmt"
	"net/url"
	"strings"
)

// RowMapper turns one row of the result set into a feed item.
type RowMapper interface {
	MapRow(rowIndex int, fields FieldResolver, urls URLResolver) (Item, error)
	Plugin() string
	Mapping() FieldMapping
	Schema() []Attribute
	Problems() []string
}

type schemaMapper struct {
	plugin         string
	schema         []Attribute
	mapping        FieldMapping
	requireContent bool
}

// NewRowMapper selects the item schema by row plugin name: json_fields maps
// id, url and title only, json_feed_fields maps every item attribute.
func NewRowMapper(plugin string, mapping FieldMapping) (RowMapper, error) {
	switch plugin {
	case PluginFields:
		return &schemaMapper{plugin: plugin, schema: minimalSchema, mapping: mapping}, nil
	case PluginFeedFields, "":
		return &schemaMapper{plugin: PluginFeedFields, schema: fullSchema, mapping: mapping, requireContent: true}, nil
	default:
		return nil, fmt.Errorf("unknown row plugin %q", plugin)
	}
}

func (m *schemaMapper) Plugin() string        { return m.plugin }
func (m *schemaMapper) Mapping() FieldMapping { return m.mapping }
func (m *schemaMapper) Schema() []Attribute   { return m.schema }

func (m *schemaMapper) MapRow(rowIndex int, fields FieldResolver, urls URLResolver) (Item, error) {
	var item Item

	for _, attr := range m.schema {
		fieldID := m.mapping.Source(attr)
		if fieldID == "" {
			continue
		}

		value, err := fields.FieldValue(rowIndex, fieldID)
		if err != nil {
			return Item{}, fmt.Errorf("row %d: failed to resolve field %s for %s: %w", rowIndex, fieldID, attr, err)
		}
		if value == "" {
			continue
		}

		if urlAttributes[attr] {
			value, err = absoluteURL(urls, value)
			if err != nil {
				return Item{}, fmt.Errorf("row %d: failed to resolve %s URL: %w", rowIndex, attr, err)
			}
			if value == "" {
				continue
			}
		}

		item.set(attr, value)
	}

	return item, nil
}

func (m *schemaMapper) Problems() []string {
	var problems []string

	if m.mapping.ID == "" {
		problems = append(problems, "Row style plugin requires specifying which views field to use for the JSON feed item id attribute.")
	}
	if m.mapping.URL == "" {
		problems = append(problems, "Row style plugin requires specifying which views field to use for the JSON feed item url attribute.")
	}
	if m.requireContent && m.mapping.ContentHTML == "" && m.mapping.ContentText == "" {
		problems = append(problems, "Either content_html or content_text must have a value.")
	}

	return problems
}

// absoluteURL treats a relative value as a site path, adding the leading
// separator when it is missing.
func absoluteURL(urls URLResolver, value string) (string, error) {
	if !isAbsoluteURL(value) && !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return urls.AbsoluteURL(value)
}

func isAbsoluteURL(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}
