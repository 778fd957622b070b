package views

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	htmlPolicy = bluemonday.UGCPolicy()
)

// formatValue renders a raw column value for the given field type. NULL and
// unreadable values render as "".
func formatValue(raw interface{}, fieldType string) string {
	if raw == nil {
		return ""
	}

	switch fieldType {
	case FieldTypeDate:
		return formatDate(raw)
	case FieldTypeText:
		return plainText(toString(raw))
	case FieldTypeHTML:
		return strings.TrimSpace(htmlPolicy.Sanitize(toString(raw)))
	default:
		return toString(raw)
	}
}

func toString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return ""
	}
}

// plainText strips markup, decodes entities and normalizes to NFC.
func plainText(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.TrimSpace(norm.NFC.String(s))
}

func formatDate(raw interface{}) string {
	var t time.Time

	switch v := raw.(type) {
	case time.Time:
		t = v
	case int64:
		t = time.Unix(v, 0)
	case float64:
		t = time.Unix(int64(v), 0)
	default:
		s := strings.TrimSpace(toString(raw))
		if s == "" {
			return ""
		}
		if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
			t = time.Unix(unix, 0)
			break
		}
		// Values without a zone are stored in UTC.
		parsed, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return ""
		}
		t = parsed
	}

	return t.In(time.Local).Format(time.RFC3339)
}
