package views

import (
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	unix := time.Unix(1700000000, 0).In(time.Local).Format(time.RFC3339)
	stamp := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC).In(time.Local).Format(time.RFC3339)

	tests := []struct {
		name      string
		raw       interface{}
		fieldType string
		expected  string
	}{
		{"nil", nil, FieldTypeString, ""},
		{"string passes through", "node/1", FieldTypeString, "node/1"},
		{"bytes", []byte("abc"), FieldTypeString, "abc"},
		{"integer", int64(42), FieldTypeString, "42"},
		{"float", 1.5, FieldTypeString, "1.5"},
		{"text strips markup", "<p>Fish &amp; chips</p>", FieldTypeText, "Fish & chips"},
		{"text normalizes", "Cafe\u0301 ", FieldTypeText, "Caf\u00e9"},
		{"html sanitizes", `<p onclick="x">Hi<script>alert(1)</script></p>`, FieldTypeHTML, "<p>Hi</p>"},
		{"date from unix integer", int64(1700000000), FieldTypeDate, unix},
		{"date from unix string", "1700000000", FieldTypeDate, unix},
		{"date from sqlite timestamp", "2023-11-14 22:13:20", FieldTypeDate, stamp},
		{"date from RFC3339", "2023-11-14T22:13:20Z", FieldTypeDate, stamp},
		{"date from RFC1123Z", "Tue, 14 Nov 2023 22:13:20 +0000", FieldTypeDate, stamp},
		{"date with offset", "2023-11-15 00:13:20 +0200", FieldTypeDate, stamp},
		{"unparseable date", "yesterday", FieldTypeDate, ""},
		{"empty date", "", FieldTypeDate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatValue(tt.raw, tt.fieldType)
			if got != tt.expected {
				t.Errorf("formatValue(%v, %s) = %q, expected %q", tt.raw, tt.fieldType, got, tt.expected)
			}
		})
	}
}
