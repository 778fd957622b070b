package api

import (
	"html/template"

	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
{{- with .FeedLink }}
<link rel="{{ .Rel }}" type="{{ .Type }}" title="{{ .Title }}" href="{{ .Href }}">
{{- end }}
</head>
<body>
<h1>{{ .Title }}</h1>
{{- if .Rows }}
<table>
<thead><tr>{{ range .Columns }}<th>{{ .Label }}</th>{{ end }}</tr></thead>
<tbody>
{{- range .Rows }}
<tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
{{- end }}
</tbody>
</table>
{{- else }}
<p>No content.</p>
{{- end }}
<nav>
{{- with .PrevURL }}<a rel="prev" href="{{ . }}">Previous</a>{{ end }}
{{- with .NextURL }}<a rel="next" href="{{ . }}">Next</a>{{ end }}
</nav>
</body>
</html>
`))

type pageColumn struct {
	ID    string
	Label string
}

type pageData struct {
	Title    string
	FeedLink *jsonfeed.HeadLink
	Columns  []pageColumn
	Rows     [][]template.HTML
	PrevURL  string
	NextURL  string
}
