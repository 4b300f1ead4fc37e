package docs

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter renders a DocModel to a writer.
type Formatter interface {
	Format(w io.Writer, model *DocModel) error
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	case "asciidoc", "adoc":
		return &AsciiDocFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported docs format: %s", format)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func inputs(m *DocModel) string {
	if m.Group == "sources" {
		return "none"
	}

	if len(m.InputTypes) == 0 {
		return "any"
	}

	return strings.Join(m.InputTypes, ", ")
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

// MarkdownFormatter renders documentation as Markdown.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, model *DocModel) error {
	fmt.Fprintf(w, "# %s\n\n", model.title())
	fmt.Fprintf(w, "**Proxy:** `%s` (%s)  \n", model.Name, model.Group)
	fmt.Fprintf(w, "**Input:** %s  \n", inputs(model))
	fmt.Fprintf(w, "**Output:** `%s`  \n", model.OutputType)
	fmt.Fprintln(w)

	if model.Description != "" {
		fmt.Fprintf(w, "%s\n\n", model.Description)
	}

	if len(model.Fields) > 0 {
		fmt.Fprintf(w, "## Parameters\n\n")

		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

		fmt.Fprintln(tw, "| Property\t| Type\t| Default\t| Choices\t| Description\t|")
		fmt.Fprintln(tw, "|----------\t|------\t|---------\t|---------\t|-------------\t|")

		for _, fi := range model.Fields {
			fmt.Fprintf(tw, "| `%s`\t| %s\t| %s\t| %s\t| %s\t|\n",
				fi.Property, fi.Type, dash(fi.Default), dash(fi.Choices), dash(oneLine(fi.Help)))
		}

		tw.Flush()

		fmt.Fprintln(w)
	}

	if len(model.Scripts) > 0 {
		fmt.Fprintf(w, "## Scripts\n\n")

		for _, s := range model.Scripts {
			fmt.Fprintf(w, "- `%s`\n", s)
		}

		fmt.Fprintln(w)
	}

	if model.IncludeExamples {
		fmt.Fprintf(w, "## Example\n\n```python\n%s```\n", GenerateExample(model))
	}

	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

// HTMLFormatter renders documentation as a standalone HTML page.
type HTMLFormatter struct{}

var htmlTpl = template.Must(template.New("docs").Funcs(template.FuncMap{
	"dash": dash,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.PageTitle}}</title>
<style>
body{font-family:sans-serif;margin:2em;line-height:1.6}
table{border-collapse:collapse;width:100%;margin-bottom:1em}
th,td{border:1px solid #ddd;padding:8px;text-align:left}
th{background:#f5f5f5}
code{background:#f0f0f0;padding:2px 4px;border-radius:3px}
pre{background:#f5f5f5;padding:1em;border-radius:4px;overflow-x:auto}
</style>
</head>
<body>
<h1>{{.PageTitle}}</h1>
<p><strong>Proxy:</strong> <code>{{.Name}}</code> ({{.Group}})</p>
<p><strong>Input:</strong> {{.Inputs}}</p>
<p><strong>Output:</strong> <code>{{.OutputType}}</code></p>
{{if .Description}}<p>{{.Description}}</p>{{end}}

{{if .Fields}}
<h2>Parameters</h2>
<table>
<tr><th>Property</th><th>Type</th><th>Default</th><th>Choices</th><th>Description</th></tr>
{{range .Fields}}<tr><td><code>{{.Property}}</code></td><td>{{.Type}}</td><td>{{dash .Default}}</td><td>{{dash .Choices}}</td><td>{{dash .Help}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Scripts}}
<h2>Scripts</h2>
<ul>
{{range .Scripts}}<li><code>{{.}}</code></li>
{{end}}
</ul>
{{end}}

{{if .Example}}
<h2>Example</h2>
<pre><code>{{.Example}}</code></pre>
{{end}}

</body>
</html>
`))

// htmlModel wraps DocModel with the values the template cannot compute.
type htmlModel struct {
	*DocModel
	PageTitle string
	Inputs    string
	Example   string
}

func (f *HTMLFormatter) Format(w io.Writer, model *DocModel) error {
	m := htmlModel{
		DocModel:  model,
		PageTitle: model.title(),
		Inputs:    inputs(model),
	}

	if model.IncludeExamples {
		m.Example = GenerateExample(model)
	}

	return htmlTpl.Execute(w, m)
}

// ---------------------------------------------------------------------------
// AsciiDoc
// ---------------------------------------------------------------------------

// AsciiDocFormatter renders documentation as AsciiDoc.
type AsciiDocFormatter struct{}

func (f *AsciiDocFormatter) Format(w io.Writer, model *DocModel) error {
	fmt.Fprintf(w, "= %s\n\n", model.title())
	fmt.Fprintf(w, "*Proxy:* `%s` (%s) +\n", model.Name, model.Group)
	fmt.Fprintf(w, "*Input:* %s +\n", inputs(model))
	fmt.Fprintf(w, "*Output:* `%s` +\n", model.OutputType)
	fmt.Fprintln(w)

	if model.Description != "" {
		fmt.Fprintf(w, "%s\n\n", model.Description)
	}

	if len(model.Fields) > 0 {
		fmt.Fprintf(w, "== Parameters\n\n")
		fmt.Fprintln(w, "[cols=\"1,1,1,1,2\", options=\"header\"]")
		fmt.Fprintln(w, "|===")
		fmt.Fprintln(w, "| Property | Type | Default | Choices | Description")

		for _, fi := range model.Fields {
			fmt.Fprintf(w, "\n| `%s`\n| %s\n| %s\n| %s\n| %s\n",
				fi.Property, fi.Type, dash(fi.Default), dash(fi.Choices), dash(oneLine(fi.Help)))
		}

		fmt.Fprintln(w, "|===")
		fmt.Fprintln(w)
	}

	if len(model.Scripts) > 0 {
		fmt.Fprintf(w, "== Scripts\n\n")

		for _, s := range model.Scripts {
			fmt.Fprintf(w, "* `%s`\n", s)
		}

		fmt.Fprintln(w)
	}

	if model.IncludeExamples {
		fmt.Fprintf(w, "== Example\n\n[source,python]\n----\n%s----\n", GenerateExample(model))
	}

	return nil
}
