package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
)

const pageTemplate = `{{define "page.html"}}<!DOCTYPE html>
<html lang="en" class="{{.DarkClass}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"></script>
<style>
body { margin: 0; font-family: system-ui, sans-serif; background: {{.Theme.Background}}; color: {{.Theme.TextPrimary}}; }
header { padding: 1.5rem 2rem; border-bottom: 1px solid {{.Theme.Border}}; }
header h1 { margin: 0; font-size: 1.4rem; }
header .brand { color: {{.Theme.Accent}}; font-weight: 600; letter-spacing: .02em; }
header p { margin: .4rem 0 0; color: {{.Theme.TextMuted}}; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
.notice { padding: .6rem 1rem; border-radius: 6px; background: {{.Theme.WarningSoft}}; color: {{.Theme.Warning}}; }
section { position: relative; background: {{.Theme.Surface}}; border: 1px solid {{.Theme.Border}}; border-radius: 8px; padding: 1rem; }
section h2 { margin: 0 0 .2rem; font-size: 1.1rem; }
section .subtitle { margin: 0 0 .8rem; color: {{.Theme.TextMuted}}; font-size: .9rem; }
.pending { position: absolute; top: 10px; right: 10px; padding: 8px 12px; border-radius: 4px; font-size: 12px; color: #666; background: rgba(255, 255, 255, .9); border: 1px solid #ddd; z-index: 1000; }
.error { padding: 1rem; border-radius: 6px; background: {{.Theme.ErrorSoft}}; color: {{.Theme.Error}}; }
.hint { margin-top: .8rem; font-size: .85rem; color: {{.Theme.TextMuted}}; }
.hint ul { margin: .3rem 0 0; padding-left: 1.2rem; }
.hint pre { margin: 0; white-space: pre-wrap; font-family: inherit; }
.echart-box { display: flex; justify-content: center; }
</style>
</head>
<body>
{{.Header}}
<main>
{{range .Notices}}<div class="notice">{{.}}</div>
{{end}}{{.Content}}
</main>
</body>
</html>{{end}}`

const headerTemplate = `{{define "header.html"}}<header>
<div class="brand">{{.ProjectName}}</div>
<h1>{{.Title}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
</header>{{end}}`

const sectionTemplate = `{{define "section.html"}}<section id="{{.ID}}" data-revision="{{.Revision}}">
<h2>{{.Title}}</h2>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
{{if .Pending}}<div class="pending">{{.Pending}}</div>{{end}}
{{if .Error}}<div class="error">{{.Error}}</div>{{else}}{{.Chart}}{{end}}
{{with .Hint}}<div class="hint"><strong>{{.Title}}</strong>
<ul>{{range .Items}}<li><pre>{{.}}</pre></li>{{end}}</ul>
</div>{{end}}
</section>{{end}}`

var (
	templates     *template.Template
	templatesOnce sync.Once
	errTemplates  error
)

func getTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		tmpl := template.New("")

		for _, src := range []string{pageTemplate, headerTemplate, sectionTemplate} {
			var parseErr error

			tmpl, parseErr = tmpl.Parse(src)
			if parseErr != nil {
				errTemplates = fmt.Errorf("parsing templates: %w", parseErr)

				return
			}
		}

		templates = tmpl
	})

	return templates, errTemplates
}

func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, err := getTemplates()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	//nolint:gosec // templates are package constants and data is escaped by html/template.
	return template.HTML(buf.String()), nil
}

type pageData struct {
	Title     string
	DarkClass string
	Theme     ThemeConfig
	Header    template.HTML
	Notices   []string
	Content   template.HTML
}

type headerData struct {
	ProjectName string
	Title       string
	Description string
}

type sectionData struct {
	ID       string
	Revision int
	Title    string
	Subtitle string
	Pending  string
	Error    string
	Chart    template.HTML
	Hint     *Hint
}
