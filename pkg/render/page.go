// Package render draws chart specs with go-echarts and assembles them into
// a themed HTML page.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// ErrUnknownTheme is returned by ParseTheme.
var ErrUnknownTheme = errors.New("unknown theme")

const (
	projectName = "threadlens"
	styleTagLen = len("</style>")
)

// Hint is interpretive text shown under a chart.
type Hint struct {
	Title string
	Items []string
}

// Renderable is anything that renders itself as HTML.
type Renderable interface {
	Render(w io.Writer) error
}

// Section is one chart region of a page.
type Section struct {
	ID       string
	Revision int
	Title    string
	Subtitle string
	Pending  string
	Error    string
	Hint     *Hint
	Chart    Renderable
}

// Page is a complete visualization page.
type Page struct {
	Title       string
	Description string
	Theme       Theme
	Notices     []string
	Sections    []Section
}

// NewPage creates a page.
func NewPage(title, description string) *Page {
	return &Page{Title: title, Description: description, Theme: ThemeLight}
}

// WithTheme sets the page theme.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends sections.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	header, err := renderTemplate("header.html", headerData{
		ProjectName: projectName,
		Title:       p.Title,
		Description: p.Description,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	var content bytes.Buffer

	for _, section := range p.Sections {
		html, sectionErr := renderSection(section)
		if sectionErr != nil {
			return fmt.Errorf("render section %s: %w", section.ID, sectionErr)
		}

		content.WriteString(string(html))
	}

	darkClass := ""
	if p.Theme == ThemeDark {
		darkClass = "dark"
	}

	html, err := renderTemplate("page.html", pageData{
		Title:     p.Title,
		DarkClass: darkClass,
		Theme:     GetThemeConfig(p.Theme),
		Header:    header,
		Notices:   p.Notices,
		//nolint:gosec // assembled from escaped templates and go-echarts output.
		Content: template.HTML(content.String()),
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if _, err := io.WriteString(w, string(html)); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func renderSection(section Section) (template.HTML, error) {
	var chartHTML string

	if section.Chart != nil && section.Error == "" {
		var buf bytes.Buffer

		if err := section.Chart.Render(&buf); err != nil {
			return "", fmt.Errorf("rendering chart: %w", err)
		}

		chartHTML = extractChartContent(buf.String())
	}

	return renderTemplate("section.html", sectionData{
		ID:       section.ID,
		Revision: section.Revision,
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Pending:  section.Pending,
		Error:    section.Error,
		//nolint:gosec // go-echarts output.
		Chart: template.HTML(chartHTML),
		Hint:  section.Hint,
	})
}

// extractChartContent strips the standalone page go-echarts renders down to
// the chart container and script.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 || end < start {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
