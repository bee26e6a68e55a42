package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/taxlots"
)

//go:embed templates/*.md
var templates embed.FS

// Options holds configuration for rendering a gains report.
type Options struct {
	Details bool // Render the lots consumed by every sale, per method.
}

// funcs are the formatting helpers available to every template.
var funcs = template.FuncMap{
	"amount": func(m taxlots.Money) string { return m.Fixed(2) },
	"money":  taxlots.Money.String,
	"day":    func(t time.Time) string { return t.Format(taxlots.DateFormat) },
	"term":   term,
}

func term(longTerm bool) string {
	if longTerm {
		return "long"
	}
	return "short"
}

// RenderGains renders the gains report to a markdown string.
func RenderGains(r *taxlots.GainsReport, opts Options) string {
	partials := map[string]string{
		"gains_title":   "gains_title.md",
		"gains_methods": "gains_methods.md",
	}
	// An empty file name results in an empty template.
	if opts.Details {
		partials["gains_disposals"] = "gains_disposals.md"
	} else {
		partials["gains_disposals"] = ""
	}
	return renderTemplate("gains", "gains.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
