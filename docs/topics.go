// Package docs holds the help topics of the taxer command.
//
// Topics are markdown templates. They can call methodTable to list the tax
// methods as the code defines them.
package docs

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/etnz/taxlots"
)

//go:embed *.md
var files embed.FS

// Readme is the topic shown when none is requested. It is not listed by Names.
const Readme = "readme"

var funcs = template.FuncMap{
	"methodTable": methodTable,
}

// Names returns the available topics, sorted.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if e.IsDir() || name == Readme {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Get returns the given topics concatenated. "*" stands for every topic.
func Get(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			all, err := Names()
			if err != nil {
				return "", err
			}
			expanded = all
		}
		for _, n := range expanded {
			if err := render(&b, n); err != nil {
				return "", err
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func render(w io.Writer, name string) error {
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return fmt.Errorf("topic %q not found: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Errorf("topic %q: %w", name, err)
	}
	return tmpl.Execute(w, nil)
}

// methodTable lists the tax methods in reporting order.
func methodTable() string {
	var b strings.Builder
	b.WriteString("| Method | Lots consumed first |\n")
	b.WriteString("|:-------|:--------------------|\n")
	for _, m := range taxlots.Methods() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", m, m.Description())
	}
	return b.String()
}
