package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strconv"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// loadTemplates parses the embedded page templates, keyed by page name.
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money":      formatMoney,
		"timestamp":  formatTimestamp,
		"productURL": productURL,
	}

	pages := map[string]string{
		"scan":   "templates/scan.tmpl",
		"report": "templates/report.tmpl",
	}
	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.tmpl", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func formatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// formatTimestamp renders seconds as m:ss.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func productURL(name string) string {
	return path.Join(productsPrefix, url.PathEscape(name))
}
