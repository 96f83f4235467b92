package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/jrsteele09/go-catalog-admin/products"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

var pageTemplates = []string{"sign_in.html", "products.html", "product_form.html"}

var templateFuncs = template.FuncMap{
	"float": products.FormValue[float64],
	"int":   products.FormValue[int],
	"add":   func(a, b int) int { return a + b },
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout from the
// embedded filesystem.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}
