package server

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pageTemplates holds every embedded page, parsed once. Handlers look their
// page up by file name at construction time, so a broken template fails the
// server at startup rather than on first request.
var pageTemplates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

func lookupTemplate(name string) (*template.Template, error) {
	t := pageTemplates.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("[server lookupTemplate] unknown template %q", name)
	}
	return t, nil
}
