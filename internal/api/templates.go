package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web/templates web/static
var webFS embed.FS

var templatePatterns = []string{
	"web/templates/layouts/*.html",
	"web/templates/partials/*.html",
	"web/templates/pages/*.html",
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		// json marshals a value to JSON string
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}

	return template.New("base").Funcs(funcs).ParseFS(webFS, templatePatterns...)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
