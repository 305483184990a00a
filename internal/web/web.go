package web

import (
	"embed"
	"html/template"
	"slices"

	"recordmate-backend/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates 解析内嵌的页面模板。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"hasKeyword": func(selected []model.Keyword, k model.Keyword) bool {
			return slices.Contains(selected, k)
		},
	}).ParseFS(templateFS, "templates/*.html")
}
