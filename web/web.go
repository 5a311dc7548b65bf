// Package web holds the embedded HTML templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"cellar/internal/sheet"
)

//go:embed templates/*.html
var templates embed.FS

// Engine returns a template engine over the embedded templates. reload
// re-parses them on every render, which only matters with a disk-backed FS.
func Engine(reload bool) *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFunc("price", func(p *float64) string {
		if p == nil {
			return ""
		}
		return decimal.NewFromFloat(*p).StringFixed(2) + " kr"
	})
	engine.AddFunc("vintage", func(v *int) string {
		if v == nil {
			return "NV"
		}
		return sheet.FormatInt(v)
	})
	return engine
}
