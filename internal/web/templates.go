package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sebbas-5pg/ryori-web/internal/env"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// render executes a page template. Execution errors surface as a bare
// 500 since the page itself failed to build.
func render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, page, data); err != nil {
		e := env.FromCtx(r.Context())
		e.Logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("page", page), slog.Any("error", err))
	}
}
