package view

import (
	"net/http"

	"github.com/shelf-inventory/shelf/internal/shared"
)

// NewTemplateData gathers the layout values of a request: the CSRF token,
// pending flash messages and the signed-in identity. Flashes are consumed.
func NewTemplateData(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Identity:    shared.IdentityFromContext(ctx),
		Data:        data,
	}
	if sess == nil {
		return td
	}
	if csrf != nil {
		td.CSRFToken, _ = csrf.EnsureToken(ctx, sess)
	}
	td.Flashes = sess.PopFlashes()
	if td.Identity == nil {
		td.Identity = sess.Identity()
	}
	return td
}
