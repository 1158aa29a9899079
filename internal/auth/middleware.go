package auth

import (
	"net/http"
	"strings"

	"github.com/shelf-inventory/shelf/internal/platform/httpx"
	"github.com/shelf-inventory/shelf/internal/shared"
)

// RequireLogin admits requests whose session carries a valid identity and
// places that identity in the request context. Browsers are sent to the login
// page, API clients receive a 401 problem.
func (h *Handler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		id := sess.Identity()
		if !h.service.Valid(id) {
			if sess != nil && id != nil {
				sess.Expire()
			}
			if wantsJSON(r) {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json")
}
