package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/provider"
	"github.com/shelf-inventory/shelf/internal/query"
	"github.com/shelf-inventory/shelf/internal/shared"
	"github.com/shelf-inventory/shelf/internal/view"
)

// Writer saves edited profile fields for the signed-in user.
type Writer interface {
	UpdateProfile(ctx context.Context, caller provider.Caller, fields map[string]string) error
}

// PageData is the template model of the profile page.
type PageData struct {
	Profile dashboard.UserProfile
	State   query.ViewState
}

// EditData is the template model of the profile editor.
type EditData struct {
	Fields []FormField
	Errors map[string]string
}

// Handler serves the profile routes.
type Handler struct {
	logger    *slog.Logger
	fetcher   *provider.Fetcher
	writer    Writer
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a profile Handler.
func NewHandler(logger *slog.Logger, fetcher *provider.Fetcher, writer Writer, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		fetcher:   fetcher,
		writer:    writer,
		templates: templates,
		csrf:      csrf,
		validator: shared.NewValidator(),
	}
}

// MountRoutes registers the profile routes. They expect a signed-in identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.showProfile)
	r.Get("/edit-profile", h.showEdit)
	r.Post("/edit-profile", h.handleEdit)
}

func callerFor(r *http.Request) provider.Caller {
	caller := provider.Caller{}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		caller.Scope = sess.ID
	}
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		caller.UserID = id.UserID
		caller.Token = id.Token
	}
	return caller
}

// current resolves the profile query. ok is false once the session has been
// expired and the response redirected.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (query.State, bool) {
	caller := callerFor(r)
	states, err := h.fetcher.Ensure(r.Context(), caller, provider.ProfileSelf)
	if errors.Is(err, provider.ErrUnauthorized) {
		h.expire(w, r)
		return query.State{}, false
	}
	sess := shared.SessionFromContext(r.Context())
	for _, notice := range h.fetcher.Store().TakeNotices(caller.Scope) {
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: notice})
		}
	}
	return states[provider.ProfileSelf], true
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	st, ok := h.current(w, r)
	if !ok {
		return
	}
	data := PageData{
		Profile: dashboard.ProfileFields(st.Data),
		State:   query.Combine(false, st),
	}
	h.render(w, r, http.StatusOK, "pages/profile.html", "Profile", data)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	st, ok := h.current(w, r)
	if !ok {
		return
	}
	profile := dashboard.ProfileFields(st.Data)
	values := make(map[string]string, len(InputFields))
	for _, f := range InputFields {
		values[f.Name] = profile.Value(f.Name)
	}
	h.render(w, r, http.StatusOK, "pages/edit_profile.html", "Edit Profile", EditData{
		Fields: formFields(values, nil),
		Errors: map[string]string{},
	})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(InputFields))
	for _, f := range InputFields {
		values[f.Name] = strings.TrimSpace(r.PostFormValue(f.Name))
	}
	errs := shared.FieldErrors(h.validator.Struct(formFrom(values)))
	status := http.StatusBadRequest
	if len(errs) == 0 {
		caller := callerFor(r)
		err := h.writer.UpdateProfile(r.Context(), caller, values)
		if err == nil {
			if _, err := h.fetcher.Refresh(r.Context(), caller, provider.ProfileSelf); errors.Is(err, provider.ErrUnauthorized) {
				h.expire(w, r)
				return
			}
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Profile updated successfully!"})
			}
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		if errors.Is(err, provider.ErrUnauthorized) {
			h.expire(w, r)
			return
		}
		h.logger.Warn("update profile failed", slog.Any("error", err))
		errs["general"] = "Something went wrong!"
		var upstream *provider.UpstreamError
		if errors.As(err, &upstream) {
			errs["general"] = upstream.Notice()
			if upstream.Status >= http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
		} else {
			status = http.StatusBadGateway
		}
	}
	h.render(w, r, status, "pages/edit_profile.html", "Edit Profile", EditData{
		Fields: formFields(values, errs),
		Errors: errs,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	td := view.NewTemplateData(r, h.csrf, title, data)
	if err := h.templates.RenderStatus(w, status, page, td); err != nil {
		h.logger.Error("render profile page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.fetcher.Store().Drop(sess.ID)
		sess.Expire()
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowProfileForTest exposes the profile page for tests.
func (h *Handler) ShowProfileForTest(w http.ResponseWriter, r *http.Request) { h.showProfile(w, r) }

// ShowEditForTest exposes the editor page for tests.
func (h *Handler) ShowEditForTest(w http.ResponseWriter, r *http.Request) { h.showEdit(w, r) }

// HandleEditForTest exposes the editor submission for tests.
func (h *Handler) HandleEditForTest(w http.ResponseWriter, r *http.Request) { h.handleEdit(w, r) }
