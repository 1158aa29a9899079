package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shelf-inventory/shelf/internal/shared"
	"github.com/shelf-inventory/shelf/internal/view"
)

// SignOutHook releases per-session state when a session ends.
type SignOutHook func(sessionID string)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
	onSignOut      SignOutHook
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, onSignOut SignOutHook) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      shared.NewValidator(),
		onSignOut:      onSignOut,
	}
}

// MountRoutes registers the public auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

// MountProtectedRoutes registers routes that need a signed-in user.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/change-password", h.showChangePassword)
	r.Post("/change-password", h.handleChangePassword)
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Name            string `form:"name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required"`
}

type changePasswordForm struct {
	OldPassword     string `form:"oldPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required"`
}

type formPageData struct {
	Form   any
	Errors map[string]string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data formPageData) {
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	td := view.NewTemplateData(r, h.csrfManager, title, data)
	if err := h.templates.RenderStatus(w, status, page, td); err != nil {
		h.logger.Error("render auth page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) signedIn(r *http.Request) bool {
	return h.service.Valid(shared.SessionFromContext(r.Context()).Identity())
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/login.html", "Login", formPageData{Form: loginForm{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := shared.FieldErrors(h.validator.Struct(form))
	if len(errs) == 0 {
		id, err := h.service.Login(r.Context(), LoginInput{Email: form.Email, Password: form.Password})
		if err == nil {
			h.signIn(r, id, "Successfully Logged In!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		errs["general"] = h.describe(err, "Invalid email or password")
	}
	form.Password = ""
	h.render(w, r, http.StatusBadRequest, "pages/login.html", "Login", formPageData{Form: form, Errors: errs})
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/register.html", "Create Account", formPageData{Form: registerForm{}})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	errs := shared.FieldErrors(h.validator.Struct(form))
	if len(errs) == 0 {
		id, err := h.service.Register(r.Context(), RegisterInput{Name: form.Name, Email: form.Email, Password: form.Password}, form.ConfirmPassword)
		switch {
		case err == nil:
			h.signIn(r, id, "Account registered successfully!")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, ErrPasswordMismatch):
			errs["confirmPassword"] = PasswordMismatchMessage
		case errors.Is(err, shared.ErrEmailTaken):
			errs["email"] = RejectionMessage(err, "An account with this email already exists")
		default:
			errs["general"] = h.describe(err, "Something went wrong!")
		}
	}
	form.Password, form.ConfirmPassword = "", ""
	h.render(w, r, http.StatusBadRequest, "pages/register.html", "Create Account", formPageData{Form: form, Errors: errs})
}

func (h *Handler) showChangePassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/change_password.html", "Change Password", formPageData{Form: changePasswordForm{}})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := changePasswordForm{
		OldPassword:     r.PostFormValue("oldPassword"),
		NewPassword:     r.PostFormValue("newPassword"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	errs := shared.FieldErrors(h.validator.Struct(form))
	if len(errs) == 0 {
		id := shared.IdentityFromContext(r.Context())
		err := h.service.ChangePassword(r.Context(), id, ChangePasswordInput{OldPassword: form.OldPassword, NewPassword: form.NewPassword}, form.ConfirmPassword)
		switch {
		case err == nil:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Password changed successfully!"})
			}
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		case errors.Is(err, ErrPasswordMismatch):
			errs["confirmPassword"] = PasswordMismatchMessage
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs["oldPassword"] = RejectionMessage(err, "Current password is incorrect")
		case errors.Is(err, shared.ErrUnauthenticated):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			errs["general"] = h.describe(err, "Something went wrong!")
		}
	}
	h.render(w, r, http.StatusBadRequest, "pages/change_password.html", "Change Password", formPageData{Form: changePasswordForm{}, Errors: errs})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if h.onSignOut != nil {
			h.onSignOut(sess.ID)
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) signIn(r *http.Request, id shared.Identity, message string) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		return
	}
	if h.onSignOut != nil {
		h.onSignOut(sess.ID)
	}
	h.sessionManager.Renew(sess)
	sess.SetIdentity(id)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	h.logger.Info("user signed in", slog.String("user_id", id.UserID))
}

func (h *Handler) describe(err error, fallback string) string {
	if errors.Is(err, shared.ErrInvalidCredentials) {
		return RejectionMessage(err, fallback)
	}
	h.logger.Warn("auth request failed", slog.Any("error", err))
	return fallback
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleRegisterForTest exposes the POST register handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}

// HandleChangePasswordForTest exposes the POST change-password handler for tests.
func (h *Handler) HandleChangePasswordForTest(w http.ResponseWriter, r *http.Request) {
	h.handleChangePassword(w, r)
}
