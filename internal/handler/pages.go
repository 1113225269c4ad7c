package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/middleware"
	"github.com/userdesk/userdesk/internal/token"
)

// PagesHandler serves the navigational page endpoints. Pages render as JSON
// page descriptors the front-end bundle hydrates; the gatekeeper has already
// handled locale and access by the time these run.
type PagesHandler struct {
	locales *i18n.Locales
	log     *slog.Logger
}

func NewPagesHandler(locales *i18n.Locales, log *slog.Logger) *PagesHandler {
	if locales == nil {
		panic("pages handler: locales are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PagesHandler{locales: locales, log: log}
}

// page is the descriptor the front end renders from.
type page struct {
	Page   string `json:"page"`
	Locale string `json:"locale"`
	Title  string `json:"title"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Home redirects the locale root to the interface.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)
	http.Redirect(w, r, i18n.Localize(loc, "/interface"), http.StatusFound)
}

// SignIn serves the sign-in page descriptor.
func (h *PagesHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/sign-in", "auth.signin.ok")
}

// SignUp serves the sign-up page descriptor.
func (h *PagesHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/sign-up", "auth.signup.ok")
}

// ForgotPassword serves the recovery page descriptor.
func (h *PagesHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/forgot-password", "auth.unauthorized")
}

// Interface serves the signed-in dashboard descriptor.
func (h *PagesHandler) Interface(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "interface", "interface.title")
}

// Profile serves the profile page descriptor.
func (h *PagesHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "interface/profile", "interface.profile.title")
}

// Admin serves the admin users page descriptor.
func (h *PagesHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "interface/admin", "interface.admin.title")
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, name, titleKey string) {
	loc := requestLocale(r, h.locales)

	p := page{
		Page:   name,
		Locale: loc,
		Title:  h.locales.T(loc, titleKey),
	}

	// Identity shown in the header when the gatekeeper loaded a session.
	if sess, ok := middleware.GetSession(r.Context()); ok {
		if claims, err := token.DecodeClaims(sess.AccessToken); err == nil {
			p.Email = claims.Email
			p.Role = string(claims.Role)
		}
	}

	writeJSON(w, h.log, http.StatusOK, p)
}
