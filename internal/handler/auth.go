package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/notify"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/upstream"
)

// AuthHandler implements the auth actions. Validation happens locally
// first; the upstream API is contacted only for payloads that pass. Every
// failure is mapped to a Result, never to a panic or a propagated error.
type AuthHandler struct {
	api      *upstream.Client
	sessions *session.Manager
	locales  *i18n.Locales
	notifier notify.Notifier
	log      *slog.Logger
}

// NewAuthHandler wires the auth actions. The notifier may be notify.Noop.
func NewAuthHandler(api *upstream.Client, sessions *session.Manager, locales *i18n.Locales, notifier notify.Notifier, log *slog.Logger) *AuthHandler {
	if api == nil || sessions == nil || locales == nil {
		panic("auth handler: api, sessions and locales are required")
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &AuthHandler{
		api:      api,
		sessions: sessions,
		locales:  locales,
		notifier: notifier,
		log:      log,
	}
}

// SignIn authenticates the user and creates the session on success.
//
// Status mapping follows the upstream contract: 401 invalid credentials,
// 404 unknown user, 409 account without a password (social sign-in only).
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	var p signInPayload
	decodeBody(r, &p, func() {
		p.Email = strings.TrimSpace(r.FormValue("email"))
		p.Password = r.FormValue("password")
	})

	if errs := fieldErrors(p, loc, h.locales); errs != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
			Errors:  errs,
		})
		return
	}

	toks, err := h.api.SignIn(r.Context(), p.Email, p.Password)
	if err != nil {
		h.log.WarnContext(r.Context(), "sign-in rejected", "email", p.Email, "error", err)
		writeResult(w, h.log, h.signInFailure(r, loc, err))
		return
	}

	if err := h.sessions.Create(w, toks.AccessToken, toks.RefreshToken); err != nil {
		h.log.ErrorContext(r.Context(), "session creation failed after sign-in", "error", err)
		writeResult(w, h.log, Result{
			Status:  http.StatusInternalServerError,
			Message: h.locales.T(loc, "auth.generic_failure"),
		})
		return
	}

	h.log.InfoContext(r.Context(), "sign-in successful", "email", p.Email)
	writeResult(w, h.log, Result{
		Status:   http.StatusOK,
		Message:  h.locales.T(loc, "auth.signin.ok"),
		Redirect: i18n.Localize(loc, "/interface"),
	})
}

// signInFailure maps an upstream error to the user-visible result.
func (h *AuthHandler) signInFailure(r *http.Request, loc string, err error) Result {
	if apiErr, ok := upstream.AsAPIError(err); ok {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return Result{Status: apiErr.Status, Message: h.locales.T(loc, "auth.signin.invalid")}
		case http.StatusNotFound:
			return Result{Status: apiErr.Status, Message: h.locales.T(loc, "auth.signin.not_found")}
		case http.StatusConflict:
			return Result{Status: apiErr.Status, Message: h.locales.T(loc, "auth.signin.no_password")}
		default:
			h.notify(r, "Sign-in failed unexpectedly", apiErr.Error())
			return Result{Status: apiErr.Status, Message: h.locales.T(loc, "auth.generic_failure")}
		}
	}

	// Transient network failure: generic message, existing session untouched.
	h.notify(r, "Auth API unreachable", err.Error())
	return Result{Status: http.StatusServiceUnavailable, Message: h.locales.T(loc, "auth.generic_failure")}
}

// SignUp registers a new account. No session is created; the result points
// the client at the sign-in page.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	var p signUpPayload
	decodeBody(r, &p, func() {
		p.Name = strings.TrimSpace(r.FormValue("name"))
		p.LastName = strings.TrimSpace(r.FormValue("lastname"))
		p.Email = strings.TrimSpace(r.FormValue("email"))
		p.Password = r.FormValue("password")
	})

	if errs := fieldErrors(p, loc, h.locales); errs != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
			Errors:  errs,
		})
		return
	}

	err := h.api.SignUp(r.Context(), upstream.SignUpParams{
		Email:    p.Email,
		Password: p.Password,
		Name:     p.Name,
		LastName: p.LastName,
	})
	if err != nil {
		if apiErr, ok := upstream.AsAPIError(err); ok {
			msg := apiErr.Message
			if apiErr.Status == http.StatusConflict {
				msg = h.locales.T(loc, "auth.signup.conflict")
			}
			if msg == "" {
				msg = h.locales.T(loc, "auth.generic_failure")
			}
			writeResult(w, h.log, Result{Status: apiErr.Status, Message: msg})
			return
		}
		writeResult(w, h.log, Result{
			Status:  http.StatusServiceUnavailable,
			Message: h.locales.T(loc, "auth.generic_failure"),
		})
		return
	}

	h.log.InfoContext(r.Context(), "sign-up successful", "email", p.Email)
	writeResult(w, h.log, Result{
		Status:   http.StatusCreated,
		Message:  h.locales.T(loc, "auth.signup.ok"),
		Redirect: i18n.Localize(loc, "/auth/sign-in"),
	})
}

// ForgotPassword triggers the recovery flow; the upstream message is passed
// through.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	var p forgotPasswordPayload
	decodeBody(r, &p, func() {
		p.Email = strings.TrimSpace(r.FormValue("email"))
	})

	if errs := fieldErrors(p, loc, h.locales); errs != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
			Errors:  errs,
		})
		return
	}

	msg, err := h.api.ForgotPassword(r.Context(), p.Email)
	if err != nil {
		writeResult(w, h.log, h.passthroughFailure(r, loc, err, "forgot-password"))
		return
	}

	writeResult(w, h.log, Result{Status: http.StatusOK, Message: msg})
}

// ChangePassword replaces the password after upstream verifies the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	var p changePasswordPayload
	decodeBody(r, &p, func() {
		p.Email = strings.TrimSpace(r.FormValue("email"))
		p.Password = r.FormValue("password")
		p.NewPassword = r.FormValue("newPassword")
	})

	if errs := fieldErrors(p, loc, h.locales); errs != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
			Errors:  errs,
		})
		return
	}

	msg, err := h.api.ChangePassword(r.Context(), p.Email, p.Password, p.NewPassword)
	if err != nil {
		writeResult(w, h.log, h.passthroughFailure(r, loc, err, "change-password"))
		return
	}

	writeResult(w, h.log, Result{Status: http.StatusOK, Message: msg})
}

// SignOut destroys the session. Logout never fails the user-visible flow:
// whatever happened upstream, the cookies are gone and the client is pointed
// at the sign-in page.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	h.sessions.Delete(w, r)

	writeResult(w, h.log, Result{
		Status:   http.StatusOK,
		Message:  h.locales.T(loc, "auth.signout.ok"),
		Redirect: i18n.Localize(loc, "/auth/sign-in"),
	})
}

// passthroughFailure maps password-flow errors: upstream statuses and
// messages pass through, network failures become a generic message.
func (h *AuthHandler) passthroughFailure(r *http.Request, loc string, err error, flow string) Result {
	h.log.WarnContext(r.Context(), flow+" failed", "error", err)

	if apiErr, ok := upstream.AsAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = h.locales.T(loc, "auth.generic_failure")
		}
		return Result{Status: apiErr.Status, Message: msg}
	}

	return Result{Status: http.StatusServiceUnavailable, Message: h.locales.T(loc, "auth.generic_failure")}
}

// notify delivers an operational alert without ever failing the request.
func (h *AuthHandler) notify(r *http.Request, title, detail string) {
	if err := h.notifier.Notify(r.Context(), title, detail, map[string]string{
		"path": r.URL.Path,
	}); err != nil && !errors.Is(err, notify.ErrDisabled) {
		h.log.Warn("notification delivery failed", "error", err)
	}
}

// decodeBody fills p from a JSON body, or runs the form fallback for
// form-encoded posts. A malformed JSON body leaves the payload zeroed and
// is caught by validation.
func decodeBody(r *http.Request, p any, fromForm func()) {
	if isJSONRequest(r) {
		_ = json.NewDecoder(r.Body).Decode(p)
		return
	}
	_ = r.ParseForm()
	fromForm()
}
