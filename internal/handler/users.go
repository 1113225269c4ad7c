package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/upstream"
)

// UsersHandler is the admin users passthrough. Authorization is enforced
// upstream: the handler only attaches the caller's access token and relays
// the response, so a non-admin token gets the upstream 401/403 unchanged.
type UsersHandler struct {
	api      *upstream.Client
	sessions *session.Manager
	locales  *i18n.Locales
	log      *slog.Logger
}

func NewUsersHandler(api *upstream.Client, sessions *session.Manager, locales *i18n.Locales, log *slog.Logger) *UsersHandler {
	if api == nil || sessions == nil || locales == nil {
		panic("users handler: api, sessions and locales are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &UsersHandler{api: api, sessions: sessions, locales: locales, log: log}
}

// withSession loads the session or writes 401 and reports false.
func (h *UsersHandler) withSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := h.sessions.Get(w, r)
	if err != nil {
		loc := requestLocale(r, h.locales)
		writeResult(w, h.log, Result{
			Status:  http.StatusUnauthorized,
			Message: h.locales.T(loc, "auth.unauthorized"),
		})
		return session.Session{}, false
	}
	return sess, true
}

// List returns all users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	users, err := h.api.ListUsers(r.Context(), sess.AccessToken)
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	writeJSON(w, h.log, http.StatusOK, users)
}

// Get returns a single user by id.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	user, err := h.api.GetUser(r.Context(), sess.AccessToken, chi.URLParam(r, "id"))
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	writeJSON(w, h.log, http.StatusOK, user)
}

// Create registers a user on behalf of an admin.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}

	user, err := h.api.CreateUser(r.Context(), sess.AccessToken, params)
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	writeJSON(w, h.log, http.StatusCreated, user)
}

// Update applies a partial update to a user.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	params, ok := h.decodeParams(w, r)
	if !ok {
		return
	}

	user, err := h.api.UpdateUser(r.Context(), sess.AccessToken, chi.URLParam(r, "id"), params)
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	writeJSON(w, h.log, http.StatusOK, user)
}

// Delete removes a user.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteUser(r.Context(), sess.AccessToken, chi.URLParam(r, "id")); err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Inactive lists users without activity for the requested number of days.
func (h *UsersHandler) Inactive(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r)
	if !ok {
		return
	}

	days, err := strconv.Atoi(chi.URLParam(r, "days"))
	if err != nil || days < 0 {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: "days must be a non-negative integer",
		})
		return
	}

	users, err := h.api.InactiveUsers(r.Context(), sess.AccessToken, days)
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, requestLocale(r, h.locales), h.locales))
		return
	}
	writeJSON(w, h.log, http.StatusOK, users)
}

// decodeParams fills the users payload from the request body or writes a
// 400 and reports false.
func (h *UsersHandler) decodeParams(w http.ResponseWriter, r *http.Request) (upstream.UserParams, bool) {
	var params upstream.UserParams
	decodeBody(r, &params, func() {
		params.Email = strings.TrimSpace(r.FormValue("email"))
		params.Name = strings.TrimSpace(r.FormValue("name"))
		params.LastName = strings.TrimSpace(r.FormValue("lastname"))
		params.Role = strings.TrimSpace(r.FormValue("role"))
		params.Password = r.FormValue("password")
	})

	if params == (upstream.UserParams{}) {
		loc := requestLocale(r, h.locales)
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
		})
		return upstream.UserParams{}, false
	}
	return params, true
}
