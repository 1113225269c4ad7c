package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/session"
	"github.com/userdesk/userdesk/internal/token"
	"github.com/userdesk/userdesk/internal/upstream"
)

// ProfileHandler serves the authenticated user's own profile. API routes
// bypass the gatekeeper, so the session is reconstructed here; an expired
// access token still refreshes transparently.
type ProfileHandler struct {
	api      *upstream.Client
	sessions *session.Manager
	locales  *i18n.Locales
	log      *slog.Logger
}

func NewProfileHandler(api *upstream.Client, sessions *session.Manager, locales *i18n.Locales, log *slog.Logger) *ProfileHandler {
	if api == nil || sessions == nil || locales == nil {
		panic("profile handler: api, sessions and locales are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProfileHandler{api: api, sessions: sessions, locales: locales, log: log}
}

// Me returns the caller's profile as seen by the upstream API.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	sess, err := h.sessions.Get(w, r)
	if err != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusUnauthorized,
			Message: h.locales.T(loc, "auth.unauthorized"),
		})
		return
	}

	user, err := h.api.Me(r.Context(), sess.AccessToken)
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, loc, h.locales))
		return
	}

	writeJSON(w, h.log, http.StatusOK, user)
}

// Update patches the caller's own name fields. The user id comes from the
// access token's subject claim, never from the request, so a user can only
// ever update themself through this route.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	loc := requestLocale(r, h.locales)

	sess, err := h.sessions.Get(w, r)
	if err != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusUnauthorized,
			Message: h.locales.T(loc, "auth.unauthorized"),
		})
		return
	}

	claims, err := token.DecodeClaims(sess.AccessToken)
	if err != nil || claims.Subject == "" {
		h.log.WarnContext(r.Context(), "profile update with undecodable token", "error", err)
		writeResult(w, h.log, Result{
			Status:  http.StatusUnauthorized,
			Message: h.locales.T(loc, "auth.unauthorized"),
		})
		return
	}

	var p updateProfilePayload
	decodeBody(r, &p, func() {
		p.Name = strings.TrimSpace(r.FormValue("name"))
		p.LastName = strings.TrimSpace(r.FormValue("lastname"))
	})

	if errs := fieldErrors(p, loc, h.locales); errs != nil {
		writeResult(w, h.log, Result{
			Status:  http.StatusBadRequest,
			Message: h.locales.T(loc, "auth.validation_failed"),
			Errors:  errs,
		})
		return
	}

	user, err := h.api.UpdateUser(r.Context(), sess.AccessToken, claims.Subject, upstream.UserParams{
		Name:     p.Name,
		LastName: p.LastName,
	})
	if err != nil {
		writeResult(w, h.log, upstreamResult(err, loc, h.locales))
		return
	}

	writeJSON(w, h.log, http.StatusOK, user)
}

// upstreamResult maps an upstream failure on a passthrough route: statuses
// and messages propagate, network errors become 503 with a generic message.
func upstreamResult(err error, loc string, locales *i18n.Locales) Result {
	if apiErr, ok := upstream.AsAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = locales.T(loc, "auth.generic_failure")
		}
		return Result{Status: apiErr.Status, Message: msg}
	}
	if errors.Is(err, upstream.ErrUnavailable) {
		return Result{Status: http.StatusServiceUnavailable, Message: locales.T(loc, "auth.generic_failure")}
	}
	return Result{Status: http.StatusInternalServerError, Message: locales.T(loc, "auth.generic_failure")}
}
