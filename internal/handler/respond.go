// Package handler contains the HTTP entry points: the auth actions
// (sign-in, sign-up, password flows), profile and admin users passthroughs,
// and the localized page endpoints. Action handlers never propagate errors
// to the router; every outcome is encoded in the returned Result.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/internal/i18n"
	"github.com/userdesk/userdesk/internal/middleware"
)

// Result is the discriminated outcome of an action handler.
type Result struct {
	Status   int                 `json:"status"`
	Message  string              `json:"message,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

// writeResult renders a Result with its own status code.
func writeResult(w http.ResponseWriter, log *slog.Logger, res Result) {
	writeJSON(w, log, res.Status, res)
}

// writeJSON renders any payload as JSON.
func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response failed", "error", err)
	}
}

// requestLocale resolves the locale for an API request: the gatekeeper's
// resolved locale when present, otherwise fresh Accept-Language negotiation.
// API paths bypass the gatekeeper, so negotiation is the common case there.
func requestLocale(r *http.Request, locales *i18n.Locales) string {
	if loc := middleware.GetLocale(r.Context()); loc != "" {
		return loc
	}
	return locales.Negotiate(r.Header.Get("Accept-Language"))
}

// isJSONRequest reports whether the request body is JSON rather than form data.
func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
