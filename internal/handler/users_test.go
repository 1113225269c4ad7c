package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/userdesk/internal/upstream"
)

// withURLParam injects a chi route parameter for handlers invoked directly.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestProfileHandler_Me(t *testing.T) {
	t.Parallel()

	t.Run("returns the upstream profile", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/me", r.URL.Path)
			assert.NotEmpty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(upstream.User{ID: "user-1", Email: "user@example.com"}) //nolint:errcheck
		})

		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		f.attachSession(t, r, "USER")

		w := httptest.NewRecorder()
		f.profile.Me(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var user upstream.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("no session is 401 without upstream call", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)

		w := httptest.NewRecorder()
		f.profile.Me(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, f.calls.Load())
	})
}

func TestProfileHandler_Update(t *testing.T) {
	t.Parallel()

	t.Run("patches the caller's own user id", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			// The id comes from the token's sub claim, not the request.
			assert.Equal(t, "/users/user-1", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ana", body["Name"])

			json.NewEncoder(w).Encode(upstream.User{ID: "user-1", Name: "Ana"}) //nolint:errcheck
		})

		r := jsonRequest(t, http.MethodPatch, "/api/me", map[string]string{"name": "Ana"})
		f.attachSession(t, r, "USER")

		w := httptest.NewRecorder()
		f.profile.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a too-short name locally", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)

		r := jsonRequest(t, http.MethodPatch, "/api/me", map[string]string{"name": "A"})
		f.attachSession(t, r, "USER")

		w := httptest.NewRecorder()
		f.profile.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeResult(t, w).Errors, "name")
		assert.Zero(t, f.calls.Load())
	})
}

func TestUsersHandler(t *testing.T) {
	t.Parallel()

	t.Run("list relays the upstream response", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]upstream.User{{ID: "a"}, {ID: "b"}}) //nolint:errcheck
		})

		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)

		var users []upstream.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("upstream authorization rejections pass through", func(t *testing.T) {
		t.Parallel()

		// A non-admin token reaches the handler, upstream says 403.
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"message": "admin role required"}) //nolint:errcheck
		})

		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		f.attachSession(t, r, "USER")

		w := httptest.NewRecorder()
		f.users.List(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "admin role required", decodeResult(t, w).Message)
	})

	t.Run("no session is 401", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)

		w := httptest.NewRecorder()
		f.users.List(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, f.calls.Load())
	})

	t.Run("get by id", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/user-9", r.URL.Path)
			json.NewEncoder(w).Encode(upstream.User{ID: "user-9"}) //nolint:errcheck
		})

		r := httptest.NewRequest(http.MethodGet, "/api/users/user-9", nil)
		r = withURLParam(r, "id", "user-9")
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("create forwards the payload", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "new@example.com", body["Email"])

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(upstream.User{ID: "new", Email: "new@example.com"}) //nolint:errcheck
		})

		r := jsonRequest(t, http.MethodPost, "/api/users", map[string]string{
			"Email":    "new@example.com",
			"Name":     "New",
			"LastName": "User",
			"Password": "Passw0rd!",
		})
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Create(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("create with empty payload is 400", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)

		r := jsonRequest(t, http.MethodPost, "/api/users", map[string]string{})
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete returns 204", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/users/user-9", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		r := httptest.NewRequest(http.MethodDelete, "/api/users/user-9", nil)
		r = withURLParam(r, "id", "user-9")
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("inactive validates the days parameter", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, nil)

		r := httptest.NewRequest(http.MethodGet, "/api/users/inactive/abc", nil)
		r = withURLParam(r, "days", "abc")
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Inactive(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, f.calls.Load())
	})

	t.Run("inactive relays the upstream list", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/inactive/30", r.URL.Path)
			json.NewEncoder(w).Encode([]upstream.User{{ID: "stale"}}) //nolint:errcheck
		})

		r := httptest.NewRequest(http.MethodGet, "/api/users/inactive/30", nil)
		r = withURLParam(r, "days", "30")
		f.attachSession(t, r, "ADMIN")

		w := httptest.NewRecorder()
		f.users.Inactive(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// The fixtures keep the expired-session repair path covered end to end:
// an expired access cookie on an API route refreshes before the call.
func TestProfileHandler_Me_RefreshesExpiredAccess(t *testing.T) {
	t.Parallel()

	newAccess := makeJWT(t, "USER", time.Now().Add(time.Hour))

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			json.NewEncoder(w).Encode(map[string]string{"accessToken": newAccess}) //nolint:errcheck
		case "/auth/me":
			assert.Equal(t, "Bearer "+newAccess, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(upstream.User{ID: "user-1"}) //nolint:errcheck
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	refreshExp := time.Now().Add(24 * time.Hour)
	blob, err := f.codec.Encrypt(makeJWT(t, "USER", refreshExp), refreshExp)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: "refresh_token", Value: blob})

	w := httptest.NewRecorder()
	f.profile.Me(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), f.calls.Load())
}
