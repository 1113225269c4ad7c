package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestClient_SignIn(t *testing.T) {
	t.Parallel()

	t.Run("returns the issued token pair", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/signin", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@example.com", body["Email"])
			assert.Equal(t, "Passw0rd!", body["Password"])

			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"data": map[string]string{
					"accessToken":  "access-tok",
					"refreshToken": "refresh-tok",
				},
			})
		})

		toks, err := c.SignIn(context.Background(), "user@example.com", "Passw0rd!")
		require.NoError(t, err)
		assert.Equal(t, "access-tok", toks.AccessToken)
		assert.Equal(t, "refresh-tok", toks.RefreshToken)
	})

	t.Run("maps upstream rejections to APIError", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			status int
		}{
			{"invalid credentials", http.StatusUnauthorized},
			{"unknown user", http.StatusNotFound},
			{"no password set", http.StatusConflict},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					json.NewEncoder(w).Encode(map[string]string{"message": tt.name}) //nolint:errcheck
				})

				_, err := c.SignIn(context.Background(), "user@example.com", "Passw0rd!")
				apiErr, ok := AsAPIError(err)
				require.True(t, ok)
				assert.Equal(t, tt.status, apiErr.Status)
				assert.Equal(t, tt.name, apiErr.Message)
			})
		}
	})

	t.Run("rejects success response without tokens", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}}) //nolint:errcheck
		})

		_, err := c.SignIn(context.Background(), "user@example.com", "Passw0rd!")
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})

	t.Run("unreachable upstream wraps ErrUnavailable", func(t *testing.T) {
		t.Parallel()

		c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := c.SignIn(context.Background(), "user@example.com", "Passw0rd!")
		require.ErrorIs(t, err, ErrUnavailable)

		_, ok := AsAPIError(err)
		assert.False(t, ok)
	})
}

func TestClient_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("posts the refresh token and returns the new access token", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/refresh", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-tok", body["refresh"])

			json.NewEncoder(w).Encode(map[string]string{"accessToken": "new-access"}) //nolint:errcheck
		})

		got, err := c.Refresh(context.Background(), "refresh-tok")
		require.NoError(t, err)
		assert.Equal(t, "new-access", got)
	})

	t.Run("rejected refresh surfaces the upstream status", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := c.Refresh(context.Background(), "stale-tok")
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	})

	t.Run("rejects response without access token", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{}) //nolint:errcheck
		})

		_, err := c.Refresh(context.Background(), "refresh-tok")
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})
}

func TestClient_SignOut(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signout", r.URL.Path)
		assert.Equal(t, "Bearer access-tok", r.Header.Get("Authorization"))
	})

	require.NoError(t, c.SignOut(context.Background(), "access-tok"))
}

func TestClient_Me(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer access-tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(User{ //nolint:errcheck
			ID:    "user-1",
			Email: "user@example.com",
			Role:  "USER",
		})
	})

	user, err := c.Me(context.Background(), "access-tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestClient_Users(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/users", r.URL.Path)
			json.NewEncoder(w).Encode([]User{{ID: "a"}, {ID: "b"}}) //nolint:errcheck
		})

		users, err := c.ListUsers(context.Background(), "tok")
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("update patches by id", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/users/user-1", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Ana", body["Name"])
			assert.NotContains(t, body, "Email")

			json.NewEncoder(w).Encode(User{ID: "user-1", Name: "Ana"}) //nolint:errcheck
		})

		user, err := c.UpdateUser(context.Background(), "tok", "user-1", UserParams{Name: "Ana"})
		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/users/user-1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, c.DeleteUser(context.Background(), "tok", "user-1"))
	})

	t.Run("inactive by days", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/inactive/30", r.URL.Path)
			json.NewEncoder(w).Encode([]User{{ID: "stale"}}) //nolint:errcheck
		})

		users, err := c.InactiveUsers(context.Background(), "tok", 30)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "stale", users[0].ID)
	})
}

func TestClient_PasswordFlows(t *testing.T) {
	t.Parallel()

	t.Run("forgot password passes the message through", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/forgot-password", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"message": "recovery email sent"}) //nolint:errcheck
		})

		msg, err := c.ForgotPassword(context.Background(), "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "recovery email sent", msg)
	})

	t.Run("change password sends all three fields", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@example.com", body["Email"])
			assert.Equal(t, "OldPassw0rd!", body["Password"])
			assert.Equal(t, "NewPassw0rd!", body["NewPassword"])

			json.NewEncoder(w).Encode(map[string]string{"message": "password updated"}) //nolint:errcheck
		})

		msg, err := c.ChangePassword(context.Background(), "user@example.com", "OldPassw0rd!", "NewPassw0rd!")
		require.NoError(t, err)
		assert.Equal(t, "password updated", msg)
	})
}
