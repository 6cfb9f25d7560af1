package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/userhubapp/userhub/internal/auth"
)

func newOAuthProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"12345","email":"alice@example.com","verified_email":true,"name":"Alice","picture":"https://example.com/a.png"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthService(t *testing.T, provider *httptest.Server) *auth.GoogleOAuthService {
	t.Helper()

	return auth.NewGoogleOAuthService(
		auth.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost/oauth/google/callback",
		},
		auth.WithOAuthEndpoint(oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		}),
		auth.WithProfileURL(provider.URL+"/userinfo"),
	)
}

func TestGoogleOAuthConfigEnabled(t *testing.T) {
	t.Parallel()

	assert.False(t, auth.GoogleOAuthConfig{}.Enabled())
	assert.False(t, auth.GoogleOAuthConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
	assert.True(t, auth.GoogleOAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}.Enabled())
}

func TestGoogleOAuthServiceAuthURL(t *testing.T) {
	t.Parallel()

	svc := newOAuthService(t, newOAuthProvider(t))

	url, state, err := svc.AuthURL()
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.Contains(t, url, "state="+state)
	assert.Contains(t, url, "client_id=client-id")

	_, otherState, err := svc.AuthURL()
	require.NoError(t, err)
	assert.NotEqual(t, state, otherState, "state tokens must be unique")
}

func TestGoogleOAuthServiceHandleCallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fetches profile for valid code and state", func(t *testing.T) {
		t.Parallel()

		svc := newOAuthService(t, newOAuthProvider(t))

		profile, err := svc.HandleCallback(ctx, "good-code", "state-abc", "state-abc")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", profile.Email)
		assert.Equal(t, "Alice", profile.Name)
		assert.True(t, profile.VerifiedEmail)
	})

	t.Run("rejects mismatched state", func(t *testing.T) {
		t.Parallel()

		svc := newOAuthService(t, newOAuthProvider(t))

		_, err := svc.HandleCallback(ctx, "good-code", "state-abc", "state-xyz")
		assert.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("rejects missing stored state", func(t *testing.T) {
		t.Parallel()

		svc := newOAuthService(t, newOAuthProvider(t))

		_, err := svc.HandleCallback(ctx, "good-code", "", "")
		assert.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("wraps exchange failure", func(t *testing.T) {
		t.Parallel()

		svc := newOAuthService(t, newOAuthProvider(t))

		_, err := svc.HandleCallback(ctx, "bad-code", "state-abc", "state-abc")
		assert.ErrorIs(t, err, auth.ErrCodeExchange)
	})
}
