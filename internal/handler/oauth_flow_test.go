package handler_test

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/userhubapp/userhub/internal/auth"
	"github.com/userhubapp/userhub/internal/handler"
	"github.com/userhubapp/userhub/pkg/cookie"
	"github.com/userhubapp/userhub/pkg/session"
)

func newOAuthTestApp(t *testing.T) *testApp {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"12345","email":"alice@example.com","verified_email":true,"name":"Alice"}`))
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	cookieMgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	sessions := session.New(
		session.WithStore(session.NewMemoryStore(time.Minute)),
		session.WithCookieManager(cookieMgr),
	)

	storage := newFakeStorage()
	svc := auth.NewService(storage, auth.NewHasher())

	oauthSvc := auth.NewGoogleOAuthService(
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

	h := handler.New(svc, storage, sessions, cookieMgr, handler.WithGoogleOAuth(oauthSvc))

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		storage: storage,
	}
}

func TestOAuthFlow(t *testing.T) {
	t.Parallel()

	t.Run("start redirects to provider with stored state", func(t *testing.T) {
		t.Parallel()

		app := newOAuthTestApp(t)

		resp := app.get(t, "/oauth/google")
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.NotEmpty(t, location.Query().Get("state"))
		assert.Equal(t, "client-id", location.Query().Get("client_id"))
	})

	t.Run("callback with matching state completes sign-in", func(t *testing.T) {
		t.Parallel()

		app := newOAuthTestApp(t)

		start := app.get(t, "/oauth/google")
		start.Body.Close()
		require.Equal(t, http.StatusSeeOther, start.StatusCode)

		location, err := url.Parse(start.Header.Get("Location"))
		require.NoError(t, err)
		state := location.Query().Get("state")
		require.NotEmpty(t, state)

		callback := app.get(t, "/oauth/google/callback?code=good-code&state="+url.QueryEscape(state))
		callback.Body.Close()
		require.Equal(t, http.StatusSeeOther, callback.StatusCode)
		assert.Equal(t, "/", callback.Header.Get("Location"))

		assert.Contains(t, app.body(t, app.get(t, "/")), "alice@example.com")
	})

	t.Run("callback with forged state is rejected", func(t *testing.T) {
		t.Parallel()

		app := newOAuthTestApp(t)

		start := app.get(t, "/oauth/google")
		start.Body.Close()

		callback := app.get(t, "/oauth/google/callback?code=good-code&state=forged")
		callback.Body.Close()
		require.Equal(t, http.StatusSeeOther, callback.StatusCode)
		assert.Equal(t, "/signin", callback.Header.Get("Location"))

		assert.Contains(t, app.body(t, app.get(t, "/signin")), "Google sign-in failed")
	})

	t.Run("state is single use", func(t *testing.T) {
		t.Parallel()

		app := newOAuthTestApp(t)

		start := app.get(t, "/oauth/google")
		start.Body.Close()

		location, err := url.Parse(start.Header.Get("Location"))
		require.NoError(t, err)
		state := location.Query().Get("state")

		first := app.get(t, "/oauth/google/callback?code=good-code&state="+url.QueryEscape(state))
		first.Body.Close()
		require.Equal(t, "/", first.Header.Get("Location"))

		// Drain the success flash before replaying.
		app.body(t, app.get(t, "/"))

		replay := app.get(t, "/oauth/google/callback?code=good-code&state="+url.QueryEscape(state))
		replay.Body.Close()
		assert.Equal(t, "/signin", replay.Header.Get("Location"))
	})
}
