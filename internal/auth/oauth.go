package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultProfileURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	exchangeTimeout    = 10 * time.Second
	stateTokenBytes    = 32
	maxProfileBodySize = 1 << 20
)

// GoogleOAuthConfig holds the Google OAuth2 credentials. The service is only
// wired up when the credentials are present.
type GoogleOAuthConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL"`
}

// Enabled reports whether the credentials are complete.
func (c GoogleOAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// Profile is the subset of the Google userinfo response we consume.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleOAuthService drives the Google authorization-code flow.
type GoogleOAuthService struct {
	config     *oauth2.Config
	profileURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// GoogleOAuthOption configures the GoogleOAuthService.
type GoogleOAuthOption func(*GoogleOAuthService)

// WithOAuthEndpoint overrides the provider endpoint. Used in tests to point
// at a local server.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) GoogleOAuthOption {
	return func(s *GoogleOAuthService) {
		s.config.Endpoint = endpoint
	}
}

// WithProfileURL overrides the userinfo endpoint.
func WithProfileURL(url string) GoogleOAuthOption {
	return func(s *GoogleOAuthService) {
		s.profileURL = url
	}
}

// WithOAuthHTTPClient sets the client used for token exchange and profile
// fetches.
func WithOAuthHTTPClient(c *http.Client) GoogleOAuthOption {
	return func(s *GoogleOAuthService) {
		s.httpClient = c
	}
}

// WithOAuthLogger sets a custom logger for the service.
func WithOAuthLogger(l *slog.Logger) GoogleOAuthOption {
	return func(s *GoogleOAuthService) {
		s.logger = l
	}
}

// NewGoogleOAuthService creates the service from config.
func NewGoogleOAuthService(cfg GoogleOAuthConfig, opts ...GoogleOAuthOption) *GoogleOAuthService {
	s := &GoogleOAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		profileURL: defaultProfileURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AuthURL returns the provider consent URL together with a fresh state token.
// The caller must persist the state and hand it back to HandleCallback.
func (s *GoogleOAuthService) AuthURL() (string, string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	return s.config.AuthCodeURL(state), state, nil
}

// HandleCallback verifies the state token, exchanges the authorization code,
// and fetches the user's profile.
func (s *GoogleOAuthService) HandleCallback(ctx context.Context, code, state, storedState string) (*Profile, error) {
	if storedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(storedState)) != 1 {
		return nil, ErrInvalidState
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodeExchange, err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}

	s.logger.InfoContext(ctx, "oauth callback completed",
		slog.String("provider", "google"),
		slog.Bool("verified_email", profile.VerifiedEmail),
	)

	return profile, nil
}

func (s *GoogleOAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := s.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBodySize)).Decode(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}
