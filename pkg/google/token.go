package google

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// OAuth scopes used by the pusher.
const (
	ScopeMessaging = "https://www.googleapis.com/auth/firebase.messaging"
	ScopeDatastore = "https://www.googleapis.com/auth/datastore"
	ScopeFirebase  = "https://www.googleapis.com/auth/firebase"
)

const (
	assertionLifetime = time.Hour
	// tokens are refreshed this long before Google says they expire
	expiryMargin = 5 * time.Minute
)

// Token is an OAuth2 access token and the time it stops being reused.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenSource exchanges a signed RS256 JWT assertion for an access token and
// caches it until shortly before expiry. Safe for concurrent use.
type TokenSource struct {
	account    *ServiceAccount
	key        *rsa.PrivateKey
	scopes     string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *Token
}

// NewTokenSource creates a token source for the given scopes.
func NewTokenSource(account *ServiceAccount, timeout time.Duration, scopes ...string) (*TokenSource, error) {
	key, err := account.signingKey()
	if err != nil {
		return nil, err
	}
	return &TokenSource{
		account:    account,
		key:        key,
		scopes:     strings.Join(scopes, " "),
		tokenURL:   account.TokenURI,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

// SetClock overrides the time source used for assertions and cache expiry.
func (s *TokenSource) SetClock(now func() time.Time) {
	s.now = now
}

// ProjectID returns the project the service account belongs to.
func (s *TokenSource) ProjectID() string {
	return s.account.ProjectID
}

// Token returns a cached access token, minting a new one when needed.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.now().Before(s.token.Expiry) {
		return s.token.AccessToken, nil
	}

	tok, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = tok
	return tok.AccessToken, nil
}

// Invalidate drops the cached token, e.g. after a 401.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *TokenSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": s.scopes,
		"aud":   s.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.account.PrivateKeyID != "" {
		token.Header["kid"] = s.account.PrivateKeyID
	}

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

func (s *TokenSource) fetch(ctx context.Context) (*Token, error) {
	now := s.now()
	assertion, err := s.assertion(now)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, body)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access_token")
	}

	expiresIn := time.Duration(out.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = assertionLifetime
	}
	return &Token{
		AccessToken: out.AccessToken,
		Expiry:      now.Add(expiresIn - expiryMargin),
	}, nil
}
