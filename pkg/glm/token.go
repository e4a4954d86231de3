package glm

import (
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// tokenSigner produces the short-lived HS256 tokens the backend expects in
// the Authorization header. Tokens are cached and re-signed shortly before
// expiry so concurrent requests do not sign redundantly.
type tokenSigner struct {
	keyID  string
	secret []byte
	ttl    time.Duration

	mu        sync.RWMutex
	token     string
	refreshAt time.Time

	// now allows tests to control time. Defaults to time.Now.
	now func() time.Time
}

// newTokenSigner parses an API key of the form "id.secret" and returns a
// signer for it. Returns an error when the key is empty or malformed.
func newTokenSigner(apiKey string, ttl time.Duration) (*tokenSigner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("glm: APIKey is required")
	}

	id, secret, ok := strings.Cut(apiKey, ".")
	if !ok || id == "" || secret == "" {
		return nil, fmt.Errorf("glm: APIKey must have the form \"id.secret\"")
	}

	return &tokenSigner{
		keyID:  id,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Token returns a signed token, reusing the cached one while it has at
// least 20% of its validity window left.
func (s *tokenSigner) Token() (string, error) {
	// Try cache first with read lock.
	s.mu.RLock()
	if s.token != "" && s.now().Before(s.refreshAt) {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	// Cache miss or near expiry: re-sign with write lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have signed).
	if s.token != "" && s.now().Before(s.refreshAt) {
		return s.token, nil
	}

	now := s.now()
	token, err := s.sign(now)
	if err != nil {
		return "", err
	}

	s.token = token
	s.refreshAt = now.Add(s.ttl * 8 / 10)
	return token, nil
}

// sign creates a token valid from now for the configured TTL. The backend
// expects millisecond timestamps and a "sign_type: SIGN" header field.
func (s *tokenSigner) sign(now time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"api_key":   s.keyID,
		"exp":       now.Add(s.ttl).UnixMilli(),
		"timestamp": now.UnixMilli(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	token.Header["sign_type"] = "SIGN"

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing request token: %w", err)
	}
	return signed, nil
}
