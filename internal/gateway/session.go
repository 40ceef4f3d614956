package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/labadmin/pkg/apierr"
)

const csrfCookie = "XSRF-TOKEN"
const csrfCacheKey = "csrf"

// Session holds the process-wide auth state shared by all gateway
// calls: the bearer token and the lazily acquired CSRF cookie.
// Acquisition is idempotent, so a duplicate acquisition during a race
// is harmless and no locking is done beyond the cache's own.
type Session struct {
	base     *url.URL
	csrfPath string
	token    string
	client   *http.Client
	tokens   *cache.Cache
}

// NewSession builds a session over a client that must carry a cookie
// jar, since the CSRF token arrives as a cookie.
func NewSession(base *url.URL, csrfPath, token string, client *http.Client) *Session {
	return &Session{
		base:     base,
		csrfPath: csrfPath,
		token:    token,
		client:   client,
		tokens:   cache.New(30*time.Minute, 10*time.Minute),
	}
}

// Bearer returns the configured API token, possibly empty.
func (s *Session) Bearer() string { return s.token }

// CheckBearer reports Unauthorized before a request is even sent when
// the configured token is a JWT that has already expired, so the UI
// can prompt for re-authentication instead of burning a round trip.
// Opaque (non-JWT) tokens pass; the server is the judge for those.
func (s *Session) CheckBearer() error {
	if s.token == "" || strings.Count(s.token, ".") != 2 {
		return nil
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(s.token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(time.Now()) {
		return apierr.Unauthorized("session token expired, please sign in again")
	}
	return nil
}

// EnsureCSRF returns the session's CSRF token, acquiring it on first
// use. The acquisition endpoint is side-effect-only: it sets the
// cookie and nothing else.
func (s *Session) EnsureCSRF(ctx context.Context) (string, error) {
	if v, ok := s.tokens.Get(csrfCacheKey); ok {
		return v.(string), nil
	}

	endpoint := s.base.ResolveReference(&url.URL{Path: s.csrfPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build CSRF request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apierr.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", apierr.RequestFailed(resp.StatusCode, "CSRF acquisition failed")
	}

	for _, c := range s.client.Jar.Cookies(s.base) {
		if c.Name == csrfCookie {
			s.tokens.Set(csrfCacheKey, c.Value, cache.DefaultExpiration)
			return c.Value, nil
		}
	}
	return "", apierr.Malformed("CSRF endpoint set no token cookie")
}
