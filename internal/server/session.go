// session.go - Session token codec and the auth gate.
//
// Two codecs are supported. The default signs an HS256 JWT over
// {authenticated, iat, exp} with the session secret. The legacy codec
// reproduces the historical wire format: base64-encoded JSON with no
// signature at all, forgeable by anyone who can spell base64. It exists
// only for compatibility with clients that still hold such tokens and
// must be enabled explicitly.
package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionConfig holds the token codec settings shared by the issue path
// and the auth gate.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	Legacy     bool // use the unsigned legacy encoding
	CookieName string
}

func (s SessionConfig) cookieName() string {
	if s.CookieName == "" {
		return "session_token"
	}
	return s.CookieName
}

func (s SessionConfig) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// legacySession is the historical token payload. Timestamp is unix
// milliseconds at issue time.
type legacySession struct {
	Authenticated bool  `json:"authenticated"`
	Timestamp     int64 `json:"timestamp"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Authenticated bool `json:"authenticated"`
}

// Issue produces a fresh session token in the configured encoding.
func (s SessionConfig) Issue() (string, error) {
	now := time.Now()

	if s.Legacy {
		payload, err := json.Marshal(legacySession{
			Authenticated: true,
			Timestamp:     now.UnixMilli(),
		})
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(payload), nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
		Authenticated: true,
	})
	return token.SignedString([]byte(s.Secret))
}

// Validate reports whether the token grants access. Any structural
// failure - wrong encoding, truncation, garbage - yields false, never a
// panic; external input is not trusted to decode.
func (s SessionConfig) Validate(token string) bool {
	if token == "" {
		return false
	}
	if s.Legacy {
		return s.validateLegacy(token)
	}
	return s.validateSigned(token)
}

func (s SessionConfig) validateLegacy(token string) bool {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	var p legacySession
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	if !p.Authenticated || p.Timestamp == 0 {
		return false
	}
	age := time.Now().UnixMilli() - p.Timestamp
	return age <= s.ttl().Milliseconds()
}

func (s SessionConfig) validateSigned(token string) bool {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return false
	}
	return parsed.Valid && claims.Authenticated && claims.IssuedAt != nil
}

// tokenFromRequest extracts the candidate token. First match wins:
// Authorization bearer header, then X-Session-Token, then the cookie.
func (s SessionConfig) tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if tok := r.Header.Get("X-Session-Token"); tok != "" {
		return tok
	}
	if c, err := r.Cookie(s.cookieName()); err == nil {
		return c.Value
	}
	return ""
}

// requireAuth gates a handler behind session validation. Rejected
// requests get the 401 envelope and nothing else runs; on allow the
// gate has no side effects and does not refresh the token.
func (s SessionConfig) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Validate(s.tokenFromRequest(r)) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie attaches the issued token to the response.
func (s SessionConfig) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
}
