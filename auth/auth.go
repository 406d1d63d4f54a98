// Package auth is the identity collaborator: it signs the session cookie and
// exposes the authenticated user id through the request context.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/httpx"
)

type ctxKey string

const (
	sessionCookieName = "session"
	sessionTTL        = 14 * 24 * time.Hour
	userIDCtxKey      = ctxKey("userID")
)

// UserVerifier is an optional callback to validate that a session's user still exists.
// A non-nil error means the check itself failed, not that the user is gone.
type UserVerifier func(ctx context.Context, uid uint) (bool, error)

// Sessions issues and validates HMAC-signed session cookies.
type Sessions struct {
	secret []byte
	verify UserVerifier
	log    *zap.Logger
}

// NewSessions creates a session manager. verify may be nil.
func NewSessions(secret string, verify UserVerifier, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{secret: []byte(secret), verify: verify, log: log}
}

func (s *Sessions) sign(uidStr string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(uidStr))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets a signed cookie with the user id.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + s.sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// Parse validates the cookie and returns the user id.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// Middleware attaches user id to request context if present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.Parse(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 when the request carries no valid identity.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		if s.verify != nil {
			exists, err := s.verify(r.Context(), uid)
			if err != nil {
				s.log.Error("session user lookup failed", zap.Uint("user_id", uid), zap.Error(err))
				httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
				return
			}
			if !exists {
				// Session refers to a non-existing user: clear and treat as unauthorized.
				s.Clear(w)
				httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
