package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// sessionCookie is the admin session cookie name.
	sessionCookie = "cp_admin_session"

	// sessionTTL is how long a login stays valid.
	sessionTTL = 12 * time.Hour

	// sessionClockSkew tolerates small clock differences when checking
	// token timestamps.
	sessionClockSkew = 1 * time.Minute
)

var (
	ErrSessionRequired  = errors.New("session required")
	ErrSessionMalformed = errors.New("session token malformed")
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionInvalid   = errors.New("session invalid")
)

// sessionManager issues and verifies HMAC-signed admin session tokens.
// Token format: "username:timestamp:signature" where the signature covers
// username and timestamp. Stateless: no server-side session table.
type sessionManager struct {
	secret []byte
	secure bool
}

// newSessionManager creates a manager. secret must be at least 32 bytes;
// secure marks cookies Secure for TLS deployments.
func newSessionManager(secret []byte, secure bool) *sessionManager {
	return &sessionManager{secret: secret, secure: secure}
}

func (m *sessionManager) sign(username string, timestamp int64) string {
	h := hmac.New(sha256.New, m.secret)
	fmt.Fprintf(h, "%s:%d", username, timestamp)
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// issue sets the session cookie for a freshly authenticated admin.
func (m *sessionManager) issue(w http.ResponseWriter, username string) {
	timestamp := time.Now().Unix()
	token := fmt.Sprintf("%s:%d:%s", username, timestamp, m.sign(username, timestamp))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    base64.URLEncoding.EncodeToString([]byte(token)),
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clear expires the session cookie.
func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// verify checks the request's session cookie and returns the admin username.
func (m *sessionManager) verify(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", ErrSessionRequired
	}

	raw, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return "", ErrSessionMalformed
	}

	parts := strings.SplitN(string(raw), ":", 3)
	if len(parts) != 3 {
		return "", ErrSessionMalformed
	}
	username := parts[0]

	timestamp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrSessionMalformed
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > sessionTTL {
		return "", ErrSessionExpired
	}
	if age < -sessionClockSkew {
		return "", ErrSessionInvalid
	}

	expected := m.sign(username, timestamp)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return "", ErrSessionInvalid
	}

	return username, nil
}

// requireAdmin wraps a handler, rejecting callers without a valid session.
func (m *sessionManager) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := m.verify(r); err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "admin login required")
			return
		}
		next(w, r)
	}
}
