// Package auth checks logins against the credentials document and keeps the
// server-side sessions of signed-in users.
package auth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/jsonc"
	"golang.org/x/crypto/bcrypt"

	"github.com/spektr-org/gccdash/resource"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCredentialsUnavailable wraps a failure to fetch or parse the credentials document.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")
)

// Message is the login error shown to the user for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialsUnavailable):
		return "Error: Could not load user credentials. Check user.json path/format."
	default:
		return "Invalid username or password."
	}
}

// Credentials maps lowercased usernames to trimmed stored passwords.
type Credentials map[string]string

// ParseCredentials reads a {"users": {"name": "password"}} document. Comments
// and trailing commas are allowed. Non-string passwords are kept in their
// JSON text form.
func ParseCredentials(data []byte) (Credentials, error) {
	var doc struct {
		Users map[string]json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, errors.Wrap(err, "parse credentials")
	}
	if doc.Users == nil {
		return nil, errors.New(`credentials document has no "users" object`)
	}

	creds := make(Credentials, len(doc.Users))
	for name, raw := range doc.Users {
		creds[strings.ToLower(name)] = strings.TrimSpace(passwordText(raw))
	}
	return creds, nil
}

func passwordText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// Verify reports whether password matches the stored password of username.
// The username is compared lowercased; both sides are trimmed. An empty
// stored password never matches. Stored bcrypt hashes are checked with bcrypt.
func (c Credentials) Verify(username, password string) bool {
	stored := c[strings.ToLower(strings.TrimSpace(username))]
	if stored == "" {
		return false
	}
	password = strings.TrimSpace(password)
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword returns a bcrypt hash of the trimmed password for use in the
// credentials document.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// ============================================================================
// AUTHENTICATOR: lazily loaded credentials
// ============================================================================

// Authenticator loads the credentials document on first use and keeps it.
// A failed load is not kept; the next login tries again.
type Authenticator struct {
	fetcher resource.Fetcher
	log     logrus.FieldLogger

	mu    sync.Mutex
	creds Credentials
}

// NewAuthenticator creates an authenticator reading credentials from f.
func NewAuthenticator(f resource.Fetcher, log logrus.FieldLogger) *Authenticator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Authenticator{fetcher: f, log: log}
}

// Login checks username and password and returns the trimmed username in its
// original case.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := a.credentials(ctx)
	if err != nil {
		return "", err
	}
	user := strings.TrimSpace(username)
	if !creds.Verify(user, password) {
		a.log.WithField("user", strings.ToLower(user)).Info("login rejected")
		return "", ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) credentials(ctx context.Context) (Credentials, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.creds != nil {
		return a.creds, nil
	}

	data, err := a.fetcher.Fetch(ctx)
	if err == nil {
		var creds Credentials
		if creds, err = ParseCredentials(data); err == nil {
			a.creds = creds
			a.log.WithField("users", len(creds)).Debug("credentials loaded")
			return creds, nil
		}
		err = &resource.LoadError{Location: a.fetcher.Location(), Err: err}
	}

	a.log.WithError(err).Error("credentials load failed")
	return nil, errors.Errorf("%w: %w", ErrCredentialsUnavailable, err)
}
