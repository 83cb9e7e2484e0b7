// Package guard gates every authenticated backend call behind a local expiry
// check and decides where users without a valid credential are sent.
//
// The guard never returns errors. A nil header set or a true result from
// HandleAuthFailure tells the caller the session is over and that the guard
// has already redirected the user.
package guard

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"eventspot/logger"
	"eventspot/session"
)

const DefaultSkew = 30 * time.Second

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAuthProvider  = "x-auth-provider"
)

type Reason string

const (
	ReasonLoginRequired  Reason = "login_required"
	ReasonSessionExpired Reason = "session_expired"
)

var authFailurePattern = regexp.MustCompile(`(?i)(invalid|expired).*(token)|token used too late|jwt.*expired|signature.*expired`)

// Navigator moves the user somewhere else. Location is the path and query the
// user is currently on, so login can send them back afterwards.
type Navigator interface {
	Location() string
	Navigate(target string)
}

// Payload is the subset of a backend error body that can describe an auth failure.
type Payload struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

type Guard struct {
	store    session.Store
	nav      Navigator
	loginURL string
	skew     time.Duration
	now      func() time.Time
}

type Option func(*Guard)

func WithSkew(d time.Duration) Option {
	return func(g *Guard) { g.skew = d }
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

func New(store session.Store, nav Navigator, loginURL string, opts ...Option) *Guard {
	g := &Guard{
		store:    store,
		nav:      nav,
		loginURL: loginURL,
		skew:     DefaultSkew,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsExpired reports whether token is expired at now, or will be within skew.
// Tokens that cannot be decoded or carry no numeric exp are expired.
func IsExpired(token string, skew time.Duration, now time.Time) bool {
	claims, err := session.DecodeClaims(token)
	if err != nil {
		return true
	}
	return float64(now.Unix()) >= claims.Exp-skew.Seconds()
}

func (g *Guard) IsExpired(token string) bool {
	return IsExpired(token, g.skew, g.now())
}

// Credential returns the stored credential when it is present and not expired.
// Unlike BuildAuthHeaders it never redirects.
func (g *Guard) Credential() (session.Credential, bool) {
	cred, ok := g.load()
	if !ok || g.IsExpired(cred.Token) {
		return session.Credential{}, false
	}
	return cred, true
}

// BuildAuthHeaders returns the headers for a protected call, or nil after
// redirecting the user when no usable credential is stored.
func (g *Guard) BuildAuthHeaders(includeJSONContentType bool) http.Header {
	cred, ok := g.load()
	if !ok {
		g.RedirectToAuthEntry(ReasonLoginRequired)
		return nil
	}

	if g.IsExpired(cred.Token) {
		g.clear()
		g.RedirectToAuthEntry(ReasonSessionExpired)
		return nil
	}

	h := http.Header{}
	if includeJSONContentType {
		h.Set(HeaderContentType, "application/json")
	}
	h.Set(HeaderAuthorization, "Bearer "+cred.Token)
	if cred.Provider != "" {
		h.Set(HeaderAuthProvider, string(cred.Provider))
	}
	return h
}

// RedirectToAuthEntry sends the user to the login entry point with the reason
// and the location to come back to.
func (g *Guard) RedirectToAuthEntry(reason Reason) {
	next := ""
	if g.nav != nil {
		next = g.nav.Location()
	}
	target := LoginTarget(g.loginURL, reason, next)
	logger.Infof(context.Background(), "guard: redirecting to login: reason=%s", reason)
	if g.nav != nil {
		g.nav.Navigate(target)
	}
}

// LoginTarget builds <loginURL>?reason=<reason>&next=<next>.
func LoginTarget(loginURL string, reason Reason, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "reason=" + url.QueryEscape(string(reason)) + "&next=" + url.QueryEscape(next)
}

// ClassifyAuthFailure reports whether a backend response means the credential
// is no longer accepted, either by status or by the wording of the error body.
func ClassifyAuthFailure(status int, p Payload) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	text := strings.TrimSpace(p.Message + " " + p.Error + " " + p.Details)
	return authFailurePattern.MatchString(text)
}

// HandleAuthFailure ends the session when the response is an auth failure.
// A true result means the caller must stop processing the response.
func (g *Guard) HandleAuthFailure(status int, p Payload) bool {
	if !ClassifyAuthFailure(status, p) {
		return false
	}
	g.clear()
	g.RedirectToAuthEntry(ReasonSessionExpired)
	return true
}

// Logout clears the stored credential without redirecting.
func (g *Guard) Logout() {
	g.clear()
}

func (g *Guard) load() (session.Credential, bool) {
	cred, ok, err := g.store.Load()
	if err != nil {
		logger.Errorf(context.Background(), "guard: unable to read stored credential: %+v", err)
		return session.Credential{}, false
	}
	if !ok || cred.Token == "" {
		return session.Credential{}, false
	}
	return cred, true
}

func (g *Guard) clear() {
	if err := g.store.Clear(); err != nil {
		logger.Errorf(context.Background(), "guard: unable to clear stored credential: %+v", err)
	}
}
