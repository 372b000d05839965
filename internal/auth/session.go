// Package auth establishes OAuth2 sessions for the Gmail API.
//
// Authorize loads a previously stored token and, when none is usable, walks the
// user through the offline authorization-code grant and stores the result.
// Stored tokens are not checked for expiry; the oauth2 transport refreshes them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"

	"github.com/joshsymonds/recentmail/internal/credstore"
)

var (
	// ErrAuthExchange is returned when the authorization code cannot be obtained
	// or exchanged for a token.
	ErrAuthExchange = errors.New("auth code exchange")
	// ErrTokenStore is returned when a token cannot be loaded (and the policy
	// forbids prompting) or cannot be saved after a grant.
	ErrTokenStore = errors.New("token store")
)

// DefaultScopes requests read-only mail access.
func DefaultScopes() []string {
	return []string{gmail.GmailReadonlyScope}
}

// FallbackPolicy decides which store failures lead to an interactive grant.
type FallbackPolicy int

const (
	// FallbackAlways prompts whatever the reason the stored token was unusable.
	FallbackAlways FallbackPolicy = iota
	// FallbackAbsentOnly prompts only when no token was ever stored; corrupt
	// or unreadable tokens are returned as errors.
	FallbackAbsentOnly
)

// Session is an OAuth client configuration plus the token attached to it.
type Session struct {
	Credentials Credentials
	Config      *oauth2.Config
	Token       *oauth2.Token
}

// Ready reports whether a token has been attached.
func (s *Session) Ready() bool {
	return s != nil && s.Token != nil
}

// TokenSource returns a refreshing token source seeded with the session token.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return s.Config.TokenSource(ctx, s.Token)
}

// HTTPClient returns an authenticated client for Google API calls.
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, s.TokenSource(ctx))
}

// Authorizer produces ready sessions.
type Authorizer struct {
	Store    credstore.Store
	Prompter Prompter
	Scopes   []string
	Policy   FallbackPolicy
	Log      *slog.Logger // nil logs through slog.Default
	// Exchanger overrides the code exchanger; nil uses the session's oauth2 config.
	Exchanger func(*Session) Exchanger
}

// NewAuthorizer constructs an Authorizer requesting DefaultScopes.
func NewAuthorizer(store credstore.Store, prompter Prompter, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Authorizer{
		Store:    store,
		Prompter: prompter,
		Scopes:   DefaultScopes(),
		Policy:   FallbackAlways,
		Log:      logger,
	}
}

// Authorize returns a session for creds, loading the token stored under
// tokenKey or running one interactive grant when it cannot be loaded.
func (a *Authorizer) Authorize(ctx context.Context, creds Credentials, tokenKey string) (*Session, error) {
	scopes := a.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}
	session := &Session{Credentials: creds, Config: creds.OAuthConfig(scopes)}

	tok, err := a.Store.Get(ctx, tokenKey)
	if err == nil {
		session.Token = tok
		a.logger().DebugContext(ctx, "loaded stored token", "key", tokenKey)
		return session, nil
	}

	kind := credstore.KindOf(err)
	if a.Policy == FallbackAbsentOnly && kind != credstore.KindAbsent {
		a.logger().ErrorContext(ctx, "stored token unusable", "key", tokenKey, "reason", kind.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTokenStore, err)
	}
	if kind == credstore.KindAbsent {
		a.logger().InfoContext(ctx, "no stored token; starting authorization", "key", tokenKey)
	} else {
		a.logger().WarnContext(ctx, "stored token unusable; starting authorization",
			"key", tokenKey, "reason", kind.String(), "error", err)
	}

	grant := &Grant{
		Exchanger: a.exchanger(session),
		Prompter:  a.Prompter,
		Store:     a.Store,
		Key:       tokenKey,
	}
	if err := grant.Run(ctx, session); err != nil {
		return nil, err
	}
	a.logger().InfoContext(ctx, "stored new token", "key", tokenKey)
	return session, nil
}

func (a *Authorizer) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

func (a *Authorizer) exchanger(s *Session) Exchanger {
	if a.Exchanger != nil {
		return a.Exchanger(s)
	}
	return s.Config
}
