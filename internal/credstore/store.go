// Package credstore persists OAuth tokens between runs.
//
// Every failure is reported as an *Error carrying a Kind so callers can tell a
// token that was never saved apart from one that exists but cannot be used.
package credstore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Store loads and saves a token under a key. For FileStore the key is a path.
type Store interface {
	Get(ctx context.Context, key string) (*oauth2.Token, error)
	Store(ctx context.Context, key string, tok *oauth2.Token) error
}

// Kind classifies a store failure.
type Kind int

const (
	KindIO Kind = iota
	KindAbsent
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindCorrupt:
		return "corrupt"
	default:
		return "io"
	}
}

var (
	ErrAbsent  = errors.New("token absent")
	ErrCorrupt = errors.New("token corrupt")
	ErrIO      = errors.New("token store io")
)

// Error is returned by every Store implementation in this package.
type Error struct {
	Op   string // "get" or "store"
	Key  string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s token %s: %s", e.Op, e.Key, e.Kind)
	}
	return fmt.Sprintf("%s token %s: %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAbsent:
		return e.Kind == KindAbsent
	case ErrCorrupt:
		return e.Kind == KindCorrupt
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

// KindOf reports the Kind of a store error. Errors that did not come from a
// store are treated as KindIO.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindIO
}

func validToken(tok *oauth2.Token) bool {
	return tok != nil && tok.AccessToken != ""
}
