// internal/runtime/auth.go
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/joshsymonds/recentmail/internal/auth"
	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

// NewGmailClient builds a Gmail client authenticated by session. Token refresh
// is handled by the oauth2 transport.
func NewGmailClient(ctx context.Context, session *auth.Session, opts ...option.ClientOption) (gc.Client, error) {
	if !session.Ready() {
		return nil, fmt.Errorf("session has no token")
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(session.HTTPClient(ctx))}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGoogleAPIClient(svc, telemetry.DefaultMetrics()), nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
