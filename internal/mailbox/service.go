// internal/mailbox/service.go
package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/rate"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

// DefaultLabel is used when GetRecentEmail is given no label name.
const DefaultLabel = "INBOX"

const maxPageSize = 500

// Service retrieves full messages for a label and query.
type Service struct {
	Client  gc.Client
	Log     *slog.Logger // nil logs through slog.Default
	Limiter rate.Limiter // awaited before every listing call; nil disables
	Metrics *telemetry.Metrics
	// PageSize is the maxResults of each listing call (1..500, default 500).
	PageSize int
	// Concurrency caps in-flight message fetches; 0 means one goroutine per id.
	Concurrency int
}

// NewService constructs a Service with sane defaults.
func NewService(client gc.Client, limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{
		Client:   client,
		Log:      logger,
		Limiter:  limiter,
		Metrics:  telemetry.DefaultMetrics(),
		PageSize: maxPageSize,
	}
}

// GetRecentEmail resolves labelName, lists every message matching query under
// that label, and fetches them all. Messages come back in listing order.
func (s *Service) GetRecentEmail(ctx context.Context, query, labelName string) ([]gc.Message, error) {
	if labelName == "" {
		labelName = DefaultLabel
	}
	ctx, span := telemetry.Tracer().Start(ctx, "mailbox.GetRecentEmail", trace.WithAttributes(
		attribute.String("label", labelName),
		attribute.String("query", query),
	))
	defer span.End()

	labelID, err := s.ResolveLabel(ctx, labelName)
	if err != nil {
		return nil, s.fail(ctx, span, "resolve_label", err)
	}
	ids, err := s.ListAll(ctx, query, []gc.LabelID{labelID})
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}
	msgs, err := s.FetchAll(ctx, ids)
	if err != nil {
		return nil, s.fail(ctx, span, "fetch", err)
	}

	span.SetAttributes(attribute.Int("messages", len(msgs)))
	s.logger().InfoContext(ctx, "fetched recent email", "label", labelName, "query", query, "count", len(msgs))
	return msgs, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, stage string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	s.logger().ErrorContext(ctx, "get recent email failed", "stage", stage, "error", err)
	return err
}

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Service) wait(ctx context.Context, operation string) error {
	if s.Limiter == nil {
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (s *Service) pageSize() int {
	if s.PageSize <= 0 || s.PageSize > maxPageSize {
		return maxPageSize
	}
	return s.PageSize
}
