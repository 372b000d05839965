package mailbox

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

// FetchAll retrieves every message concurrently. Result i belongs to ids[i].
// The first failure cancels the fetches still in flight and no partial result
// is returned.
func (s *Service) FetchAll(ctx context.Context, ids []gc.MessageID) ([]gc.Message, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mailbox.FetchAll",
		trace.WithAttributes(attribute.Int("ids", len(ids))))
	defer span.End()

	msgs := make([]gc.Message, len(ids))
	if len(ids) == 0 {
		return msgs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			msg, err := s.Client.GetMessage(gctx, id)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", gc.ErrMessageFetch, id, err)
			}
			msgs[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Metrics.RecordMessages(ctx, len(msgs))
	return msgs, nil
}
