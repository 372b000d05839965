package mailbox

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

// ListAll pages through every message id matching query and carrying all of
// labelIDs. Ids keep page-arrival order and are not deduplicated. A failure on
// any page discards what was gathered so far.
func (s *Service) ListAll(ctx context.Context, query string, labelIDs []gc.LabelID) ([]gc.MessageID, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mailbox.ListAll",
		trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	q := gc.Query{Raw: query, LabelIDs: labelIDs}
	all := []gc.MessageID{}
	token := ""
	pages := 0
	for {
		pages++
		if err := s.wait(ctx, "rate limit messages"); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", gc.ErrList, pages, err)
		}
		page, err := s.Client.List(ctx, q, token, s.pageSize())
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", gc.ErrList, pages, err)
		}
		all = append(all, page.IDs...)
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	span.SetAttributes(attribute.Int("pages", pages), attribute.Int("ids", len(all)))
	s.logger().DebugContext(ctx, "listed message ids", "pages", pages, "count", len(all))
	return all, nil
}
