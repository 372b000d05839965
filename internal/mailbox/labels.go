package mailbox

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

// ResolveLabel returns the id of the first label named exactly name.
// Labels are listed fresh on every call.
func (s *Service) ResolveLabel(ctx context.Context, name string) (gc.LabelID, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mailbox.ResolveLabel",
		trace.WithAttributes(attribute.String("label", name)))
	defer span.End()

	labels, err := s.Labels(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range labels {
		if l.Name == name {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", gc.ErrLabelNotFound, name)
}

// Labels lists every label in the mailbox.
func (s *Service) Labels(ctx context.Context) ([]gc.Label, error) {
	if err := s.wait(ctx, "rate limit labels"); err != nil {
		return nil, fmt.Errorf("%w: %w", gc.ErrListLabels, err)
	}
	labels, err := s.Client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gc.ErrListLabels, err)
	}
	return labels, nil
}
