// internal/runtime/googleapi.go: adapts *gmail.Service to our small interface
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"

	gc "github.com/joshsymonds/recentmail/internal/gmail"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

const me = "me"

type googleClient struct {
	svc     *gmail.Service
	metrics *telemetry.Metrics
}

func NewGoogleAPIClient(svc *gmail.Service, metrics *telemetry.Metrics) *googleClient {
	return &googleClient{svc: svc, metrics: metrics}
}

func (g *googleClient) ListLabels(ctx context.Context) ([]gc.Label, error) {
	start := time.Now()
	lr, err := g.svc.Users.Labels.List(me).Context(ctx).Do()
	g.metrics.RecordAPICall(ctx, "labels.list", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	labels := make([]gc.Label, 0, len(lr.Labels))
	for _, l := range lr.Labels {
		labels = append(labels, gc.Label{Name: l.Name, ID: gc.LabelID(l.Id)})
	}
	return labels, nil
}

func (g *googleClient) List(ctx context.Context, q gc.Query, pageToken string, pageSize int) (gc.ListPage, error) {
	call := g.svc.Users.Messages.List(me).Q(q.Raw)
	if ids := gc.LabelIDStrings(q.LabelIDs); len(ids) > 0 {
		call = call.LabelIds(ids...)
	}
	if pageSize > 0 {
		call = call.MaxResults(int64(pageSize))
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	start := time.Now()
	res, err := call.Context(ctx).Do()
	g.metrics.RecordAPICall(ctx, "messages.list", time.Since(start), err)
	if err != nil {
		return gc.ListPage{}, err
	}
	return gc.ListPage{IDs: toMessageIDs(res.Messages), NextPageToken: res.NextPageToken}, nil
}

func (g *googleClient) GetMessage(ctx context.Context, id gc.MessageID) (gc.Message, error) {
	start := time.Now()
	msg, err := g.svc.Users.Messages.Get(me, string(id)).Format("full").Context(ctx).Do()
	g.metrics.RecordAPICall(ctx, "messages.get", time.Since(start), err)
	if err != nil {
		return gc.Message{}, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return gc.Message{}, fmt.Errorf("encode message %s: %w", id, err)
	}
	return gc.Message{
		ID:       gc.MessageID(msg.Id),
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Raw:      raw,
	}, nil
}

func toMessageIDs(msgs []*gmail.Message) []gc.MessageID {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]gc.MessageID, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		ids = append(ids, gc.MessageID(m.Id))
	}
	return ids
}

var _ gc.Client = (*googleClient)(nil)
