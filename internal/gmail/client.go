package gmail

import "context"

// Client is the narrow Gmail surface required by recentmail.
type Client interface {
	ListLabels(ctx context.Context) ([]Label, error)
	List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error)
	GetMessage(ctx context.Context, id MessageID) (Message, error)
}
