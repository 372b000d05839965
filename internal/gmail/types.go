// internal/gmail/types.go
package gmail

import "encoding/json"

type MessageID string
type LabelID string

// Label pairs a user-visible label name with its Gmail-assigned id.
type Label struct {
	Name string
	ID   LabelID
}

// Message is a full Gmail message. Raw holds the provider payload untouched.
type Message struct {
	ID       MessageID
	ThreadID string
	Snippet  string
	Raw      json.RawMessage
}

// ListPage is one page of a message listing.
type ListPage struct {
	IDs           []MessageID
	NextPageToken string
}

type Query struct {
	Raw      string    // Gmail query string, already formed (e.g., `from:alerts@example.com newer_than:2d`)
	LabelIDs []LabelID // every message must carry all of these labels
}

// LabelIDStrings converts ids to the plain strings the Gmail API expects.
func LabelIDStrings(ids []LabelID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
