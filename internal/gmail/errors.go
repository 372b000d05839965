package gmail

import "errors"

var (
	// ErrLabelNotFound is returned when no label carries the requested name.
	ErrLabelNotFound = errors.New("label not found")
	// ErrListLabels is returned when the label listing call fails.
	ErrListLabels = errors.New("list labels")
	// ErrList is returned when any page of a message listing fails.
	ErrList = errors.New("list messages")
	// ErrMessageFetch is returned when any full message fetch fails.
	ErrMessageFetch = errors.New("fetch message")
)
