package mailbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/recentmail/internal/gmail"
)

func TestResolveLabel(t *testing.T) {
	fake := &fakeClient{labels: []gmail.Label{
		{Name: "INBOX", ID: "L1"},
		{Name: "SENT", ID: "L2"},
		{Name: "SENT", ID: "L3"},
	}}
	svc := newTestService(fake)

	tests := []struct {
		name    string
		label   string
		want    gmail.LabelID
		wantErr error
	}{
		{name: "sent", label: "SENT", want: "L2"},
		{name: "inbox", label: "INBOX", want: "L1"},
		{name: "missing", label: "ARCHIVE", wantErr: gmail.ErrLabelNotFound},
		{name: "case-sensitive", label: "inbox", wantErr: gmail.ErrLabelNotFound},
		{name: "no-trim", label: "INBOX ", wantErr: gmail.ErrLabelNotFound},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ResolveLabel(context.Background(), tc.label)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Contains(t, err.Error(), tc.label)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveLabelWaitsOnLimiter(t *testing.T) {
	fake := &fakeClient{labels: []gmail.Label{{Name: "INBOX", ID: "L1"}}}
	limiter := &countingLimiter{}
	svc := newTestService(fake)
	svc.Limiter = limiter

	_, err := svc.ResolveLabel(context.Background(), "INBOX")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.waits)
}
