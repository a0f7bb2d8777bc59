package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"PENDING", StatusPending},
		{"pending", StatusPending},
		{"  Accepted ", StatusAccepted},
		{"rejected", StatusRejected},
		{"CANCELLED", StatusCancelled},
		{"completed", StatusCompleted},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "DONE", "CANCELED", "pending?"} {
		_, err := ParseStatus(in)
		assert.ErrorIs(t, err, ErrUnknownStatus, "input %q", in)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
		StatusAccepted: {StatusCompleted},
	}
	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesAdmitNoTransition(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted}
	for _, from := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s must be blocked", from, to)
		}
	}
}
