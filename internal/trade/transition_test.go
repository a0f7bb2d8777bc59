package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parties = Participants{
	RequesterID:   1,
	TargetOwnerID: 2,
	OfferedTitle:  "Dom Casmurro",
	TargetTitle:   "Vidas Secas",
}

func TestProposalEventsNotifyBothSides(t *testing.T) {
	events := ProposalEvents(parties)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].UserID)
	assert.Equal(t, uint64(2), events[1].UserID)
	assert.Contains(t, events[1].Message, "Vidas Secas")
	assert.Contains(t, events[1].Message, "Dom Casmurro")
}

func TestTransitionAcceptByTargetOwner(t *testing.T) {
	events, err := Transition(StatusPending, StatusAccepted, 2, parties)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].UserID)
	assert.Equal(t, uint64(2), events[1].UserID)
	assert.Contains(t, events[0].Message, "accepted")
}

func TestTransitionAcceptByRequesterForbidden(t *testing.T) {
	_, err := Transition(StatusPending, StatusAccepted, 1, parties)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestTransitionRejectByTargetOwner(t *testing.T) {
	events, err := Transition(StatusPending, StatusRejected, 2, parties)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].UserID)
}

func TestTransitionCancelByRequester(t *testing.T) {
	events, err := Transition(StatusPending, StatusCancelled, 1, parties)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].UserID)
}

func TestTransitionCancelByTargetOwnerForbidden(t *testing.T) {
	_, err := Transition(StatusPending, StatusCancelled, 2, parties)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestTransitionCompleteByRequester(t *testing.T) {
	events, err := Transition(StatusAccepted, StatusCompleted, 1, parties)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, events[0].Message, events[1].Message)
	recipients := []uint64{events[0].UserID, events[1].UserID}
	assert.ElementsMatch(t, []uint64{1, 2}, recipients)
}

func TestTransitionPendingToCompletedIllegal(t *testing.T) {
	// Completion must pass through ACCEPTED first.
	_, err := Transition(StatusPending, StatusCompleted, 1, parties)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestTransitionOutOfTerminalStateIllegal(t *testing.T) {
	for _, from := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		_, err := Transition(from, StatusCancelled, 1, parties)
		assert.ErrorIs(t, err, ErrIllegalTransition, "from %s", from)
	}
}

func TestTransitionAuthorizationCheckedBeforeLegality(t *testing.T) {
	// A stranger attempting an illegal move gets 403-class, not 409-class.
	_, err := Transition(StatusCompleted, StatusAccepted, 99, parties)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestTransitionToPendingIllegal(t *testing.T) {
	_, err := Transition(StatusAccepted, StatusPending, 1, parties)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
