package lobby

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id     SessionID
	events []Event
}

func newFakeHandle(id string) *fakeHandle { return &fakeHandle{id: SessionID(id)} }

func (h *fakeHandle) ID() SessionID { return h.id }
func (h *fakeHandle) Send(e Event)  { h.events = append(h.events, e) }

func testLobby() *Lobby {
	return New(Config{Variants: []int64{1}, OpenPublicCapacity: 2, HistoryCapacity: 2}, nil, nil)
}

func TestCreateRejectsDisallowedVariant(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	_, reason, err := l.Create(host, ColorRandom, 0, 99, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonVariantNotAllowed, reason)
}

func TestCreateAllowsAnyVariantWhenAllowListEmpty(t *testing.T) {
	l := New(Config{OpenPublicCapacity: 2, HistoryCapacity: 2}, nil, nil)
	host := newFakeHandle("host")
	_, reason, err := l.Create(host, ColorRandom, 0, 99, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonNone, reason)
}

func TestCreateRejectsDoubleHost(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	_, reason, err := l.Create(host, ColorRandom, 0, 1, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonNone, reason)

	_, reason, err = l.Create(host, ColorRandom, 0, 1, VisibilityPrivate)
	require.NoError(t, err)
	require.Equal(t, ReasonAlreadyHostingOrIn, reason)
}

func TestCreateEnforcesPublicCapacity(t *testing.T) {
	l := testLobby() // capacity 2
	for i := 0; i < 2; i++ {
		host := newFakeHandle(string(rune('a' + i)))
		_, reason, err := l.Create(host, ColorRandom, 0, 1, VisibilityPublic)
		require.NoError(t, err)
		require.Equal(t, ReasonNone, reason)
	}
	_, reason, err := l.Create(newFakeHandle("overflow"), ColorRandom, 0, 1, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonLobbyFull, reason)
}

func TestJoinUnknownPasscode(t *testing.T) {
	l := testLobby()
	_, reason, err := l.Join(newFakeHandle("joiner"), 123456)
	require.NoError(t, err)
	require.Equal(t, ReasonPasscodeNotFound, reason)
}

func TestCreateJoinPairsAndNotifiesHost(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, reason, err := l.Create(host, ColorWhite, 2, 1, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonNone, reason)

	joiner := newFakeHandle("joiner")
	join, reason, err := l.Join(joiner, res.Passcode)
	require.NoError(t, err)
	require.Equal(t, ReasonNone, reason)
	require.Equal(t, ColorInPlayBlack, join.Color)

	require.Len(t, host.events, 1)
	start, ok := host.events[0].(MatchStartEvent)
	require.True(t, ok)
	require.Equal(t, ColorInPlayWhite, start.Color)
	require.Equal(t, join.MatchID, start.MatchID)

	// The match is no longer open and no longer joinable.
	_, reason, err = l.Join(newFakeHandle("third"), res.Passcode)
	require.NoError(t, err)
	require.Equal(t, ReasonPasscodeNotFound, reason)
}

func TestHostCannotJoinOwnMatch(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorRandom, 0, 1, VisibilityPrivate)
	require.NoError(t, err)

	_, reason, err := l.Join(host, res.Passcode)
	require.NoError(t, err)
	require.Equal(t, ReasonPasscodeNotFound, reason)
}

func TestCancelIsIdempotentlyRejectedWhenNotHosting(t *testing.T) {
	l := testLobby()
	err := l.Cancel(newFakeHandle("nobody"))
	require.ErrorIs(t, err, ErrNotHosting)
}

func TestCancelRemovesOpenMatch(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorRandom, 0, 1, VisibilityPublic)
	require.NoError(t, err)

	require.NoError(t, l.Cancel(host))

	_, reason, err := l.Join(newFakeHandle("joiner"), res.Passcode)
	require.NoError(t, err)
	require.Equal(t, ReasonPasscodeNotFound, reason)

	// Host is free to host again.
	_, reason, err = l.Create(host, ColorRandom, 0, 1, VisibilityPublic)
	require.NoError(t, err)
	require.Equal(t, ReasonNone, reason)
}

func TestForfeitNotifiesOpponentAndRecordsHistory(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorWhite, 3, 1, VisibilityPrivate)
	require.NoError(t, err)
	joiner := newFakeHandle("joiner")
	join, _, err := l.Join(joiner, res.Passcode)
	require.NoError(t, err)

	l.ForfeitOrDisconnect(joiner.ID())

	require.Len(t, host.events, 2) // MatchStartEvent, then OpponentLeftEvent
	_, ok := host.events[1].(OpponentLeftEvent)
	require.True(t, ok)

	snap := l.Snapshot()
	require.Len(t, snap.Running, 0)
	require.Len(t, snap.History, 1)
	require.Equal(t, join.MatchID, snap.History[0].MatchID)
	require.Equal(t, HistoryCompleted, snap.History[0].Status)
}

func TestForfeitWhileHostingCancelsOpenMatch(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	_, _, err := l.Create(host, ColorRandom, 0, 1, VisibilityPublic)
	require.NoError(t, err)

	l.ForfeitOrDisconnect(host.ID())

	snap := l.Snapshot()
	require.Len(t, snap.OpenPublic, 0)
}

func TestStampActionRelaysToOpponentWithServerMessageID(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorWhite, 0, 1, VisibilityPrivate)
	require.NoError(t, err)
	joiner := newFakeHandle("joiner")
	join, _, err := l.Join(joiner, res.Passcode)
	require.NoError(t, err)
	require.Equal(t, uint64(1), join.MessageID)

	start, ok := host.events[0].(MatchStartEvent)
	require.True(t, ok)
	require.Equal(t, uint64(1), start.MessageID)

	err = l.StampAction(joiner.ID(), join.MatchID, ActionEvent{ActionType: 1, SrcX: 4})
	require.NoError(t, err)

	require.Len(t, host.events, 2) // MatchStartEvent + the relayed action
	relayed, ok := host.events[1].(ActionEvent)
	require.True(t, ok)
	require.Equal(t, uint64(2), relayed.MessageID)

	err = l.StampAction(joiner.ID(), join.MatchID, ActionEvent{ActionType: 1})
	require.NoError(t, err)
	relayed2 := host.events[2].(ActionEvent)
	require.Equal(t, uint64(3), relayed2.MessageID)
}

func TestStampActionRejectsUnknownMatch(t *testing.T) {
	l := testLobby()
	err := l.StampAction("nobody", 42, ActionEvent{})
	require.ErrorIs(t, err, ErrUnknownMatch)
}

func TestStampActionRejectsNonParticipant(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorWhite, 0, 1, VisibilityPrivate)
	require.NoError(t, err)
	joiner := newFakeHandle("joiner")
	join, _, err := l.Join(joiner, res.Passcode)
	require.NoError(t, err)

	err = l.StampAction("stranger", join.MatchID, ActionEvent{})
	require.ErrorIs(t, err, ErrNotInMatch)
}

func TestMatchListForReflectsHostingState(t *testing.T) {
	l := testLobby()
	host := newFakeHandle("host")
	res, _, err := l.Create(host, ColorWhite, 1, 1, VisibilityPublic)
	require.NoError(t, err)

	view := l.MatchListFor(host.ID())
	require.True(t, view.Host.Hosting)
	require.Equal(t, res.Passcode, view.Host.Passcode)
	require.Len(t, view.Public, 1)

	otherView := l.MatchListFor("somebody-else")
	require.False(t, otherView.Host.Hosting)
	require.Len(t, otherView.Public, 1)
}
