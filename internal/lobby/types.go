package lobby

import (
	"errors"
	"time"
)

// Reject reasons returned by Create and Join, mirroring wire.Reason*.
const (
	ReasonNone               int64 = 0
	ReasonVariantNotAllowed  int64 = 1
	ReasonLobbyFull          int64 = 2
	ReasonPasscodeNotFound   int64 = 3
	ReasonAlreadyHostingOrIn int64 = 4
)

// Color advertisement values, mirroring wire.Color*.
const (
	ColorNone   int64 = 0
	ColorRandom int64 = 1
	ColorWhite  int64 = 2
	ColorBlack  int64 = 3
)

// In-play color values, mirroring wire.ColorInPlay*.
const (
	ColorInPlayWhite int64 = 0
	ColorInPlayBlack int64 = 1
)

// Visibility values, mirroring wire.Visibility*.
const (
	VisibilityPublic  int64 = 1
	VisibilityPrivate int64 = 2
)

// History status values, mirroring wire.History*.
const (
	HistoryCompleted  int64 = 0
	HistoryInProgress int64 = 1
)

var (
	// ErrNotHosting is returned by Cancel when the caller has no open
	// match to cancel.
	ErrNotHosting = errors.New("lobby: session is not hosting an open match")
	// ErrUnknownMatch is returned by StampAction when the given match id
	// has no running match (already ended, or never existed).
	ErrUnknownMatch = errors.New("lobby: no running match with that id")
	// ErrNotInMatch is returned by StampAction when the caller is not a
	// participant of the running match it named.
	ErrNotInMatch = errors.New("lobby: session is not a participant of that match")
)

// OpenMatch is a hosted match awaiting a second player. It lives in the
// lobby's by-passcode map (and, if public, also in the public list) until
// it is joined or cancelled.
type OpenMatch struct {
	Passcode   int64
	Host       SessionHandle
	Color      int64
	Clock      int64
	Variant    int64
	Visibility int64
	CreatedAt  time.Time
}

// RunningMatch is a paired match actively relaying actions between two
// sessions.
type RunningMatch struct {
	MatchID    uint64
	Clock      int64
	Variant    int64
	Visibility int64
	Player1    SessionHandle // color ColorInPlayWhite
	Player2    SessionHandle // color ColorInPlayBlack
	StartedAt  time.Time

	nextMessageID uint64
}

// opponentOf returns the handle of the side of the match that is not id,
// and ok=false if id is not a participant.
func (m *RunningMatch) opponentOf(id SessionID) (SessionHandle, bool) {
	switch {
	case m.Player1.ID() == id:
		return m.Player2, true
	case m.Player2.ID() == id:
		return m.Player1, true
	default:
		return nil, false
	}
}

func (m *RunningMatch) colorOf(id SessionID) (int64, bool) {
	switch {
	case m.Player1.ID() == id:
		return ColorInPlayWhite, true
	case m.Player2.ID() == id:
		return ColorInPlayBlack, true
	default:
		return 0, false
	}
}

// HistoryEntry is a finished or abandoned match retained in the lobby's
// bounded ring for operator visibility and MatchList's history table. It
// is never written to disk or a database; the lobby's Non-goal of
// process-lifetime-only persistence applies to this ring as much as to
// the rest of the lobby's state.
type HistoryEntry struct {
	MatchID       uint64
	Status        int64
	Clock         int64
	Variant       int64
	Visibility    int64
	SecondsPassed int64
}

// HistorySink receives a copy of every HistoryEntry as it is appended to
// the lobby's ring, in addition to the ring itself. The matchd binary
// passes no sink to New, and the admin console polls Snapshot instead;
// no HistorySink implementation in this repository writes to anything
// other than memory.
type HistorySink interface {
	Record(HistoryEntry)
}

// AdminEvent is sent, best-effort, on the admin channel given to New (if
// any) on every state-changing lobby operation, the way the teacher's
// SessionEvent values flow from the coordinator into the arcade's Bubble
// Tea models. The matchd binary passes no channel, and the admin console
// does not read these events.
type AdminEvent struct {
	Kind     AdminEventKind
	Passcode int64
	MatchID  uint64
}

// AdminEventKind enumerates the lobby transitions the admin console
// cares about.
type AdminEventKind int

const (
	AdminMatchOpened AdminEventKind = iota
	AdminMatchCancelled
	AdminMatchPaired
	AdminMatchEnded
)
