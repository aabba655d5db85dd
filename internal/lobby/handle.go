package lobby

// SessionID identifies one connected session. Generated by the session
// package (a google/uuid string), opaque to the lobby.
type SessionID string

// SessionHandle decouples the lobby's pairing and relay logic from the
// transport that owns the actual connection, the way the teacher's
// SessionHandle/ChannelSession split keeps the coordinator ignorant of
// net.Conn or the terminal. The lobby only ever calls Send; delivery,
// buffering, and backpressure are the handle's problem.
type SessionHandle interface {
	ID() SessionID
	Send(Event)
}

// Event is pushed to a SessionHandle asynchronously, outside the
// request/response shape of the session's own reads. A hosting session
// sitting idle on its next read needs this channel to learn it has been
// paired; a session InMatch needs it to receive the other side's relayed
// actions and disconnect notice.
type Event interface {
	lobbyEvent()
}

// MatchStartEvent is delivered to the host the instant a joiner pairs
// with its open match. The joiner does not receive this event: Join's
// JoinResult already carries the same information, from which the
// joiner's session writes its own MatchStart.
type MatchStartEvent struct {
	MatchID   uint64
	Clock     int64
	Variant   int64
	Color     int64
	MessageID uint64
}

func (MatchStartEvent) lobbyEvent() {}

// ActionEvent relays one action from the sending side of a running match
// to its opponent, with MessageID already stamped by the lobby.
type ActionEvent struct {
	ActionType    int64
	Color         int64
	MessageID     uint64
	SrcTimeline   int64
	SrcTurn       int64
	SrcBoardColor int64
	SrcY          int64
	SrcX          int64
	DstTimeline   int64
	DstTurn       int64
	DstBoardColor int64
	DstY          int64
	DstX          int64
}

func (ActionEvent) lobbyEvent() {}

// OpponentLeftEvent notifies the remaining side of a running match that
// its opponent disconnected or forfeited.
type OpponentLeftEvent struct{}

func (OpponentLeftEvent) lobbyEvent() {}
