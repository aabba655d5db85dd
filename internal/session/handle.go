package session

import (
	"github.com/google/uuid"

	"github.com/open5dchess/matchd/internal/lobby"
)

// Handle is the lobby.SessionHandle implementation backing one live
// connection. Send never blocks: a full buffer means the session's own
// goroutine has fallen too far behind to keep relaying, so the handle
// tears the connection down instead of stalling the lobby's single
// lock, the way the teacher's ChannelSession trades delivery guarantees
// for a non-blocking Send.
type Handle struct {
	id      lobby.SessionID
	events  chan lobby.Event
	onStall func()
}

// newHandle allocates a Handle with the given relay buffer capacity. The
// id is a random UUID (github.com/google/uuid), matching the identifier
// style the wider example corpus uses for connection/session keys.
func newHandle(bufferSize int, onStall func()) *Handle {
	return &Handle{
		id:      lobby.SessionID(uuid.NewString()),
		events:  make(chan lobby.Event, bufferSize),
		onStall: onStall,
	}
}

// ID implements lobby.SessionHandle.
func (h *Handle) ID() lobby.SessionID { return h.id }

// Send implements lobby.SessionHandle.
func (h *Handle) Send(e lobby.Event) {
	select {
	case h.events <- e:
	default:
		if h.onStall != nil {
			h.onStall()
		}
	}
}
