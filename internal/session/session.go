// Package session drives one client connection through its protocol
// state machine, translating wire frames into lobby operations and
// lobby events back into wire frames. It is the only package that
// touches a net.Conn directly; the lobby only ever sees a
// lobby.SessionHandle.
package session

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/wire"
)

// ProtocolVersion is the server's own protocol version, sent in
// ServerGreet.
const ProtocolVersion int64 = 1

// greetTimeout bounds how long a newly accepted connection has to send
// its opening Greet before the session gives up on it.
const greetTimeout = 10 * time.Second

// Config tunes a Session's behavior, threaded down from the top-level
// server configuration.
type Config struct {
	RelayBufferSize  int
	PerTurnTimeout   time.Duration // zero disables the timeout
	AllowResetPuzzle bool
}

// Session owns one accepted connection end to end: handshake, idle
// matchmaking requests, and relay while paired into a running match.
type Session struct {
	conn     net.Conn
	lobby    *lobby.Lobby
	registry *Registry
	logger   *log.Logger
	cfg      Config

	handle *Handle
	state  State

	connectedAt time.Time
	version1    int64
	version2    int64
	matchID     uint64
}

// New constructs a Session for an accepted connection. Call Run to drive
// it; Run blocks until the connection ends.
func New(conn net.Conn, l *lobby.Lobby, registry *Registry, logger *log.Logger, cfg Config) *Session {
	if cfg.RelayBufferSize <= 0 {
		cfg.RelayBufferSize = 16
	}
	return &Session{
		conn:     conn,
		lobby:    l,
		registry: registry,
		logger:   logger,
		cfg:      cfg,
		state:    StateAwaitGreet,
	}
}

// frameResult is what the background reader goroutine feeds the main
// select loop; pairing a decoded body with any read error keeps the
// reader itself free of protocol logic.
type frameResult struct {
	body wire.Body
	err  error
}

// Run drives the session until the connection closes or a protocol
// violation ends it early. It always returns nil; connection-level
// errors are logged, not propagated, since one session's failure must
// never affect another's.
func (s *Session) Run() error {
	defer s.teardown()

	s.handle = newHandle(s.cfg.RelayBufferSize, s.forceClose)
	s.connectedAt = time.Now()

	if err := s.doGreet(); err != nil {
		s.logger.Debug("greet failed", "remote", s.conn.RemoteAddr(), "err", err)
		return nil
	}
	s.state = StateIdle
	s.publishSnapshot()

	frames := make(chan frameResult, 1)
	go s.readPump(frames)

	var timer *time.Timer
	var timerC <-chan time.Time
	armTimer := func() {
		if s.cfg.PerTurnTimeout <= 0 {
			return
		}
		if timer == nil {
			timer = time.NewTimer(s.cfg.PerTurnTimeout)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.cfg.PerTurnTimeout)
		}
		timerC = timer.C
	}

	for {
		select {
		case evt := <-s.handle.events:
			if !s.handleEvent(evt, armTimer) {
				return nil
			}
			s.publishSnapshot()

		case res, ok := <-frames:
			if !ok {
				return nil
			}
			if res.err != nil {
				if !errors.Is(res.err, io.EOF) && !errors.Is(res.err, io.ErrUnexpectedEOF) {
					s.logger.Debug("read error", "session", s.handle.ID(), "err", res.err)
				}
				return nil
			}
			if !s.handleFrame(res.body, armTimer) {
				return nil
			}
			s.publishSnapshot()

		case <-timerC:
			if s.state == StateInMatch {
				s.onTurnTimeout()
				s.publishSnapshot()
			}
		}
	}
}

func (s *Session) readPump(out chan<- frameResult) {
	defer close(out)
	for {
		body, err := wire.ReadFrame(s.conn)
		out <- frameResult{body: body, err: err}
		if err != nil {
			return
		}
	}
}

func (s *Session) doGreet() error {
	_ = s.conn.SetReadDeadline(time.Now().Add(greetTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	body, err := wire.ReadFrame(s.conn)
	if err != nil {
		return err
	}
	greet, ok := body.(wire.Greet)
	if !ok {
		return fmt.Errorf("expected Greet, got %T", body)
	}
	s.version1 = greet.Version1
	s.version2 = greet.Version2

	return wire.WriteFrame(s.conn, wire.ServerGreet{Version: ProtocolVersion})
}

// handleFrame processes one frame read from this session's own
// connection. It returns false when the session should end.
func (s *Session) handleFrame(body wire.Body, armTimer func()) bool {
	switch msg := body.(type) {
	case wire.MatchListRequest:
		s.sendMatchList()
		return true

	case wire.CreateOrJoin:
		if !s.handleCreateOrJoin(msg) {
			return false
		}
		if s.state == StateInMatch {
			armTimer()
		}
		return true

	case wire.MatchCancel:
		s.handleCancel()
		return true

	case wire.Forfeit:
		if s.state != StateInMatch {
			return false // protocol violation
		}
		s.lobby.ForfeitOrDisconnect(s.handle.ID())
		s.state = StateIdle
		return true

	case wire.Action:
		if s.state != StateInMatch {
			return false // protocol violation
		}
		if !s.cfg.AllowResetPuzzle && msg.ActionType == wire.ActionResetPuzzle {
			return false // disallowed action type is a protocol violation
		}
		err := s.lobby.StampAction(s.handle.ID(), s.matchID, lobby.ActionEvent{
			ActionType:    msg.ActionType,
			MessageID:     msg.MessageID,
			SrcTimeline:   msg.SrcTimeline,
			SrcTurn:       msg.SrcTurn,
			SrcBoardColor: msg.SrcBoardColor,
			SrcY:          msg.SrcY,
			SrcX:          msg.SrcX,
			DstTimeline:   msg.DstTimeline,
			DstTurn:       msg.DstTurn,
			DstBoardColor: msg.DstBoardColor,
			DstY:          msg.DstY,
			DstX:          msg.DstX,
		})
		if err != nil {
			return false
		}
		armTimer()
		return true

	default:
		return false // unexpected message type for any state
	}
}

func (s *Session) handleCreateOrJoin(msg wire.CreateOrJoin) bool {
	if msg.Passcode == wire.PasscodeCreate {
		res, reason, err := s.lobby.Create(s.handle, msg.Color, msg.Clock, msg.Variant, msg.Visibility)
		if err != nil {
			return false
		}
		if reason != lobby.ReasonNone {
			return s.sendCreateOrJoinError(reason)
		}
		if !s.send(wire.CreateOrJoinResult{
			Result:     wire.CreateOrJoinResultOK,
			Color:      res.Color,
			Clock:      res.Clock,
			Variant:    res.Variant,
			Visibility: res.Visibility,
			Passcode:   res.Passcode,
		}) {
			return false
		}
		s.state = StateHosting
		return true
	}

	join, reason, err := s.lobby.Join(s.handle, msg.Passcode)
	if err != nil {
		return false
	}
	if reason != lobby.ReasonNone {
		return s.sendCreateOrJoinError(reason)
	}
	if !s.send(wire.CreateOrJoinResult{
		Result:   wire.CreateOrJoinResultOK,
		Color:    join.Color,
		Clock:    join.Clock,
		Variant:  join.Variant,
		Passcode: msg.Passcode,
	}) {
		return false
	}
	s.matchID = join.MatchID
	if !s.send(wire.MatchStart{
		Clock:     join.Clock,
		Variant:   join.Variant,
		MatchID:   join.MatchID,
		Color:     join.Color,
		MessageID: join.MessageID,
	}) {
		return false
	}
	s.state = StateInMatch
	return true
}

func (s *Session) sendCreateOrJoinError(reason int64) bool {
	return s.send(wire.CreateOrJoinResult{
		Result: wire.CreateOrJoinResultError,
		Reason: reason,
	})
}

func (s *Session) handleCancel() {
	err := s.lobby.Cancel(s.handle)
	if err != nil {
		s.send(wire.MatchCancelResult{Result: wire.MatchCancelError})
		return
	}
	s.state = StateIdle
	s.send(wire.MatchCancelResult{Result: wire.MatchCancelOK})
}

func (s *Session) sendMatchList() {
	view := s.lobby.MatchListFor(s.handle.ID())

	list := wire.MatchList{
		IsHost: view.Host.Hosting,
	}
	if view.Host.Hosting {
		list.HostColor = view.Host.Color
		list.HostClock = view.Host.Clock
		list.HostVariant = view.Host.Variant
		list.HostVisibility = view.Host.Visibility
		list.HostPasscode = view.Host.Passcode
	}
	for _, m := range view.Public {
		list.PublicMatches = append(list.PublicMatches, wire.PublicMatchEntry{
			Color: m.Color, Clock: m.Clock, Variant: m.Variant, Passcode: m.Passcode,
		})
	}
	for _, h := range view.History {
		list.HistoryMatches = append(list.HistoryMatches, wire.HistoryMatchEntry{
			Status: h.Status, Clock: h.Clock, Variant: h.Variant,
			Visibility: h.Visibility, SecondsPassed: h.SecondsPassed,
		})
	}
	s.send(list)
}

// handleEvent processes a lobby-pushed event for this session while it
// waits between its own reads. Returns false when the session should
// end.
func (s *Session) handleEvent(evt lobby.Event, armTimer func()) bool {
	switch e := evt.(type) {
	case lobby.MatchStartEvent:
		if !s.send(wire.MatchStart{
			Clock: e.Clock, Variant: e.Variant, MatchID: e.MatchID,
			Color: e.Color, MessageID: e.MessageID,
		}) {
			return false
		}
		s.matchID = e.MatchID
		s.state = StateInMatch
		armTimer()
		return true

	case lobby.ActionEvent:
		armTimer()
		return s.send(wire.Action{
			ActionType: e.ActionType, Color: e.Color, MessageID: e.MessageID,
			SrcTimeline: e.SrcTimeline, SrcTurn: e.SrcTurn, SrcBoardColor: e.SrcBoardColor,
			SrcY: e.SrcY, SrcX: e.SrcX,
			DstTimeline: e.DstTimeline, DstTurn: e.DstTurn, DstBoardColor: e.DstBoardColor,
			DstY: e.DstY, DstX: e.DstX,
		})

	case lobby.OpponentLeftEvent:
		s.state = StateIdle
		return s.send(wire.OpponentLeft{})

	default:
		return true
	}
}

// onTurnTimeout ends the running match when no action has been relayed
// in either direction within the configured per-turn timeout. This is a
// network-level inactivity timeout, not a chess-rules judgment: the
// opponent is first relayed a single Header action marking the timeout,
// and the match then ends exactly like a voluntary forfeit or a dropped
// connection: the opponent is notified with OpponentLeft and a
// HistoryEntry is recorded.
func (s *Session) onTurnTimeout() {
	_ = s.lobby.StampAction(s.handle.ID(), s.matchID, lobby.ActionEvent{ActionType: wire.ActionHeader})
	s.lobby.ForfeitOrDisconnect(s.handle.ID())
	s.state = StateIdle
}

func (s *Session) send(body wire.Body) bool {
	if err := wire.WriteFrame(s.conn, body); err != nil {
		s.logger.Debug("write error", "session", s.handle.ID(), "err", err)
		return false
	}
	return true
}

func (s *Session) forceClose() {
	_ = s.conn.Close()
}

func (s *Session) teardown() {
	_ = s.conn.Close()
	if s.handle != nil {
		s.lobby.ForfeitOrDisconnect(s.handle.ID())
		if s.registry != nil {
			s.registry.Remove(s.handle.ID())
		}
	}
	s.state = StateClosed
}

func (s *Session) publishSnapshot() {
	if s.registry == nil || s.handle == nil {
		return
	}
	s.registry.Put(Snapshot{
		ID:             s.handle.ID(),
		RemoteAddr:     s.conn.RemoteAddr().String(),
		ConnectedAt:    s.connectedAt,
		State:          s.state,
		ClientVersion1: s.version1,
		ClientVersion2: s.version2,
	})
}
