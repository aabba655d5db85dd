// Package lobby owns all shared, cross-connection match-server state:
// the set of open (unpaired) matches, the set of running (paired)
// matches, and a bounded history of recently finished ones. Every
// operation acquires a single exclusive lock for its duration, matching
// the "single exclusive lock, O(1) amortized" design a session-per-
// connection transport needs from its shared matchmaking state —
// modeled on how the teacher's Coordinator serializes lobby and match
// bookkeeping behind one mutex.
package lobby

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Config bounds and tunes a Lobby instance.
type Config struct {
	// Variants is the allow-list of variant tags Create accepts. An empty
	// list means every variant is allowed.
	Variants []int64
	// OpenPublicCapacity bounds the open-public-matches list exposed in
	// MatchList snapshots. Never exceeds wire.MatchListSlots (13).
	OpenPublicCapacity int
	// HistoryCapacity bounds the finished-match ring. Never exceeds
	// wire.MatchListSlots (13).
	HistoryCapacity int
}

// Lobby is the process-wide matchmaking singleton. The zero value is not
// usable; construct with New.
type Lobby struct {
	cfg       Config
	variantOK map[int64]bool

	mu sync.Mutex

	// openPublic preserves insertion order so MatchList can present
	// matches oldest-first, capped at cfg.OpenPublicCapacity.
	openPublic []*OpenMatch
	// openPrivate indexes every open match, public and private, by
	// passcode; private matches never appear in openPublic and are
	// reachable only by passcode.
	openPrivate map[int64]*OpenMatch
	// hostOf indexes both open collections by hosting session, so
	// Cancel and a hosting session's own disconnect can find its match
	// in O(1) without scanning.
	hostOf map[SessionID]*OpenMatch

	running map[uint64]*RunningMatch
	// sessionMatch indexes running matches by participant, so
	// ForfeitOrDisconnect and StampAction resolve a session's match in
	// O(1).
	sessionMatch map[SessionID]uint64

	// history is a ring of the last cfg.HistoryCapacity finished
	// matches, newest first.
	history []HistoryEntry

	nextMatchID uint64

	sink HistorySink

	admin chan AdminEvent
}

// New constructs a Lobby. admin may be nil; if non-nil it receives a
// non-blocking best-effort stream of AdminEvents (a full channel drops
// the event rather than stall a match operation).
func New(cfg Config, sink HistorySink, admin chan AdminEvent) *Lobby {
	if cfg.OpenPublicCapacity <= 0 || cfg.OpenPublicCapacity > 13 {
		cfg.OpenPublicCapacity = 13
	}
	if cfg.HistoryCapacity <= 0 || cfg.HistoryCapacity > 13 {
		cfg.HistoryCapacity = 13
	}
	variantOK := make(map[int64]bool, len(cfg.Variants))
	for _, v := range cfg.Variants {
		variantOK[v] = true
	}
	return &Lobby{
		cfg:          cfg,
		variantOK:    variantOK,
		openPrivate:  make(map[int64]*OpenMatch),
		hostOf:       make(map[SessionID]*OpenMatch),
		running:      make(map[uint64]*RunningMatch),
		sessionMatch: make(map[SessionID]uint64),
		sink:         sink,
		admin:        admin,
	}
}

func (l *Lobby) notify(evt AdminEvent) {
	if l.admin == nil {
		return
	}
	select {
	case l.admin <- evt:
	default:
	}
}

// CreateResult carries the outcome of Create.
type CreateResult struct {
	Passcode   int64
	Color      int64
	Clock      int64
	Variant    int64
	Visibility int64
}

// Create opens a new match hosted by host. The caller must not already
// be hosting an open match or participating in a running one.
func (l *Lobby) Create(host SessionHandle, color, clock, variant, visibility int64) (CreateResult, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.cfg.Variants) > 0 && !l.variantOK[variant] {
		return CreateResult{}, ReasonVariantNotAllowed, nil
	}
	if _, hosting := l.hostOf[host.ID()]; hosting {
		return CreateResult{}, ReasonAlreadyHostingOrIn, nil
	}
	if _, inMatch := l.sessionMatch[host.ID()]; inMatch {
		return CreateResult{}, ReasonAlreadyHostingOrIn, nil
	}
	if visibility == VisibilityPublic && len(l.openPublic) >= l.cfg.OpenPublicCapacity {
		return CreateResult{}, ReasonLobbyFull, nil
	}

	passcode := l.generatePasscode()
	match := &OpenMatch{
		Passcode:   passcode,
		Host:       host,
		Color:      color,
		Clock:      clock,
		Variant:    variant,
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}

	if visibility == VisibilityPublic {
		l.openPublic = append(l.openPublic, match)
	}
	l.openPrivate[passcode] = match
	l.hostOf[host.ID()] = match

	l.notify(AdminEvent{Kind: AdminMatchOpened, Passcode: passcode})

	return CreateResult{
		Passcode:   passcode,
		Color:      color,
		Clock:      clock,
		Variant:    variant,
		Visibility: visibility,
	}, ReasonNone, nil
}

// JoinResult carries the outcome of a successful Join, from the
// joiner's point of view. The host side is notified separately via
// MatchStartEvent.
type JoinResult struct {
	MatchID   uint64
	Color     int64
	Clock     int64
	Variant   int64
	MessageID uint64
}

// Join pairs joiner into the open match identified by passcode, starting
// a running match. The host receives a MatchStartEvent through its
// SessionHandle as part of this call.
func (l *Lobby) Join(joiner SessionHandle, passcode int64) (JoinResult, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hosted, hosting := l.hostOf[joiner.ID()]; hosting && hosted.Passcode != passcode {
		return JoinResult{}, ReasonAlreadyHostingOrIn, nil
	}
	if _, inMatch := l.sessionMatch[joiner.ID()]; inMatch {
		return JoinResult{}, ReasonAlreadyHostingOrIn, nil
	}

	open, ok := l.openPrivate[passcode]
	if !ok {
		return JoinResult{}, ReasonPasscodeNotFound, nil
	}
	if open.Host.ID() == joiner.ID() {
		return JoinResult{}, ReasonPasscodeNotFound, nil
	}

	l.removeOpen(open)

	hostColor, joinerColor := resolveColors(open.Color)

	matchID := l.nextMatchID
	l.nextMatchID++

	match := &RunningMatch{
		MatchID:       matchID,
		Clock:         open.Clock,
		Variant:       open.Variant,
		Visibility:    open.Visibility,
		StartedAt:     time.Now(),
		nextMessageID: 1,
	}
	if hostColor == ColorInPlayWhite {
		match.Player1 = open.Host
		match.Player2 = joiner
	} else {
		match.Player1 = joiner
		match.Player2 = open.Host
	}

	l.running[matchID] = match
	l.sessionMatch[open.Host.ID()] = matchID
	l.sessionMatch[joiner.ID()] = matchID

	open.Host.Send(MatchStartEvent{
		MatchID:   matchID,
		Clock:     match.Clock,
		Variant:   match.Variant,
		Color:     hostColor,
		MessageID: match.nextMessageID,
	})

	l.notify(AdminEvent{Kind: AdminMatchPaired, MatchID: matchID})

	return JoinResult{
		MatchID:   matchID,
		Color:     joinerColor,
		Clock:     match.Clock,
		Variant:   match.Variant,
		MessageID: match.nextMessageID,
	}, ReasonNone, nil
}

// resolveColors decides who plays white given the host's requested
// advertisement color. None and Random both resolve by coin flip; a
// concrete request of White or Black is honored for the host and the
// joiner takes the other side.
func resolveColors(hostRequested int64) (hostColor, joinerColor int64) {
	switch hostRequested {
	case ColorWhite:
		return ColorInPlayWhite, ColorInPlayBlack
	case ColorBlack:
		return ColorInPlayBlack, ColorInPlayWhite
	default:
		if randomBool() {
			return ColorInPlayWhite, ColorInPlayBlack
		}
		return ColorInPlayBlack, ColorInPlayWhite
	}
}

func randomBool() bool {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()%2 == 0
	}
	return b[0]&1 == 0
}

// Cancel withdraws host's open match, if any. Returns ErrNotHosting if
// the caller has none.
func (l *Lobby) Cancel(host SessionHandle) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	open, ok := l.hostOf[host.ID()]
	if !ok {
		return ErrNotHosting
	}
	l.removeOpen(open)
	l.notify(AdminEvent{Kind: AdminMatchCancelled, Passcode: open.Passcode})
	return nil
}

// removeOpen deletes match from every open-match index. Caller must hold
// l.mu.
func (l *Lobby) removeOpen(match *OpenMatch) {
	delete(l.openPrivate, match.Passcode)
	delete(l.hostOf, match.Host.ID())
	if match.Visibility == VisibilityPublic {
		for i, m := range l.openPublic {
			if m == match {
				l.openPublic = append(l.openPublic[:i], l.openPublic[i+1:]...)
				break
			}
		}
	}
}

// ForfeitOrDisconnect handles a session leaving the lobby, whether
// voluntarily (Forfeit) or because its connection dropped. If the
// session was hosting an open match, that match is withdrawn silently.
// If it was a participant of a running match, the match ends, the
// opponent is notified with OpponentLeftEvent, and a HistoryEntry is
// recorded.
func (l *Lobby) ForfeitOrDisconnect(id SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if open, ok := l.hostOf[id]; ok {
		l.removeOpen(open)
		l.notify(AdminEvent{Kind: AdminMatchCancelled, Passcode: open.Passcode})
		return
	}

	matchID, ok := l.sessionMatch[id]
	if !ok {
		return
	}
	match := l.running[matchID]
	opponent, ok := match.opponentOf(id)
	if ok {
		opponent.Send(OpponentLeftEvent{})
	}

	l.endMatch(match, HistoryCompleted)
}

// endMatch removes match from the running index and appends a
// HistoryEntry. Caller must hold l.mu.
func (l *Lobby) endMatch(match *RunningMatch, status int64) {
	delete(l.running, match.MatchID)
	delete(l.sessionMatch, match.Player1.ID())
	delete(l.sessionMatch, match.Player2.ID())

	entry := HistoryEntry{
		MatchID:       match.MatchID,
		Status:        status,
		Clock:         match.Clock,
		Variant:       match.Variant,
		Visibility:    match.Visibility,
		SecondsPassed: int64(time.Since(match.StartedAt).Seconds()),
	}
	l.history = append([]HistoryEntry{entry}, l.history...)
	if len(l.history) > l.cfg.HistoryCapacity {
		l.history = l.history[:l.cfg.HistoryCapacity]
	}
	if l.sink != nil {
		l.sink.Record(entry)
	}
	l.notify(AdminEvent{Kind: AdminMatchEnded, MatchID: match.MatchID})
}

// StampAction relays action from sender to its opponent in matchID,
// stamping a server-assigned monotonic MessageID. Returns ErrUnknownMatch
// if matchID no longer exists (already ended) and ErrNotInMatch if
// sender is not one of its two participants.
func (l *Lobby) StampAction(sender SessionID, matchID uint64, action ActionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	match, ok := l.running[matchID]
	if !ok {
		return ErrUnknownMatch
	}
	opponent, ok := match.opponentOf(sender)
	if !ok {
		return ErrNotInMatch
	}

	match.nextMessageID++
	action.MessageID = match.nextMessageID

	opponent.Send(action)
	return nil
}

// generatePasscode produces a positive int64 not currently in use by any
// open match, the way the teacher's generateUniqueCode draws from
// crypto/rand and falls back to a time-derived value if the source ever
// fails. Caller must hold l.mu.
func (l *Lobby) generatePasscode() int64 {
	for attempt := 0; attempt < 8; attempt++ {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			break
		}
		v := int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
		if v == 0 {
			continue
		}
		if _, taken := l.openPrivate[v]; !taken {
			return v
		}
	}
	return time.Now().UnixNano()
}
