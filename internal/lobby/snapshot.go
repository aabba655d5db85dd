package lobby

import "time"

// PublicMatchView is one row of an open public match, safe to hand to
// the wire or admin layers without exposing the SessionHandle itself.
type PublicMatchView struct {
	Passcode int64
	Color    int64
	Clock    int64
	Variant  int64
}

// HostView describes the caller's own open match, if it is hosting one.
type HostView struct {
	Hosting    bool
	Passcode   int64
	Color      int64
	Clock      int64
	Variant    int64
	Visibility int64
}

// MatchListView is everything needed to build a wire.MatchList response
// for one particular caller.
type MatchListView struct {
	Host    HostView
	Public  []PublicMatchView
	History []HistoryEntry
}

// MatchListFor computes the MatchList view for caller, at the same O(13)
// cost as every other lobby operation: caller's own open match (if any),
// the open public matches (oldest first, capped at OpenPublicCapacity),
// and the finished-match history (newest first, capped at
// HistoryCapacity).
func (l *Lobby) MatchListFor(caller SessionID) MatchListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	view := MatchListView{
		Public:  make([]PublicMatchView, 0, len(l.openPublic)),
		History: make([]HistoryEntry, len(l.history)),
	}

	if open, ok := l.hostOf[caller]; ok {
		view.Host = HostView{
			Hosting:    true,
			Passcode:   open.Passcode,
			Color:      open.Color,
			Clock:      open.Clock,
			Variant:    open.Variant,
			Visibility: open.Visibility,
		}
	}

	for _, m := range l.openPublic {
		view.Public = append(view.Public, PublicMatchView{
			Passcode: m.Passcode,
			Color:    m.Color,
			Clock:    m.Clock,
			Variant:  m.Variant,
		})
	}

	copy(view.History, l.history)
	return view
}

// RunningMatchView is a read-only, operator-facing summary of one
// running match.
type RunningMatchView struct {
	MatchID       uint64
	Clock         int64
	Variant       int64
	Visibility    int64
	Player1       SessionID
	Player2       SessionID
	StartedAt     time.Time
	SecondsPassed int64
}

// Snapshot is the full operator-facing view of lobby state, rendered by
// the admin console. Computed under the same single lock as every wire-
// facing operation.
type Snapshot struct {
	OpenPublic []PublicMatchView
	OpenTotal  int
	Running    []RunningMatchView
	History    []HistoryEntry
}

// Snapshot returns the current lobby state for the admin console. It
// never mutates lobby state and is safe to call on any schedule.
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		OpenPublic: make([]PublicMatchView, 0, len(l.openPublic)),
		OpenTotal:  len(l.openPrivate),
		Running:    make([]RunningMatchView, 0, len(l.running)),
		History:    make([]HistoryEntry, len(l.history)),
	}

	for _, m := range l.openPublic {
		snap.OpenPublic = append(snap.OpenPublic, PublicMatchView{
			Passcode: m.Passcode,
			Color:    m.Color,
			Clock:    m.Clock,
			Variant:  m.Variant,
		})
	}

	for _, m := range l.running {
		snap.Running = append(snap.Running, RunningMatchView{
			MatchID:       m.MatchID,
			Clock:         m.Clock,
			Variant:       m.Variant,
			Visibility:    m.Visibility,
			Player1:       m.Player1.ID(),
			Player2:       m.Player2.ID(),
			StartedAt:     m.StartedAt,
			SecondsPassed: int64(time.Since(m.StartedAt).Seconds()),
		})
	}

	copy(snap.History, l.history)
	return snap
}
