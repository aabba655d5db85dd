package wire

// Greet is the client's opening frame (type 1): the protocol version it
// speaks, plus four reserved i64 slots for future negotiation.
type Greet struct {
	Version1 int64
	Version2 int64
}

func (Greet) Type() MessageType { return TypeC2SGreet }

func (g Greet) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, g.Version1)
	dst = appendI64(dst, g.Version2)
	for i := 0; i < 4; i++ {
		dst = appendI64(dst, 0)
	}
	return dst
}

func decodeGreet(f []byte) (Body, error) {
	if len(f) != 48 {
		return nil, ErrTruncatedPayload
	}
	return Greet{
		Version1: readI64(f[0:8]),
		Version2: readI64(f[8:16]),
	}, nil
}

// ServerGreet is the server's reply (type 2): the server's own protocol
// version plus five reserved i64 slots.
type ServerGreet struct {
	Version int64
}

func (ServerGreet) Type() MessageType { return TypeS2CGreet }

func (g ServerGreet) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, g.Version)
	for i := 0; i < 5; i++ {
		dst = appendI64(dst, 0)
	}
	return dst
}

func decodeServerGreet(f []byte) (Body, error) {
	if len(f) != 48 {
		return nil, ErrTruncatedPayload
	}
	return ServerGreet{Version: readI64(f[0:8])}, nil
}

// CreateOrJoin is the client's request to host a new match or join an
// existing one (type 3). Passcode == PasscodeCreate means "create".
type CreateOrJoin struct {
	Color      int64
	Clock      int64
	Variant    int64
	Visibility int64
	Passcode   int64
}

func (CreateOrJoin) Type() MessageType { return TypeMatchCreateOrJoin }

func (m CreateOrJoin) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, m.Color)
	dst = appendI64(dst, m.Clock)
	dst = appendI64(dst, m.Variant)
	dst = appendI64(dst, m.Visibility)
	dst = appendI64(dst, m.Passcode)
	return dst
}

func decodeCreateOrJoin(f []byte) (Body, error) {
	if len(f) != 40 {
		return nil, ErrTruncatedPayload
	}
	return CreateOrJoin{
		Color:      readI64(f[0:8]),
		Clock:      readI64(f[8:16]),
		Variant:    readI64(f[16:24]),
		Visibility: readI64(f[24:32]),
		Passcode:   readI64(f[32:40]),
	}, nil
}

// CreateOrJoinResult values.
const (
	CreateOrJoinResultError int64 = 0
	CreateOrJoinResultOK    int64 = 1
)

// CreateOrJoin reject reasons.
const (
	ReasonNone               int64 = 0
	ReasonVariantNotAllowed  int64 = 1
	ReasonLobbyFull          int64 = 2
	ReasonPasscodeNotFound   int64 = 3
	ReasonAlreadyHostingOrIn int64 = 4
)

// CreateOrJoinResult answers a CreateOrJoin (type 4): either the accepted
// parameters and the passcode to share (on host) or the match pairing
// echoed back (on join), or a rejection reason.
type CreateOrJoinResult struct {
	Result     int64
	Reason     int64
	Color      int64
	Clock      int64
	Variant    int64
	Visibility int64
	Passcode   int64
}

func (CreateOrJoinResult) Type() MessageType { return TypeMatchCreateOrJoinResult }

func (m CreateOrJoinResult) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, m.Result)
	dst = appendI64(dst, m.Reason)
	dst = appendI64(dst, m.Color)
	dst = appendI64(dst, m.Clock)
	dst = appendI64(dst, m.Variant)
	dst = appendI64(dst, m.Visibility)
	dst = appendI64(dst, m.Passcode)
	return dst
}

func decodeCreateOrJoinResult(f []byte) (Body, error) {
	if len(f) != 56 {
		return nil, ErrTruncatedPayload
	}
	return CreateOrJoinResult{
		Result:     readI64(f[0:8]),
		Reason:     readI64(f[8:16]),
		Color:      readI64(f[16:24]),
		Clock:      readI64(f[24:32]),
		Variant:    readI64(f[32:40]),
		Visibility: readI64(f[40:48]),
		Passcode:   readI64(f[48:56]),
	}, nil
}

// MatchCancel (type 5) carries one reserved byte, encoded as a single
// trailing zero byte after the type tag.
type MatchCancel struct{}

func (MatchCancel) Type() MessageType { return TypeMatchCancel }

func (MatchCancel) marshalFields(dst []byte) []byte { return append(dst, 0) }

// MatchCancelResult values.
const (
	MatchCancelError int64 = 0
	MatchCancelOK    int64 = 1
)

// MatchCancelResult (type 6) answers MatchCancel.
type MatchCancelResult struct {
	Result int64
}

func (MatchCancelResult) Type() MessageType { return TypeMatchCancelResult }

func (m MatchCancelResult) marshalFields(dst []byte) []byte {
	return appendI64(dst, m.Result)
}

func decodeMatchCancelResult(f []byte) (Body, error) {
	if len(f) != 8 {
		return nil, ErrTruncatedPayload
	}
	return MatchCancelResult{Result: readI64(f[0:8])}, nil
}

// MatchStart (type 7) is sent to both paired clients once a match begins.
type MatchStart struct {
	Clock     int64
	Variant   int64
	MatchID   uint64
	Color     int64
	MessageID uint64
}

func (MatchStart) Type() MessageType { return TypeMatchStart }

func (m MatchStart) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, m.Clock)
	dst = appendI64(dst, m.Variant)
	dst = appendU64(dst, m.MatchID)
	dst = appendI64(dst, m.Color)
	dst = appendU64(dst, m.MessageID)
	return dst
}

func decodeMatchStart(f []byte) (Body, error) {
	if len(f) != 40 {
		return nil, ErrTruncatedPayload
	}
	return MatchStart{
		Clock:     readI64(f[0:8]),
		Variant:   readI64(f[8:16]),
		MatchID:   readU64(f[16:24]),
		Color:     readI64(f[24:32]),
		MessageID: readU64(f[32:40]),
	}, nil
}

// OpponentLeft (type 9) notifies the remaining client that its opponent
// disconnected or forfeited; one reserved byte.
type OpponentLeft struct{}

func (OpponentLeft) Type() MessageType { return TypeOpponentLeft }

func (OpponentLeft) marshalFields(dst []byte) []byte { return append(dst, 0) }

// Forfeit (type 10) is the client's voluntary resignation; one reserved
// byte.
type Forfeit struct{}

func (Forfeit) Type() MessageType { return TypeForfeit }

func (Forfeit) marshalFields(dst []byte) []byte { return append(dst, 0) }

// Action (type 11) is relayed verbatim between the two paired clients of
// a running match, with MessageID overwritten by the server on relay.
type Action struct {
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

func (Action) Type() MessageType { return TypeAction }

func (a Action) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, a.ActionType)
	dst = appendI64(dst, a.Color)
	dst = appendU64(dst, a.MessageID)
	dst = appendI64(dst, a.SrcTimeline)
	dst = appendI64(dst, a.SrcTurn)
	dst = appendI64(dst, a.SrcBoardColor)
	dst = appendI64(dst, a.SrcY)
	dst = appendI64(dst, a.SrcX)
	dst = appendI64(dst, a.DstTimeline)
	dst = appendI64(dst, a.DstTurn)
	dst = appendI64(dst, a.DstBoardColor)
	dst = appendI64(dst, a.DstY)
	dst = appendI64(dst, a.DstX)
	return dst
}

func decodeAction(f []byte) (Body, error) {
	if len(f) != 104 {
		return nil, ErrTruncatedPayload
	}
	return Action{
		ActionType:    readI64(f[0:8]),
		Color:         readI64(f[8:16]),
		MessageID:     readU64(f[16:24]),
		SrcTimeline:   readI64(f[24:32]),
		SrcTurn:       readI64(f[32:40]),
		SrcBoardColor: readI64(f[40:48]),
		SrcY:          readI64(f[48:56]),
		SrcX:          readI64(f[56:64]),
		DstTimeline:   readI64(f[64:72]),
		DstTurn:       readI64(f[72:80]),
		DstBoardColor: readI64(f[80:88]),
		DstY:          readI64(f[88:96]),
		DstX:          readI64(f[96:104]),
	}, nil
}

// MatchListRequest (type 12) asks for a fresh MatchList snapshot; one
// reserved byte.
type MatchListRequest struct{}

func (MatchListRequest) Type() MessageType { return TypeMatchListRequest }

func (MatchListRequest) marshalFields(dst []byte) []byte { return append(dst, 0) }

// PublicMatchEntry is one row of MatchList's open-public-matches table.
type PublicMatchEntry struct {
	Color    int64
	Clock    int64
	Variant  int64
	Passcode int64
}

// HistoryMatchEntry is one row of MatchList's recently-finished table.
type HistoryMatchEntry struct {
	Status        int64
	Clock         int64
	Variant       int64
	Visibility    int64
	SecondsPassed int64
}

// MatchList (type 13) is the fixed-size, zero-padded snapshot of the
// caller's own hosted match (if any), the open public matches, and
// recent history. Always exactly 1008 bytes on the wire.
type MatchList struct {
	HostColor      int64
	HostClock      int64
	HostVariant    int64
	HostVisibility int64
	HostPasscode   int64
	IsHost         bool

	PublicMatches  []PublicMatchEntry
	HistoryMatches []HistoryMatchEntry
}

func (MatchList) Type() MessageType { return TypeMatchList }

func boolToI64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (m MatchList) marshalFields(dst []byte) []byte {
	dst = appendI64(dst, m.HostColor)
	dst = appendI64(dst, m.HostClock)
	dst = appendI64(dst, m.HostVariant)
	dst = appendI64(dst, m.HostVisibility)
	dst = appendI64(dst, m.HostPasscode)
	dst = appendI64(dst, boolToI64(m.IsHost))

	for i := 0; i < MatchListSlots; i++ {
		if i < len(m.PublicMatches) {
			e := m.PublicMatches[i]
			dst = appendI64(dst, e.Color)
			dst = appendI64(dst, e.Clock)
			dst = appendI64(dst, e.Variant)
			dst = appendI64(dst, e.Passcode)
		} else {
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
		}
	}
	dst = appendI64(dst, int64(len(m.PublicMatches)))

	for i := 0; i < MatchListSlots; i++ {
		if i < len(m.HistoryMatches) {
			e := m.HistoryMatches[i]
			dst = appendI64(dst, e.Status)
			dst = appendI64(dst, e.Clock)
			dst = appendI64(dst, e.Variant)
			dst = appendI64(dst, e.Visibility)
			dst = appendI64(dst, e.SecondsPassed)
		} else {
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
			dst = appendI64(dst, 0)
		}
	}
	dst = appendI64(dst, int64(len(m.HistoryMatches)))

	return dst
}

func decodeMatchList(f []byte) (Body, error) {
	const want = 1000
	if len(f) != want {
		return nil, ErrTruncatedPayload
	}
	off := 0
	readField := func() int64 {
		v := readI64(f[off : off+8])
		off += 8
		return v
	}

	m := MatchList{
		HostColor:      readField(),
		HostClock:      readField(),
		HostVariant:    readField(),
		HostVisibility: readField(),
		HostPasscode:   readField(),
		IsHost:         readField() != 0,
	}

	public := make([]PublicMatchEntry, 0, MatchListSlots)
	for i := 0; i < MatchListSlots; i++ {
		public = append(public, PublicMatchEntry{
			Color:    readField(),
			Clock:    readField(),
			Variant:  readField(),
			Passcode: readField(),
		})
	}
	publicCount := readField()
	if publicCount < 0 || publicCount > MatchListSlots {
		return nil, ErrTruncatedPayload
	}
	m.PublicMatches = public[:publicCount]

	history := make([]HistoryMatchEntry, 0, MatchListSlots)
	for i := 0; i < MatchListSlots; i++ {
		history = append(history, HistoryMatchEntry{
			Status:        readField(),
			Clock:         readField(),
			Variant:       readField(),
			Visibility:    readField(),
			SecondsPassed: readField(),
		})
	}
	historyCount := readField()
	if historyCount < 0 || historyCount > MatchListSlots {
		return nil, ErrTruncatedPayload
	}
	m.HistoryMatches = history[:historyCount]

	return m, nil
}
