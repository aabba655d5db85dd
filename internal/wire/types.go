// Package wire implements the length-prefixed binary framing and
// fixed-layout message codec used by the match protocol. It is pure and
// stateless: encoding and decoding never touch the network or the lobby.
package wire

import "errors"

// MessageType is the leading i64 tag of every frame payload.
type MessageType int64

const (
	TypeC2SGreet                MessageType = 1
	TypeS2CGreet                MessageType = 2
	TypeMatchCreateOrJoin       MessageType = 3
	TypeMatchCreateOrJoinResult MessageType = 4
	TypeMatchCancel             MessageType = 5
	TypeMatchCancelResult       MessageType = 6
	TypeMatchStart              MessageType = 7
	TypeOpponentLeft            MessageType = 9
	TypeForfeit                 MessageType = 10
	TypeAction                  MessageType = 11
	TypeMatchListRequest        MessageType = 12
	TypeMatchList               MessageType = 13
)

// Color values. The advertisement set (None/Random/White/Black) is used in
// CreateOrJoin and match list entries; the in-play set (White/Black) is
// used in MatchStart and Action. Both share the wire representation of a
// plain i64, so a single type serves both.
const (
	ColorNone   int64 = 0
	ColorRandom int64 = 1
	ColorWhite  int64 = 2
	ColorBlack  int64 = 3

	ColorInPlayWhite int64 = 0
	ColorInPlayBlack int64 = 1
)

// Clock values.
const (
	ClockNone   int64 = 0
	ClockNo     int64 = 1
	ClockShort  int64 = 2
	ClockMedium int64 = 3
	ClockLong   int64 = 4
)

// Visibility values.
const (
	VisibilityPublic  int64 = 1
	VisibilityPrivate int64 = 2
)

// Well-known Variant tags. Any other positive integer is accepted and
// passed through opaquely; the server never interprets variant semantics.
const (
	VariantStandard int64 = 1
	VariantRandom   int64 = 34
	VariantTurnZero int64 = 35
)

// ActionType values carried by type-11 Action frames.
const (
	ActionMove               int64 = 1
	ActionUndoMove           int64 = 2
	ActionSubmitMoves        int64 = 3
	ActionResetPuzzle        int64 = 4
	ActionDisplayCheckReason int64 = 5
	ActionHeader             int64 = 6
)

// HistoryStatus values carried by MatchList history entries.
const (
	HistoryCompleted  int64 = 0
	HistoryInProgress int64 = 1
)

// CreateOrJoin's sentinel: a passcode of -1 means "create a new match".
const PasscodeCreate int64 = -1

// Frame length bounds (body length, i.e. the value of the length prefix).
const (
	MinFrameLen = 9
	MaxFrameLen = 1008

	// MatchListSlots is the number of public-match and history-match
	// slots fixed into the MatchList wire layout.
	MatchListSlots = 13
)

var (
	ErrFrameTooShort    = errors.New("wire: frame length below minimum")
	ErrFrameTooLong     = errors.New("wire: frame length above maximum")
	ErrUnknownType      = errors.New("wire: unrecognized message type")
	ErrLengthMismatch   = errors.New("wire: length does not match message type")
	ErrTruncatedPayload = errors.New("wire: truncated frame payload")
)

// Body is implemented by every concrete message payload.
type Body interface {
	// Type returns this message's wire type tag.
	Type() MessageType

	// marshalFields appends this message's fields (everything after the
	// type tag) to dst in wire order and returns the result.
	marshalFields(dst []byte) []byte
}

// bodyLen returns the fixed wire length (the value carried in the length
// prefix) for a given message type, or ok=false if the type is unknown.
func bodyLen(t MessageType) (n int, ok bool) {
	switch t {
	case TypeC2SGreet:
		return 56, true
	case TypeS2CGreet:
		return 56, true
	case TypeMatchCreateOrJoin:
		return 48, true
	case TypeMatchCreateOrJoinResult:
		return 64, true
	case TypeMatchCancel:
		return 9, true
	case TypeMatchCancelResult:
		return 16, true
	case TypeMatchStart:
		return 48, true
	case TypeOpponentLeft:
		return 9, true
	case TypeForfeit:
		return 9, true
	case TypeAction:
		return 112, true
	case TypeMatchListRequest:
		return 9, true
	case TypeMatchList:
		return 1008, true
	default:
		return 0, false
	}
}
