package wire

import (
	"encoding/binary"
	"io"
)

// ReadFrame reads one length-prefixed frame from r and decodes it into a
// typed Body. It blocks until a full frame has arrived, the connection is
// closed, or the frame violates the length bounds or per-type layout.
//
// Reads use io.ReadFull rather than a single Read call because a TCP
// stream may deliver a frame across several kernel reads; a short read
// must never be mistaken for a short frame.
func ReadFrame(r io.Reader) (Body, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint64(lenBuf[:])
	if length < MinFrameLen {
		return nil, ErrFrameTooShort
	}
	if length > MaxFrameLen {
		return nil, ErrFrameTooLong
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if len(payload) < 8 {
		return nil, ErrTruncatedPayload
	}
	typ := MessageType(int64(binary.LittleEndian.Uint64(payload[:8])))

	want, ok := bodyLen(typ)
	if !ok {
		return nil, ErrUnknownType
	}
	if uint64(want) != length {
		return nil, ErrLengthMismatch
	}

	return decode(typ, payload[8:])
}

// WriteFrame encodes body and writes the length-prefixed frame to w in a
// single Write call, matching the one-syscall-per-message shape of the
// protocol's framing.
func WriteFrame(w io.Writer, body Body) error {
	typ := body.Type()
	want, ok := bodyLen(typ)
	if !ok {
		return ErrUnknownType
	}

	buf := make([]byte, 8, 8+want)
	binary.LittleEndian.PutUint64(buf[:8], uint64(want))

	fields := make([]byte, 0, want)
	fields = appendI64(fields, int64(typ))
	fields = body.marshalFields(fields)
	if len(fields) != want {
		// A mismatch here is a programmer error in a Body implementation,
		// not a wire error; it would corrupt framing for every message
		// that follows, so fail loudly rather than send a short frame.
		panic("wire: body.marshalFields produced wrong length for " + typ.String())
	}
	buf = append(buf, fields...)

	_, err := w.Write(buf)
	return err
}

func appendI64(dst []byte, v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func readI64(src []byte) int64 {
	return int64(binary.LittleEndian.Uint64(src))
}

func readU64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

func decode(typ MessageType, fields []byte) (Body, error) {
	switch typ {
	case TypeC2SGreet:
		return decodeGreet(fields)
	case TypeS2CGreet:
		return decodeServerGreet(fields)
	case TypeMatchCreateOrJoin:
		return decodeCreateOrJoin(fields)
	case TypeMatchCreateOrJoinResult:
		return decodeCreateOrJoinResult(fields)
	case TypeMatchCancel:
		return MatchCancel{}, nil
	case TypeMatchCancelResult:
		return decodeMatchCancelResult(fields)
	case TypeMatchStart:
		return decodeMatchStart(fields)
	case TypeOpponentLeft:
		return OpponentLeft{}, nil
	case TypeForfeit:
		return Forfeit{}, nil
	case TypeAction:
		return decodeAction(fields)
	case TypeMatchListRequest:
		return MatchListRequest{}, nil
	case TypeMatchList:
		return decodeMatchList(fields)
	default:
		return nil, ErrUnknownType
	}
}

func (t MessageType) String() string {
	switch t {
	case TypeC2SGreet:
		return "C2SGreet"
	case TypeS2CGreet:
		return "S2CGreet"
	case TypeMatchCreateOrJoin:
		return "C2SMatchCreateOrJoin"
	case TypeMatchCreateOrJoinResult:
		return "S2CMatchCreateOrJoinResult"
	case TypeMatchCancel:
		return "C2SMatchCancel"
	case TypeMatchCancelResult:
		return "S2CMatchCancelResult"
	case TypeMatchStart:
		return "S2CMatchStart"
	case TypeOpponentLeft:
		return "S2COpponentLeft"
	case TypeForfeit:
		return "C2SForfeit"
	case TypeAction:
		return "Action"
	case TypeMatchListRequest:
		return "C2SMatchListRequest"
	case TypeMatchList:
		return "S2CMatchList"
	default:
		return "Unknown"
	}
}
