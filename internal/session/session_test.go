package session

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/wire"
)

func testLobby() *lobby.Lobby {
	return lobby.New(lobby.Config{Variants: []int64{1}, OpenPublicCapacity: 13, HistoryCapacity: 13}, nil, nil)
}

func newPairedClient(t *testing.T, l *lobby.Lobby, registry *Registry) net.Conn {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	logger := log.New(io.Discard)
	sess := New(serverConn, l, registry, logger, Config{RelayBufferSize: 4})
	go sess.Run()

	require.NoError(t, wire.WriteFrame(clientConn, wire.Greet{Version1: 11, Version2: 16}))
	body, err := wire.ReadFrame(clientConn)
	require.NoError(t, err)
	require.IsType(t, wire.ServerGreet{}, body)
	return clientConn
}

func TestGreetHandshake(t *testing.T) {
	l := testLobby()
	registry := NewRegistry()
	client := newPairedClient(t, l, registry)
	defer client.Close()

	require.Eventually(t, func() bool { return registry.Count() == 1 }, time.Second, time.Millisecond)
}

func TestCreateThenMatchList(t *testing.T) {
	l := testLobby()
	client := newPairedClient(t, l, NewRegistry())
	defer client.Close()

	require.NoError(t, wire.WriteFrame(client, wire.CreateOrJoin{
		Color: wire.ColorRandom, Clock: wire.ClockNo, Variant: wire.VariantStandard,
		Visibility: wire.VisibilityPublic, Passcode: wire.PasscodeCreate,
	}))
	body, err := wire.ReadFrame(client)
	require.NoError(t, err)
	res := body.(wire.CreateOrJoinResult)
	require.Equal(t, wire.CreateOrJoinResultOK, res.Result)
	require.NotZero(t, res.Passcode)

	require.NoError(t, wire.WriteFrame(client, wire.MatchListRequest{}))
	body, err = wire.ReadFrame(client)
	require.NoError(t, err)
	list := body.(wire.MatchList)
	require.True(t, list.IsHost)
	require.Equal(t, res.Passcode, list.HostPasscode)
	require.Len(t, list.PublicMatches, 1)
}

func TestJoinPairsAndRelaysActions(t *testing.T) {
	l := testLobby()
	registry := NewRegistry()
	host := newPairedClient(t, l, registry)
	defer host.Close()
	joiner := newPairedClient(t, l, registry)
	defer joiner.Close()

	require.NoError(t, wire.WriteFrame(host, wire.CreateOrJoin{
		Color: wire.ColorWhite, Clock: wire.ClockShort, Variant: wire.VariantStandard,
		Visibility: wire.VisibilityPrivate, Passcode: wire.PasscodeCreate,
	}))
	body, err := wire.ReadFrame(host)
	require.NoError(t, err)
	hostRes := body.(wire.CreateOrJoinResult)

	require.NoError(t, wire.WriteFrame(joiner, wire.CreateOrJoin{
		Passcode: hostRes.Passcode,
	}))
	body, err = wire.ReadFrame(joiner)
	require.NoError(t, err)
	joinRes := body.(wire.CreateOrJoinResult)
	require.Equal(t, wire.CreateOrJoinResultOK, joinRes.Result)

	body, err = wire.ReadFrame(joiner)
	require.NoError(t, err)
	joinerStart := body.(wire.MatchStart)

	body, err = wire.ReadFrame(host)
	require.NoError(t, err)
	hostStart := body.(wire.MatchStart)
	require.Equal(t, joinerStart.MatchID, hostStart.MatchID)
	require.NotEqual(t, joinerStart.Color, hostStart.Color)
	require.Equal(t, uint64(1), hostStart.MessageID)
	require.Equal(t, uint64(1), joinerStart.MessageID)

	require.NoError(t, wire.WriteFrame(joiner, wire.Action{
		ActionType: wire.ActionMove, SrcX: 4, SrcY: 1, DstX: 4, DstY: 3,
	}))
	body, err = wire.ReadFrame(host)
	require.NoError(t, err)
	relayed := body.(wire.Action)
	require.Equal(t, wire.ActionMove, relayed.ActionType)
	require.Equal(t, int64(4), relayed.DstX)
	require.Equal(t, uint64(2), relayed.MessageID)

	require.NoError(t, wire.WriteFrame(joiner, wire.Forfeit{}))
	body, err = wire.ReadFrame(host)
	require.NoError(t, err)
	require.IsType(t, wire.OpponentLeft{}, body)
}

func TestCancelHosting(t *testing.T) {
	l := testLobby()
	client := newPairedClient(t, l, NewRegistry())
	defer client.Close()

	require.NoError(t, wire.WriteFrame(client, wire.CreateOrJoin{
		Variant: wire.VariantStandard, Visibility: wire.VisibilityPublic, Passcode: wire.PasscodeCreate,
	}))
	_, err := wire.ReadFrame(client)
	require.NoError(t, err)

	require.NoError(t, wire.WriteFrame(client, wire.MatchCancel{}))
	body, err := wire.ReadFrame(client)
	require.NoError(t, err)
	require.Equal(t, wire.MatchCancelOK, body.(wire.MatchCancelResult).Result)
}
