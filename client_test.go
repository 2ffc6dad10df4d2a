package rcon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/rcon/internal/testutils"
)

const testPassword = "hunter2"

func newTestClient(t *testing.T, cfg testutils.Config, opts ...Option) *Client {
	t.Helper()

	server := testutils.NewServer(t, cfg)
	host, port := server.HostPort(t)

	opts = append([]Option{WithTimeout(time.Second)}, opts...)
	client := NewClient(host, port, opts...)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientConnectAndAuthenticate(t *testing.T) {
	client := newTestClient(t, testutils.Config{Password: testPassword})

	require.NoError(t, client.Connect())
	assert.True(t, client.Connected())
	require.NoError(t, client.Authenticate(testPassword))
}

func TestClientAuthenticationRejected(t *testing.T) {
	client := newTestClient(t, testutils.Config{Password: testPassword})

	require.NoError(t, client.Connect())
	err := client.Authenticate("wrong")
	require.ErrorIs(t, err, ErrAuthFailed)

	// The session stays connected; the caller decides what to do next.
	assert.True(t, client.Connected())
}

func TestClientDisconnectedOperationsFail(t *testing.T) {
	client := NewClient("127.0.0.1", 25575)

	err := client.Authenticate("pw")
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = client.Command("list")
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestClientConnectRefused(t *testing.T) {
	client := NewClient("127.0.0.1", unusedPort(t), WithTimeout(time.Second))

	err := client.Connect()
	var connectErr *ConnectError
	require.ErrorAs(t, err, &connectErr)
	assert.False(t, client.Connected())
}

func TestClientCommandSingleResponse(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		Respond: func(cmd string) []string {
			if cmd == "list" {
				return []string{"There are 0 players online"}
			}
			return []string{""}
		},
	})

	require.NoError(t, client.Connect())
	require.NoError(t, client.Authenticate(testPassword))

	out, err := client.Command("list")
	require.NoError(t, err)
	assert.Equal(t, "There are 0 players online", out)
}

func TestClientCommandReassemblesFragments(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		Respond: func(cmd string) []string {
			return []string{"First part ", "Second part"}
		},
	})

	require.NoError(t, client.Connect())

	out, err := client.Command("bigoutput")
	require.NoError(t, err)
	assert.Equal(t, "First part Second part", out)
}

func TestClientCommandEmptyResponse(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		Respond: func(cmd string) []string { return []string{""} },
	})

	require.NoError(t, client.Connect())

	out, err := client.Command("save-all")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestClientCommandIgnoresUnrelatedIDs(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		NoiseID: 777,
		Respond: func(cmd string) []string { return []string{"real output"} },
	})

	require.NoError(t, client.Connect())

	out, err := client.Command("list")
	require.NoError(t, err)
	assert.Equal(t, "real output", out)
}

func TestClientCommandPartialResultOnTimeout(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		WithholdSentinel: true,
		Respond: func(cmd string) []string {
			return []string{"partial ", "output"}
		},
	}, WithTimeout(200*time.Millisecond))

	require.NoError(t, client.Connect())

	// The sentinel never arrives: the read times out and whatever
	// fragments were collected are returned without an error.
	out, err := client.Command("list")
	require.NoError(t, err)
	assert.Equal(t, "partial output", out)
	assert.Equal(t, uint64(1), client.Stats().PartialResponses)

	// The timeout is absorbed, not fatal: the session stays connected.
	assert.True(t, client.Connected())
}

func TestClientPeerClosedMidCommand(t *testing.T) {
	client := newTestClient(t, testutils.Config{CloseOnCommand: true})

	require.NoError(t, client.Connect())

	_, err := client.Command("list")
	require.Error(t, err)
	assert.True(t, IsConnectionLost(err))
	assert.False(t, IsTimeout(err))
	assert.False(t, client.Connected())

	// Fails fast once disconnected, no hang.
	_, err = client.Command("list")
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestClientCloseIdempotent(t *testing.T) {
	client := newTestClient(t, testutils.Config{})

	require.NoError(t, client.Connect())
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.False(t, client.Connected())
}

func TestClientStats(t *testing.T) {
	client := newTestClient(t, testutils.Config{
		Respond: func(cmd string) []string { return []string{"ok"} },
	})

	require.NoError(t, client.Connect())
	require.NoError(t, client.Authenticate(testPassword))

	_, err := client.Command("one")
	require.NoError(t, err)
	_, err = client.Command("two")
	require.NoError(t, err)

	stats := client.Stats()
	assert.Equal(t, uint64(2), stats.Commands)
	assert.Equal(t, uint64(1), stats.Auths)
	assert.NotZero(t, stats.BytesRead)
	assert.NotZero(t, stats.BytesWritten)
}

func TestConnectionLostErrorMessages(t *testing.T) {
	closed := &ConnectionLostError{Op: "read"}
	assert.Contains(t, closed.Error(), "closed by server")

	broken := &ConnectionLostError{Op: "write", Err: errors.New("broken pipe")}
	assert.Contains(t, broken.Error(), "connection lost")
	assert.Contains(t, broken.Error(), "broken pipe")
}
