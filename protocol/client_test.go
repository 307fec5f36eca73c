package protocol

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientMessage(t *testing.T) {
	for raw, expected := range map[string]ClientMessage{
		"get 10036":                          NewClientMessage(Get, "10036"),
		"get_success 10036 Central Station":  NewClientMessage(GetSuccess, "10036", "Central Station"),
		"get_success 10036 ":                 NewClientMessage(GetSuccess, "10036", ""),
		"get_error 10036":                    NewClientMessage(GetError, "10036"),
		"collisions":                         NewClientMessage(Collisions),
		"collisions_success 12":              NewClientMessage(CollisionsSuccess, "12"),
		"stats":                              NewClientMessage(Stats),
		"stats_success 3 5003 1":             NewClientMessage(StatsSuccess, "3", "5003", "1"),
		"dump 20 25":                         NewClientMessage(Dump, "20", "25"),
		"dump_success 20 25":                 NewClientMessage(DumpSuccess, "20", "25"),
		"dump_error range out of bounds":     NewClientMessage(DumpError, "range out of bounds"),
		"slot 21":                            NewClientMessage(Slot, "21"),
		"slot 21 10036 Central Station":      NewClientMessage(Slot, "21", "10036", "Central Station"),
		"hello 0b1d6c1e-5f0c-4c4e-a8a5-0c4b": NewClientMessage(Hello, "0b1d6c1e-5f0c-4c4e-a8a5-0c4b"),
		"error invalid_input":                NewClientMessage(Error, "invalid_input"),
	} {
		m, err := parseClientMessage(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, m, raw)
	}
}

func TestParseClientMessageInvalid(t *testing.T) {
	for raw, expected := range map[string]error{
		"":                 ErrInvalidFormat,
		"put 1 2":          ErrInvalidFormat,
		"get":              ErrGetError,
		"dump 20":          ErrDumpError,
		"collisions now":   ErrInvalidFormat,
		"stats_success 1":  ErrInvalidFormat,
		"get_success only": ErrInvalidFormat,
	} {
		_, err := parseClientMessage(raw)
		assert.ErrorIs(t, err, expected, raw)
	}
}

func TestClientMessageBytes(t *testing.T) {
	for _, m := range []ClientMessage{
		NewClientMessage(Stats),
		NewClientMessage(GetSuccess, "10036", "Central Station"),
		NewClientMessage(GetSuccess, "10036", ""),
		NewClientMessage(Slot, "7"),
	} {
		b := m.Bytes()
		require.Equal(t, "\r\n", string(b[len(b)-2:]))

		p, err := parseClientMessage(string(b[:len(b)-2]))
		require.NoError(t, err)
		assert.Equal(t, m, p)
	}

	assert.Equal(t, "dump 1 2\r\n", string(NewClientMessage(Dump, "1", "2").Bytes()))
}

func TestClientMessageArgs(t *testing.T) {
	m := NewClientMessage(StatsSuccess, "3", "x")

	n, err := m.Int(0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = m.Int(1)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	assert.Equal(t, "", m.Arg(5))
	_, err = m.Int(5)
	assert.Error(t, err)
}

// Connects a client to a server side read with options
func pair(t *testing.T, options ...Option) (*net.TCPConn, Protocol[ClientMessage], Protocol[ClientMessage]) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	defer l.Close()

	accepted := make(chan *net.TCPConn, 1)

	go func() {
		c, err := l.AcceptTCP()
		if err != nil {
			close(accepted)
			return
		}

		accepted <- c
	}()

	conn, err := Connect(l.Addr().String())
	require.NoError(t, err)

	client := ForClient(conn)
	t.Cleanup(func() { _ = client.Close() })

	sc, ok := <-accepted
	require.True(t, ok)

	server := ForClientWith(options...)(sc)
	t.Cleanup(func() { _ = server.Close() })

	return conn, client, server
}

func TestProtocolRoundTrip(t *testing.T) {
	conn, client, server := pair(t)

	// Two messages in one write, the second split across lines
	_, err := conn.Write([]byte("get 10036\nstats\r\n\r\n"))
	require.NoError(t, err)

	m, err := server.Receive()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, NewClientMessage(Get, "10036"), *m)

	m, err = server.Receive()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, NewClientMessage(Stats), *m)

	require.NoError(t, server.Send(NewClientMessage(GetSuccess, "10036", "Central Station")))

	m, err = client.Receive()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, NewClientMessage(GetSuccess, "10036", "Central Station"), *m)

	require.NoError(t, client.Close())
	assert.True(t, client.Closed())

	_, err = server.Receive()
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestReceiveLineTooLong(t *testing.T) {
	conn, _, server := pair(t, WithMaxLine(16), WithReadTimeout(time.Second))

	_, err := conn.Write([]byte("get 10036\r\n"))
	require.NoError(t, err)

	m, err := server.Receive()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, NewClientMessage(Get, "10036"), *m)

	// Unterminated, so it can only grow
	_, err = conn.Write([]byte("get " + strings.Repeat("x", 32)))
	require.NoError(t, err)

	for {
		m, err = server.Receive()
		if err != nil || m != nil {
			break
		}
	}

	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestConnectFails(t *testing.T) {
	// Nothing listens on port 1
	_, err := Connect("127.0.0.1:1")
	assert.Error(t, err)

	_, err = Connect("not an address")
	assert.Error(t, err)
}
