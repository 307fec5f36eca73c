package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

type (
	// Message exchanged client <-> lookup server.
	// On the wire it is the type followed by its
	// arguments, separated by single spaces.
	// The last argument may contain spaces.
	ClientMessage struct {
		Type ClientType
		Args []string
	}

	ClientType uint8

	arity struct {
		min, max int
	}
)

const (
	Get ClientType = iota + 1
	GetSuccess
	GetError
	Collisions
	CollisionsSuccess
	Stats
	StatsSuccess
	Dump
	DumpSuccess
	DumpError
	// One slot of a dump, sent after dump_success
	Slot
	// Sent by the server right after accepting a connection
	Hello
	Error
)

var (
	ErrGetError  = errors.New("get_error")
	ErrDumpError = errors.New("dump_error")

	clientTypeKeys = [...]string{
		"get",
		"get_success",
		"get_error",
		"collisions",
		"collisions_success",
		"stats",
		"stats_success",
		"dump",
		"dump_success",
		"dump_error",
		"slot",
		"hello",
		"error",
	}

	clientTypeArity = [...]arity{
		{1, 1}, // get <key>
		{2, 2}, // get_success <key> <value>
		{1, 1}, // get_error <key>
		{0, 0}, // collisions
		{1, 1}, // collisions_success <n>
		{0, 0}, // stats
		{3, 3}, // stats_success <len> <capacity> <collisions>
		{2, 2}, // dump <start> <limit>
		{2, 2}, // dump_success <start> <limit>
		{1, 1}, // dump_error <reason>
		{1, 3}, // slot <index> [<key> <value>]
		{1, 1}, // hello <id>
		{1, 1}, // error <reason>
	}
)

func ForClient(conn *net.TCPConn) Protocol[ClientMessage] {
	return New(conn, parseClientMessage)
}

// ForClientWith is ForClient with the given read options
func ForClientWith(options ...Option) func(*net.TCPConn) Protocol[ClientMessage] {
	return func(conn *net.TCPConn) Protocol[ClientMessage] {
		return New(conn, parseClientMessage, options...)
	}
}

func NewClientMessage(t ClientType, args ...string) ClientMessage {
	return ClientMessage{Type: t, Args: args}
}

func (t ClientType) String() string {
	return clientTypeKeys[t-1]
}

func (m ClientMessage) String() string {
	return fmt.Sprintf("client(%s,%s)", m.Type, strings.Join(m.Args, ","))
}

func (m ClientMessage) Bytes() []byte {
	b := bytes.NewBuffer(make([]byte, 0, 32))

	b.WriteString(m.Type.String())

	for _, a := range m.Args {
		b.WriteRune(' ')
		b.WriteString(a)
	}

	b.WriteByte('\r')
	b.WriteByte('\n')

	return b.Bytes()
}

// Arg returns the i-th argument, or "" if there is none
func (m ClientMessage) Arg(i int) string {
	if i < len(m.Args) {
		return m.Args[i]
	}

	return ""
}

// Int parses the i-th argument as an integer
func (m ClientMessage) Int(i int) (int, error) {
	n, err := strconv.Atoi(m.Arg(i))
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d of %s is not a number", ErrInvalidFormat, i, m.Type)
	}

	return n, nil
}

func parseClientType(s string) (ClientType, bool) {
	for i := range clientTypeKeys {
		if clientTypeKeys[i] == s {
			return ClientType(i + 1), true
		}
	}

	return ClientType(0), false
}

func parseClientMessage(raw string) (ClientMessage, error) {
	name, rest, _ := strings.Cut(raw, " ")

	t, ok := parseClientType(name)
	if !ok {
		return ClientMessage{}, ErrInvalidFormat
	}

	var (
		msg = ClientMessage{Type: t}
		a   = clientTypeArity[t-1]
	)

	if rest != "" && a.max > 0 {
		msg.Args = strings.SplitN(rest, " ", a.max)
	}

	if n := len(msg.Args); n < a.min || n > a.max || (rest != "" && a.max == 0) {
		switch t {
		case Get:
			return msg, ErrGetError
		case Dump:
			return msg, ErrDumpError
		default:
			return msg, ErrInvalidFormat
		}
	}

	return msg, nil
}
