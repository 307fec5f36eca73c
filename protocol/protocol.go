package protocol

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/nStangl/stophash/util"
)

type (
	// A generic interface representing
	// a message of some protocol
	Message interface {
		fmt.Stringer

		Bytes() []byte
	}

	// Parser for a given protocol
	ParserFunc[M Message] func(string) (M, error)

	Protocol[M Message] interface {
		fmt.Stringer

		Conn() *net.TCPConn
		Close() error
		Closed() bool
		Send(M) error
		Receive() (*M, error)
	}

	// Tunes how a connection is read
	Option func(*Scanner)

	// Implementation of a given protocol
	ProtocolImpl[M Message] struct {
		rmu, wmu sync.Mutex
		tag      string
		conn     *net.TCPConn
		closed   bool
		parser   ParserFunc[M]
		scanner  *Scanner
	}
)

var _ Protocol[ClientMessage] = (*ProtocolImpl[ClientMessage])(nil)

var (
	ErrConnClosed    = errors.New("conn_closed")
	ErrInvalidFormat = errors.New("message_format_invalid")
	ErrLineTooLong   = errors.New("line_too_long")
)

const dialTimeout = 5 * time.Second

// WithReadTimeout bounds a single read. Receive
// returns no message when it runs out.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxLine caps the length of one message in bytes.
// Receive fails with ErrLineTooLong past it.
func WithMaxLine(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

func New[M Message](conn *net.TCPConn, parser ParserFunc[M], options ...Option) *ProtocolImpl[M] {
	tag := conn.RemoteAddr().String()
	if h, p, err := util.ParseAddress(conn.RemoteAddr()); err == nil {
		tag = net.JoinHostPort(h, strconv.Itoa(p))
	}

	return &ProtocolImpl[M]{
		tag:     tag,
		conn:    conn,
		parser:  parser,
		scanner: NewScanner(conn, options...),
	}
}

func (c *ProtocolImpl[M]) String() string {
	return c.tag
}

func (c *ProtocolImpl[M]) Send(msg M) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := c.conn.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("failed to write to socket %v: %w", c.conn.RemoteAddr(), err)
	}

	return nil
}

func (c *ProtocolImpl[M]) Receive() (*M, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	r, err := c.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("scanning connection %v failed: %w", c.conn.RemoteAddr(), err)
	}

	switch r.Case {
	case DataBuffered:
		return nil, nil
	case ClientDisconnected:
		return nil, ErrConnClosed
	}

	m, err := c.parser(r.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message %q: %w", r.Token, err)
	}

	return &m, nil
}

func (c *ProtocolImpl[M]) Conn() *net.TCPConn {
	return c.conn
}

func (c *ProtocolImpl[M]) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	c.closed = true

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close conn to %s: %w", c.String(), err)
	}

	return nil
}

func (c *ProtocolImpl[M]) Closed() bool {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	return c.closed
}

// Connect dials the server at addr, given as host:port,
// and gives up after a few seconds
func Connect(addr string) (*net.TCPConn, error) {
	d := net.Dialer{Timeout: dialTimeout}

	c, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return c.(*net.TCPConn), nil
}
