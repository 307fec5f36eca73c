package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nStangl/stophash/protocol"
	"github.com/nStangl/stophash/server/data"
	"go.uber.org/multierr"
)

type (
	Client interface {
		ID() string
		Get(key string) (data.Result, error)
		Collisions() (int, error)
		Stats() (Stats, error)
		Dump(start, limit int) ([]Entry, error)
		Close() error
	}

	ClientImpl struct {
		id    string
		addr  string
		proto protocol.Protocol[protocol.ClientMessage]
	}

	Stats struct {
		Len        int
		Capacity   int
		Collisions int
	}

	// One slot of a dump
	Entry struct {
		Index int
		Empty bool
		Key   string
		Value string
	}
)

var _ Client = (*ClientImpl)(nil)

var ErrDumpRejected = errors.New("dump rejected")

// Dial connects to the lookup server at addr
// and waits for its greeting
func Dial(addr string) (*ClientImpl, error) {
	conn, err := protocol.Connect(addr)
	if err != nil {
		return nil, err
	}

	c := ClientImpl{addr: addr, proto: protocol.ForClient(conn)}

	m, err := c.proto.Receive()
	if err == nil {
		err = validateClientResponse(m, protocol.Hello)
	}

	if err != nil {
		_ = c.proto.Close()
		return nil, fmt.Errorf("failed to receive greeting from %s: %w", addr, err)
	}

	c.id = m.Arg(0)

	return &c, nil
}

// ID of the server, as sent in its greeting
func (c *ClientImpl) ID() string { return c.id }

func (c *ClientImpl) String() string { return c.addr }

func (c *ClientImpl) Get(key string) (data.Result, error) {
	if key == "" || strings.ContainsAny(key, "\r\n") {
		return data.Result{}, fmt.Errorf("%w: key %q", ErrInvalidInput, key)
	}

	m, err := c.roundTrip(protocol.NewClientMessage(protocol.Get, key), validateGetResponse)
	if err != nil {
		return data.Result{}, err
	}

	if m.Type == protocol.GetError {
		return data.NotFound(), nil
	}

	return data.Found(m.Arg(1)), nil
}

func (c *ClientImpl) Collisions() (int, error) {
	m, err := c.roundTrip(protocol.NewClientMessage(protocol.Collisions), validateCollisionsResponse)
	if err != nil {
		return 0, err
	}

	return m.Int(0)
}

func (c *ClientImpl) Stats() (Stats, error) {
	m, err := c.roundTrip(protocol.NewClientMessage(protocol.Stats), validateStatsResponse)
	if err != nil {
		return Stats{}, err
	}

	var (
		s    Stats
		errs error
	)

	for i, p := range []*int{&s.Len, &s.Capacity, &s.Collisions} {
		if *p, err = m.Int(i); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return s, errs
}

func (c *ClientImpl) Dump(start, limit int) ([]Entry, error) {
	m, err := c.roundTrip(protocol.NewClientMessage(protocol.Dump, fmt.Sprint(start), fmt.Sprint(limit)), validateDumpResponse)
	if err != nil {
		return nil, err
	}

	if m.Type == protocol.DumpError {
		return nil, fmt.Errorf("%w: %s", ErrDumpRejected, m.Arg(0))
	}

	// The server echoes the window it is about to send
	from, err := m.Int(0)
	if err != nil {
		return nil, err
	}

	n, err := m.Int(1)
	if err != nil {
		return nil, err
	}

	if from != start || n != limit {
		return nil, fmt.Errorf("%w: asked for %d slots from %d, got %s", ErrUnexpected, limit, start, m)
	}

	entries := make([]Entry, 0, n)

	for i := 0; i < n; i++ {
		s, err := c.receive()
		if err == nil {
			err = validateClientResponse(s, protocol.Slot)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to receive slot %d of %d: %w", i, n, err)
		}

		idx, err := s.Int(0)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Index: idx,
			Empty: len(s.Args) == 1,
			Key:   s.Arg(1),
			Value: s.Arg(2),
		})
	}

	return entries, nil
}

func (c *ClientImpl) Close() error {
	return c.proto.Close()
}

func (c *ClientImpl) roundTrip(req protocol.ClientMessage, validate func(*protocol.ClientMessage) error) (*protocol.ClientMessage, error) {
	if err := c.proto.Send(req); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", req.Type, err)
	}

	m, err := c.receive()
	if err != nil {
		return nil, err
	}

	if err := validate(m); err != nil {
		return nil, fmt.Errorf("invalid reply to %s: %w", req.Type, err)
	}

	return m, nil
}

func (c *ClientImpl) receive() (*protocol.ClientMessage, error) {
	m, err := c.proto.Receive()
	if err != nil {
		return nil, fmt.Errorf("failed to receive from %s: %w", c.addr, err)
	}

	if m == nil {
		return nil, ErrNoReply
	}

	return m, nil
}
