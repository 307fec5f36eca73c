package web

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/nStangl/stophash/protocol"
	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/memtable"
	"github.com/nStangl/stophash/server/store"
	"github.com/nStangl/stophash/tcp"
	log "github.com/sirupsen/logrus"
)

// PublicServer answers lookups against a loaded store
type PublicServer struct {
	id       uuid.UUID
	addr     *net.TCPAddr
	store    store.Store
	maxConns int
}

type proto = protocol.Protocol[protocol.ClientMessage]

const (
	// Largest window a single dump may ask for
	maxDump = 2 << 10
	// Longest request line, well past any key
	maxRequest = 2 << 9
)

var (
	ErrNotProbing   = errors.New("store is not backed by a probing table")
	ErrDumpTooLarge = errors.New("dump too large")
)

func NewPublicServer(cfg *Config, s store.Store) (*PublicServer, error) {
	hostport := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))

	addr, err := net.ResolveTCPAddr("tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address %q: %w", hostport, err)
	}

	return &PublicServer{id: uuid.New(), addr: addr, store: s, maxConns: cfg.MaxConns}, nil
}

func (s *PublicServer) ID() uuid.UUID {
	return s.id
}

func (s *PublicServer) Server() (*tcp.Server[protocol.ClientMessage], error) {
	return tcp.NewServer(
		s.addr.IP.String(), s.addr.Port,
		tcp.WithProtocol(protocol.ForClientWith(protocol.WithMaxLine(maxRequest))),
		tcp.WithMaxConns[protocol.ClientMessage](s.maxConns),
		tcp.OnHandle(s.OnHandle()),
		tcp.OnShutdown[protocol.ClientMessage](s.OnShutdown()),
		tcp.OnConnect(func(p proto) {
			if err := p.Send(protocol.NewClientMessage(protocol.Hello, s.id.String())); err != nil {
				log.Errorf("failed to write initial message to the client %s: %v", p, err)
			}
		}),
		tcp.OnReject(func(p proto) {
			_ = p.Send(protocol.NewClientMessage(protocol.Error, "server_busy"))
		}),
	)
}

func (s *PublicServer) OnHandle() tcp.HandleFunc[protocol.ClientMessage] {
	return func(p proto) bool {
		m, err := p.Receive()
		if err != nil {
			if errors.Is(err, protocol.ErrConnClosed) {
				log.Infof("client is disconnected: %s", p)
				return false
			}

			if errors.Is(err, protocol.ErrLineTooLong) {
				log.Warnf("dropping %s: %v", p, err)
				_ = p.Send(protocol.NewClientMessage(protocol.Error, "line_too_long"))
				return false
			}

			var o protocol.ClientMessage

			switch {
			case errors.Is(err, protocol.ErrGetError):
				o = protocol.NewClientMessage(protocol.GetError, "missing_key")
			case errors.Is(err, protocol.ErrDumpError):
				o = protocol.NewClientMessage(protocol.DumpError, "usage: dump <start> <limit>")
			default:
				o = protocol.NewClientMessage(protocol.Error, "invalid_input")
			}

			if err := p.Send(o); err != nil {
				log.Errorf("error when sending error reply: %v", err)
			}

			return true
		}

		if m == nil {
			return true
		}

		log.WithFields(log.Fields{"remote": p.String(), "msg": m.String()}).Debug("received message")

		switch m.Type {
		case protocol.Get:
			err = s.handleGet(p, m.Arg(0))
		case protocol.Collisions:
			err = s.handleCollisions(p)
		case protocol.Stats:
			err = s.handleStats(p)
		case protocol.Dump:
			err = s.handleDump(p, m)
		default:
			log.Warnf("received unexpected message %s from %s", m, p)
			err = p.Send(protocol.NewClientMessage(protocol.Error, "invalid_input"))
		}

		if err != nil {
			log.Errorf("error when replying to %s: %v", m.Type, err)
		}

		return true
	}
}

// This gets called once all clients are disconnected
func (s *PublicServer) OnShutdown() tcp.CloseFunc {
	return func() error {
		return s.probing(func(t *hashtable.Table) error {
			log.WithFields(log.Fields{
				"server":     s.id,
				"stored":     t.Len(),
				"collisions": t.Collisions(),
			}).Info("lookup server shut down")

			return nil
		})
	}
}

func (s *PublicServer) handleGet(p proto, key string) error {
	msg := protocol.NewClientMessage(protocol.GetError, key)

	if result, err := s.store.Get(key); err == nil {
		if result.Kind == data.Present {
			msg = protocol.NewClientMessage(protocol.GetSuccess, key, result.Value)
		}
	} else {
		log.Debugf("failed to get key %q: %v", key, err)
	}

	return p.Send(msg)
}

func (s *PublicServer) handleCollisions(p proto) error {
	var n int

	if err := s.probing(func(t *hashtable.Table) error {
		n = t.Collisions()
		return nil
	}); err != nil {
		return p.Send(protocol.NewClientMessage(protocol.Error, err.Error()))
	}

	return p.Send(protocol.NewClientMessage(protocol.CollisionsSuccess, strconv.Itoa(n)))
}

func (s *PublicServer) handleStats(p proto) error {
	var stats []string

	if err := s.probing(func(t *hashtable.Table) error {
		stats = []string{strconv.Itoa(t.Len()), strconv.Itoa(t.Capacity()), strconv.Itoa(t.Collisions())}
		return nil
	}); err != nil {
		return p.Send(protocol.NewClientMessage(protocol.Error, err.Error()))
	}

	return p.Send(protocol.NewClientMessage(protocol.StatsSuccess, stats...))
}

func (s *PublicServer) handleDump(p proto, m *protocol.ClientMessage) error {
	start, err := m.Int(0)
	if err != nil {
		return p.Send(protocol.NewClientMessage(protocol.DumpError, err.Error()))
	}

	limit, err := m.Int(1)
	if err != nil {
		return p.Send(protocol.NewClientMessage(protocol.DumpError, err.Error()))
	}

	if limit > maxDump {
		return p.Send(protocol.NewClientMessage(protocol.DumpError, fmt.Sprintf("%v: %d > %d", ErrDumpTooLarge, limit, maxDump)))
	}

	var slots []hashtable.Slot

	if err := s.probing(func(t *hashtable.Table) error {
		slots, err = t.Dump(start, limit)
		return err
	}); err != nil {
		return p.Send(protocol.NewClientMessage(protocol.DumpError, err.Error()))
	}

	if err := p.Send(protocol.NewClientMessage(protocol.DumpSuccess, strconv.Itoa(start), strconv.Itoa(limit))); err != nil {
		return err
	}

	for i, slot := range slots {
		args := []string{strconv.Itoa(start + i)}
		if !slot.IsEmpty() {
			args = append(args, slot.Key(), slot.Value())
		}

		if err := p.Send(protocol.NewClientMessage(protocol.Slot, args...)); err != nil {
			return err
		}
	}

	return nil
}

// probing runs fn with shared access to the hash table behind the store
func (s *PublicServer) probing(fn func(*hashtable.Table) error) error {
	return s.store.View(func(t memtable.Table) error {
		p, ok := t.(*memtable.Probing)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotProbing, t.Name())
		}

		return fn(p.Table())
	})
}
