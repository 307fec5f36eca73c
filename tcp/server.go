package tcp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/nStangl/stophash/protocol"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type Server[M protocol.Message] struct {
	wg             sync.WaitGroup
	mu             sync.Mutex
	once           sync.Once
	quit           chan interface{}
	close          atomic.Bool
	conns          map[protocol.Protocol[M]]struct{}
	handler        HandleFunc[M]
	listener       *net.TCPListener
	closeFunc      CloseFunc
	gracefulFunc   CloseFunc
	connectFunc    ProtoFunc[M]
	disconnectFunc ProtoFunc[M]
	rejectFunc     ProtoFunc[M]
	protocolFunc   ProtocolProducerFunc[M]
	maxConns       int
}

var (
	ErrIncomplete   = errors.New("server needs a protocol and a handler")
	ErrTooManyConns = errors.New("too many connections")
	errClosing      = errors.New("server is closing")
)

func NewServer[M protocol.Message](address string, port int, options ...Option[M]) (*Server[M], error) {
	s := Server[M]{
		quit:  make(chan interface{}),
		conns: make(map[protocol.Protocol[M]]struct{}),
	}

	for _, o := range options {
		o(&s)
	}

	if s.protocolFunc == nil || s.handler == nil {
		return nil, ErrIncomplete
	}

	const typ = "tcp"

	hostport := net.JoinHostPort(address, strconv.Itoa(port))

	addr, err := net.ResolveTCPAddr(typ, hostport)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address %q: %w", hostport, err)
	}

	l, err := net.ListenTCP(typ, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on address %q: %w", addr, err)
	}

	s.listener = l

	return &s, nil
}

// Addr is the address actually listened on,
// useful when the server was created with port 0
func (s *Server[M]) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

func (s *Server[M]) Serve() (<-chan struct{}, <-chan error) {
	var (
		don = make(chan struct{})
		ers = make(chan error, 10)
	)

	go func() {
		defer close(don)
		defer close(ers)

		log.Info("server is listening for incoming connections on ", s.listener.Addr())

	outer:
		for {
			conn, err := s.listener.AcceptTCP()
			if err != nil {
				select {
				case <-s.quit:
					log.Info("server is shutting down")
					s.wg.Wait()
					break outer
				default:
					ers <- fmt.Errorf("failed to accept connection: %w", err)
				}

				continue
			}

			proto := s.protocolFunc(conn)

			if err := s.track(proto); err != nil {
				if errors.Is(err, ErrTooManyConns) {
					log.WithField("remote", proto.String()).Warn(err)

					if s.rejectFunc != nil {
						s.rejectFunc(proto)
					}
				}

				_ = proto.Close()
				continue
			}

			go func() {
				defer s.wg.Done()
				defer s.untrack(proto)

				if s.connectFunc != nil {
					s.connectFunc(proto)
				}

				s.handleConnection(proto)
			}()
		}

		if s.closeFunc != nil {
			if err := s.closeFunc(); err != nil {
				ers <- err
			}
		}
	}()

	return don, ers
}

// Close stops accepting connections and disconnects
// the connected clients. It is safe to call more than once.
func (s *Server[M]) Close() error {
	var err error

	s.once.Do(func() {
		if s.gracefulFunc != nil {
			if gerr := s.gracefulFunc(); gerr != nil {
				log.Errorf("failed to perform graceful shutdown: %v", gerr)
			}
		}

		s.mu.Lock()
		s.close.Store(true)
		close(s.quit)

		err = s.listener.Close()

		for p := range s.conns {
			if !p.Closed() {
				err = multierr.Append(err, p.Close())
			}
		}

		s.mu.Unlock()
	})

	return err
}

func (s *Server[M]) track(proto protocol.Protocol[M]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.close.Load() {
		return errClosing
	}

	if s.maxConns > 0 && len(s.conns) >= s.maxConns {
		return fmt.Errorf("%w: %d of %d", ErrTooManyConns, len(s.conns), s.maxConns)
	}

	s.wg.Add(1)
	s.conns[proto] = struct{}{}

	return nil
}

func (s *Server[M]) untrack(proto protocol.Protocol[M]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, proto)
}

func (s *Server[M]) handleConnection(proto protocol.Protocol[M]) {
	logger := log.WithField("remote", proto.String())
	logger.Info("handling connection")

	defer func() {
		if s.disconnectFunc != nil {
			s.disconnectFunc(proto)
		}

		if proto.Closed() {
			return
		}

		_ = proto.Close()
	}()

	// A failing handler only costs its own connection
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recovered from panic in handler: %v", r)
		}
	}()

	for {
		if s.close.Load() {
			logger.Info("disconnecting client due to server shutdown")
			return
		}

		if ok := s.handler(proto); !ok {
			return
		}
	}
}
