package tcp

import (
	"net"

	"github.com/nStangl/stophash/protocol"
)

type (
	Option[M protocol.Message] func(*Server[M])

	CloseFunc func() error

	// Called once per connection
	ProtoFunc[M protocol.Message] func(protocol.Protocol[M])

	// Handles at most one message. Returning false
	// ends the connection.
	HandleFunc[M protocol.Message] func(protocol.Protocol[M]) bool

	ProtocolProducerFunc[M protocol.Message] func(*net.TCPConn) protocol.Protocol[M]
)

func WithProtocol[M protocol.Message](proto ProtocolProducerFunc[M]) Option[M] {
	return func(s *Server[M]) {
		s.protocolFunc = proto
	}
}

func OnHandle[M protocol.Message](handleFunc HandleFunc[M]) Option[M] {
	return func(s *Server[M]) {
		s.handler = handleFunc
	}
}

// OnConnect runs before the first message of a connection is handled
func OnConnect[M protocol.Message](protoFunc ProtoFunc[M]) Option[M] {
	return func(s *Server[M]) {
		s.connectFunc = protoFunc
	}
}

func OnDisconnect[M protocol.Message](protoFunc ProtoFunc[M]) Option[M] {
	return func(s *Server[M]) {
		s.disconnectFunc = protoFunc
	}
}

// OnReject gets the connections turned away by WithMaxConns,
// right before they are closed
func OnReject[M protocol.Message](protoFunc ProtoFunc[M]) Option[M] {
	return func(s *Server[M]) {
		s.rejectFunc = protoFunc
	}
}

// WithMaxConns limits how many clients are served at once.
// Zero or less means no limit.
func WithMaxConns[M protocol.Message](n int) Option[M] {
	return func(s *Server[M]) {
		s.maxConns = n
	}
}

// OnShutdown runs after the last connection is done
func OnShutdown[M protocol.Message](closeFunc CloseFunc) Option[M] {
	return func(s *Server[M]) {
		s.closeFunc = closeFunc
	}
}

// OnGracefulShutdown runs when Close is called, before
// any connection is dropped
func OnGracefulShutdown[M protocol.Message](gracefulFunc CloseFunc) Option[M] {
	return func(s *Server[M]) {
		s.gracefulFunc = gracefulFunc
	}
}
