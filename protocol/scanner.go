package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/nStangl/stophash/util"
)

type (
	Scanner struct {
		buf     *bytes.Buffer
		conn    *net.TCPConn
		tokens  []string
		timeout time.Duration
		maxLine int
	}

	ScanResult struct {
		Case  ScanCase
		Token string
	}

	ScanCase uint8
)

const (
	DataAvailable ScanCase = iota + 1
	DataBuffered
	ClientDisconnected
)

const (
	defaultTimeout = 15 * time.Second
	defaultMaxLine = 2 << 12
	chunkSz        = 2 << 10
)

func NewScanner(conn *net.TCPConn, options ...Option) *Scanner {
	s := Scanner{
		conn:    conn,
		timeout: defaultTimeout,
		maxLine: defaultMaxLine,
	}

	for _, o := range options {
		o(&s)
	}

	s.buf = bytes.NewBuffer(make([]byte, 0, util.Min(s.maxLine, defaultMaxLine)))

	return &s
}

func (s *Scanner) Scan() (ScanResult, error) {
	if len(s.tokens) > 0 {
		var t string
		t, s.tokens = s.tokens[0], s.tokens[1:]
		return ScanResult{Case: DataAvailable, Token: t}, nil
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return ScanResult{Case: ClientDisconnected}, nil
	}

	data := make([]byte, chunkSz)

	n, err := s.conn.Read(data)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ScanResult{Case: ClientDisconnected}, nil
		} else if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return ScanResult{Case: DataBuffered}, nil
		}

		return ScanResult{Case: ClientDisconnected}, nil
	}

	if err := s.split(data[:n]); err != nil {
		s.buf.Reset()
		return ScanResult{}, err
	}

	if len(s.tokens) > 0 {
		var t string
		t, s.tokens = s.tokens[0], s.tokens[1:]

		return ScanResult{Case: DataAvailable, Token: t}, nil
	}

	return ScanResult{Case: DataBuffered}, nil
}

// split cuts data into lines ending in \n or \r\n.
// Blank lines are dropped, the unterminated rest stays buffered.
func (s *Scanner) split(data []byte) error {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			s.buf.Write(data)
			return s.checkLine()
		}

		s.buf.Write(data[:i])
		data = data[i+1:]

		if err := s.checkLine(); err != nil {
			return err
		}

		if t := strings.TrimSuffix(s.buf.String(), "\r"); t != "" {
			s.tokens = append(s.tokens, t)
		}

		s.buf.Reset()
	}
}

func (s *Scanner) checkLine() error {
	if s.buf.Len() > s.maxLine {
		return fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, s.maxLine)
	}

	return nil
}
