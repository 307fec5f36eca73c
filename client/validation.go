package client

import (
	"errors"
	"fmt"

	"github.com/nStangl/stophash/protocol"
)

var (
	ErrInvalidInput = errors.New("invalid format")
	ErrNoReply      = errors.New("received null data")
	ErrUnexpected   = errors.New("unexpected reply")
)

func ValidateInput(in []string, n int) error {
	if len(in) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidInput, n-1, len(in)-1)
	}
	return nil
}

func validateGetResponse(resp *protocol.ClientMessage) error {
	return validateClientResponse(resp, protocol.GetSuccess, protocol.GetError)
}

func validateCollisionsResponse(resp *protocol.ClientMessage) error {
	return validateClientResponse(resp, protocol.CollisionsSuccess)
}

func validateStatsResponse(resp *protocol.ClientMessage) error {
	return validateClientResponse(resp, protocol.StatsSuccess)
}

func validateDumpResponse(resp *protocol.ClientMessage) error {
	return validateClientResponse(resp, protocol.DumpSuccess, protocol.DumpError)
}

// validateClientResponse checks that resp is one of the expected
// reply types. An error reply from the server becomes an error.
func validateClientResponse(resp *protocol.ClientMessage, expected ...protocol.ClientType) error {
	if resp == nil {
		return ErrNoReply
	}

	for _, e := range expected {
		if resp.Type == e {
			return nil
		}
	}

	if resp.Type == protocol.Error {
		return fmt.Errorf("server replied with error: %s", resp.Arg(0))
	}

	return fmt.Errorf("%w %s, expected one of %v", ErrUnexpected, resp, expected)
}
