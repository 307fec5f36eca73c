package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// A transit stop record. Code is the key
// and Name the value stored in the tables.
type Stop struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	ErrInvalidField = errors.New("field invalid")
	ErrMissingCode  = errors.New("code missing")
)

func (s Stop) String() string {
	return fmt.Sprintf("(%q, %q)", s.Code, s.Name)
}

// UnmarshalJSON accepts codes and names given
// either as JSON strings or as JSON numbers
func (s *Stop) UnmarshalJSON(b []byte) error {
	var raw struct {
		Code json.RawMessage `json:"code"`
		Name json.RawMessage `json:"name"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	code, err := scalar(raw.Code)
	if err != nil {
		return fmt.Errorf("code: %w", err)
	}

	name, err := scalar(raw.Name)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}

	s.Code, s.Name = code, name

	return nil
}

func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidField, raw)
	}

	return n.String(), nil
}
