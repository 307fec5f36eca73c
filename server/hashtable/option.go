package hashtable

import (
	"fmt"

	"github.com/nStangl/stophash/util"
)

type (
	Option func(*Table)

	// What Insert does when it probes a slot holding the same key
	DuplicatePolicy uint8
)

const (
	// Keep probing past the existing key and store the pair
	// in the next empty slot. Search keeps returning the older value.
	ProbePast DuplicatePolicy = iota
	// Fail the insert with ErrDuplicateKey
	RejectDuplicate
)

var duplicatePolicyStr = []string{"probe_past", "reject"}

func (p DuplicatePolicy) String() string {
	return duplicatePolicyStr[p]
}

func WithHasher(h Hasher) Option {
	return func(t *Table) {
		if h != nil {
			t.hasher = h
		}
	}
}

func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(t *Table) {
		t.policy = p
	}
}

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	for i := range duplicatePolicyStr {
		if duplicatePolicyStr[i] == s {
			return DuplicatePolicy(i), nil
		}
	}

	return ProbePast, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Options resolves a hasher and a duplicate policy by their names
func Options(hasher, policy string) ([]Option, error) {
	h, err := HasherByName(hasher)
	if err != nil {
		return nil, err
	}

	p, err := ParseDuplicatePolicy(policy)
	if err != nil {
		return nil, err
	}

	return []Option{WithHasher(h), WithDuplicatePolicy(p)}, nil
}

// Capacity is n, or the next prime from n if prime is set
func Capacity(n int, prime bool) int {
	if prime {
		return util.NextPrime(n)
	}

	return n
}
