package hashtable

import (
	"errors"
	"fmt"

	"github.com/nStangl/stophash/util"
)

// This package defines a fixed-capacity hash table
// for string keys and values. Collisions are resolved by
// linear probing. The table never grows, shrinks or deletes,
// and it is not safe for concurrent use.

type (
	Table struct {
		capacity   int
		size       int
		collisions int
		slots      []Slot
		hasher     Hasher
		policy     DuplicatePolicy
	}

	// Iterates the occupied slots in index order
	Iterator struct {
		table *Table
		index int
	}
)

var (
	ErrInvalidKey      = errors.New("key invalid")
	ErrInvalidCapacity = errors.New("capacity invalid")
	ErrSlotOccupied    = errors.New("slot occupied")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrOutOfRange      = errors.New("range out of bounds")
	ErrUnknownHasher   = errors.New("unknown hasher")
	ErrUnknownPolicy   = errors.New("unknown duplicate policy")
)

func New(capacity int, options ...Option) (*Table, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	t := Table{
		capacity: capacity,
		slots:    make([]Slot, capacity),
		hasher:   Polynomial,
		policy:   ProbePast,
	}

	for _, o := range options {
		o(&t)
	}

	return &t, nil
}

// Hash returns the initial bucket of key, in [0, capacity).
// The empty string always lands in bucket 0.
func (t *Table) Hash(key string) int {
	if key == "" {
		return 0
	}

	return int(t.hasher(key) % uint64(t.capacity))
}

// Insert places the pair in the first empty slot of the probe
// sequence of key. It returns false with a nil error if all
// capacity slots were probed without finding room.
func (t *Table) Insert(key, value string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	var (
		inserted bool
		err      error
	)

	t.probe(key, func(probes, i int, s *Slot) bool {
		if s.IsEmpty() {
			if err = s.Set(key, value); err != nil {
				return false
			}

			if probes > 0 {
				t.collisions++
			}

			t.size++
			inserted = true

			return false
		}

		if s.key == key && t.policy == RejectDuplicate {
			err = fmt.Errorf("%w: %q in slot %d", ErrDuplicateKey, key, i)
			return false
		}

		return true
	})

	return inserted, err
}

// Search walks the same probe sequence as Insert and stops
// at the first empty slot, since nothing is ever deleted.
func (t *Table) Search(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	var (
		value string
		found bool
	)

	t.probe(key, func(_, _ int, s *Slot) bool {
		if s.IsEmpty() {
			return false
		}

		if s.key == key {
			value, found = s.value, true
			return false
		}

		return true
	})

	return value, found
}

// Dump copies the slots in [start, start+limit)
func (t *Table) Dump(start, limit int) ([]Slot, error) {
	if start < 0 || limit < 0 || start > t.capacity || limit > t.capacity-start {
		return nil, fmt.Errorf("%w: %d slots from %d of %d", ErrOutOfRange, limit, start, t.capacity)
	}

	out := make([]Slot, limit)
	copy(out, t.slots[start:start+limit])

	return out, nil
}

func (t *Table) Collisions() int { return t.collisions }

func (t *Table) Capacity() int { return t.capacity }

func (t *Table) Len() int { return t.size }

func (t *Table) LoadFactor() float64 {
	return float64(t.size) / float64(t.capacity)
}

func (t *Table) Iterator() *Iterator {
	return &Iterator{table: t, index: -1}
}

func (i *Iterator) Next() bool {
	for i.index++; i.index < i.table.capacity; i.index++ {
		if !i.table.slots[i.index].IsEmpty() {
			return true
		}
	}

	return false
}

// Index of the current slot
func (i *Iterator) Index() int { return i.index }

func (i *Iterator) Value() Slot { return i.table.slots[i.index] }

// probe visits start, start+1, ... (mod capacity) for at most
// capacity slots, until visit returns false. probes is the
// number of slots visited before the current one.
func (t *Table) probe(key string, visit func(probes, i int, s *Slot) bool) {
	start := t.Hash(key)

	for probes := 0; probes < t.capacity; probes++ {
		i := util.Modulo(start+probes, t.capacity)

		if !visit(probes, i, &t.slots[i]) {
			return
		}
	}
}
