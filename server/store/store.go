package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/server/memtable"
)

// The containers are not safe for concurrent use,
// the store serializes every access to them.

type (
	Store interface {
		Get(string) (data.Result, error)
		Set(string, string) error
		View(func(memtable.Table) error) error

		Flatten() (map[string]string, error)
	}

	StoreImpl struct {
		mu       sync.RWMutex
		memtable memtable.Table
	}
)

const (
	keySz   = 2 << 8
	valueSz = 2 << 16
)

var _ Store = (*StoreImpl)(nil)

var (
	ErrKeyInvalid   = errors.New("key invalid")
	ErrValueTooLong = errors.New("value too long")
)

func New(table memtable.Table) *StoreImpl {
	return &StoreImpl{memtable: table}
}

func (s *StoreImpl) Get(key string) (data.Result, error) {
	if len(key) == 0 || len(key) > keySz {
		return data.Result{}, ErrKeyInvalid
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.memtable.Get(key), nil
}

func (s *StoreImpl) Set(key, value string) error {
	if len(key) == 0 || len(key) > keySz {
		return ErrKeyInvalid
	}

	if len(value) > valueSz {
		return ErrValueTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.memtable.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %q in %s: %w", key, s.memtable.Name(), err)
	}

	return nil
}

// View runs fn with shared access to the
// underlying table, fn must not mutate it
func (s *StoreImpl) View(fn func(memtable.Table) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(s.memtable)
}

func (s *StoreImpl) Flatten() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db := make(map[string]string, s.memtable.Size())

	t := s.memtable.Iterator()

	for t.Next() {
		v := t.Value()

		if v.Kind != data.Present {
			continue
		}

		// Duplicate keys resolve to what a lookup returns
		if _, ok := db[v.Key]; !ok {
			db[v.Key] = s.memtable.Get(v.Key).Value
		}
	}

	return db, nil
}
