package memtable

import (
	"fmt"

	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/server/hashtable"
)

type (
	// Adapts the linear probing hash table to Table
	Probing struct {
		table *hashtable.Table
	}

	ProbingIterator struct {
		iter *hashtable.Iterator
	}
)

var (
	_ Table    = (*Probing)(nil)
	_ Iterator = (*ProbingIterator)(nil)
)

func NewProbing(capacity int, options ...hashtable.Option) (*Probing, error) {
	t, err := hashtable.New(capacity, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create hash table: %w", err)
	}

	return &Probing{table: t}, nil
}

func (t *Probing) Name() string { return ProbingName }

// Underlying hash table, for introspection
func (t *Probing) Table() *hashtable.Table { return t.table }

func (t *Probing) Get(key string) data.Result {
	v, ok := t.table.Search(key)
	if !ok {
		return data.NotFound()
	}

	return data.Found(v)
}

func (t *Probing) Set(key, value string) error {
	ok, err := t.table.Insert(key, value)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: no room for %q in %d slots", ErrTableFull, key, t.table.Capacity())
	}

	return nil
}

func (t *Probing) Size() int { return t.table.Len() }

func (t *Probing) Iterator() Iterator {
	return &ProbingIterator{iter: t.table.Iterator()}
}

func (i *ProbingIterator) Next() bool { return i.iter.Next() }

func (i *ProbingIterator) Value() Element {
	s := i.iter.Value()

	return Element{Kind: data.Present, Key: s.Key(), Value: s.Value()}
}
