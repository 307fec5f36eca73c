package memtable

import (
	"errors"
	"fmt"

	"github.com/nStangl/stophash/server/data"
)

// This package defines the containers the
// probing hash table is measured against.
// All of them share the same small interface
// so the harness and the store can swap them.

type (
	Table interface {
		Sizable
		Iterable

		Name() string
		Get(string) data.Result
		Set(string, string) error
	}

	Sizable interface {
		Size() int
	}

	Iterable interface {
		Iterator() Iterator
	}

	Iterator interface {
		Next() bool
		Value() Element
	}

	Element struct {
		Kind  data.ResultKind
		Key   string
		Value string
	}

	// Builds a fresh, empty table
	Factory func() (Table, error)
)

const (
	MapName     = "map"
	RBTreeName  = "rbtree"
	ProbingName = "probing"
)

var (
	ErrTableFull        = errors.New("table full")
	ErrUnknownContainer = errors.New("unknown container")
)

// Names of all the containers, the probing table last
var Names = []string{MapName, RBTreeName, ProbingName}

// FactoryFor returns a Factory for the named container.
// The probing table is created with newProbing.
func FactoryFor(name string, newProbing func() (*Probing, error)) (Factory, error) {
	switch name {
	case MapName:
		return func() (Table, error) { return NewMap(), nil }, nil
	case RBTreeName:
		return func() (Table, error) { return NewRedBlackTree(), nil }, nil
	case ProbingName:
		return func() (Table, error) {
			p, err := newProbing()
			if err != nil {
				return nil, err
			}

			return p, nil
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, name)
}
