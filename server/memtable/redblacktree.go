package memtable

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/nStangl/stophash/server/data"
)

type (
	RedBlackTree struct {
		tree *redblacktree.Tree
	}

	RedBlackTreeIterator struct {
		iter redblacktree.Iterator
	}
)

var (
	_ Table    = (*RedBlackTree)(nil)
	_ Iterator = (*RedBlackTreeIterator)(nil)
)

func NewRedBlackTree() *RedBlackTree {
	return &RedBlackTree{tree: redblacktree.NewWithStringComparator()}
}

func (t *RedBlackTree) Name() string { return RBTreeName }

func (t *RedBlackTree) Get(key string) data.Result {
	v, ok := t.tree.Get(key)
	if !ok {
		return data.NotFound()
	}

	return data.Found(v.(string))
}

// Set overwrites, a tree never runs out of room
func (t *RedBlackTree) Set(key, value string) error {
	t.tree.Put(key, value)
	return nil
}

func (t *RedBlackTree) Size() int { return t.tree.Size() }

func (t *RedBlackTree) Iterator() Iterator {
	return &RedBlackTreeIterator{iter: t.tree.Iterator()}
}

func (t *RedBlackTreeIterator) Next() bool { return t.iter.Next() }

func (t *RedBlackTreeIterator) Value() Element {
	return Element{
		Kind:  data.Present,
		Key:   t.iter.Key().(string),
		Value: t.iter.Value().(string),
	}
}
