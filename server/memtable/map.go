package memtable

import (
	"github.com/nStangl/stophash/server/data"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// The builtin map, used as the baseline
	Map struct {
		m map[string]string
	}

	MapIterator struct {
		m    map[string]string
		keys []string
		pos  int
	}
)

var (
	_ Table    = (*Map)(nil)
	_ Iterator = (*MapIterator)(nil)
)

func NewMap() *Map {
	return &Map{m: make(map[string]string)}
}

func (t *Map) Name() string { return MapName }

func (t *Map) Get(key string) data.Result {
	v, ok := t.m[key]
	if !ok {
		return data.NotFound()
	}

	return data.Found(v)
}

func (t *Map) Set(key, value string) error {
	t.m[key] = value
	return nil
}

func (t *Map) Size() int { return len(t.m) }

// Iterator walks the keys in sorted order,
// over a snapshot of the keys taken now
func (t *Map) Iterator() Iterator {
	keys := maps.Keys(t.m)
	slices.Sort(keys)

	return &MapIterator{m: t.m, keys: keys, pos: -1}
}

func (i *MapIterator) Next() bool {
	i.pos++
	return i.pos < len(i.keys)
}

func (i *MapIterator) Value() Element {
	k := i.keys[i.pos]

	return Element{Kind: data.Present, Key: k, Value: i.m[k]}
}
