package hashtable

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(bucket uint64) Hasher {
	return func(string) uint64 { return bucket }
}

func mustNew(t *testing.T, capacity int, options ...Option) *Table {
	t.Helper()

	table, err := New(capacity, options...)
	require.NoError(t, err)

	return table
}

func mustInsert(t *testing.T, table *Table, key, value string) {
	t.Helper()

	ok, err := table.Insert(key, value)
	require.NoError(t, err)
	require.True(t, ok, "insert of %q failed", key)
}

func TestNewInvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1, -5003} {
		table, err := New(c)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
		assert.Nil(t, table)
	}
}

func TestForcedCollisions(t *testing.T) {
	table := mustNew(t, 5, WithHasher(constant(2)))

	mustInsert(t, table, "A", "1")
	mustInsert(t, table, "B", "2")
	mustInsert(t, table, "C", "3")

	slots, err := table.Dump(0, 5)
	require.NoError(t, err)

	assert.True(t, slots[0].IsEmpty())
	assert.True(t, slots[1].IsEmpty())
	assert.Equal(t, "A", slots[2].Key())
	assert.Equal(t, "B", slots[3].Key())
	assert.Equal(t, "C", slots[4].Key())

	assert.Equal(t, 2, table.Collisions())

	v, ok := table.Search("B")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = table.Search("Z")
	assert.False(t, ok)
}

func TestTableFull(t *testing.T) {
	table := mustNew(t, 3, WithHasher(constant(0)))

	mustInsert(t, table, "a", "1")
	mustInsert(t, table, "b", "2")
	mustInsert(t, table, "c", "3")

	ok, err := table.Insert("d", "4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, table.Collisions())
	assert.Equal(t, 3, table.Len())

	// A full table has no empty slot to stop the search
	_, ok = table.Search("d")
	assert.False(t, ok)

	v, ok := table.Search("c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestSingleSlot(t *testing.T) {
	table := mustNew(t, 1)

	mustInsert(t, table, "10036", "Central Station")

	v, ok := table.Search("10036")
	assert.True(t, ok)
	assert.Equal(t, "Central Station", v)

	ok, err := table.Insert("10037", "Church St")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Collisions())
}

func TestWrapAround(t *testing.T) {
	table := mustNew(t, 4, WithHasher(constant(3)))

	mustInsert(t, table, "x", "1")
	mustInsert(t, table, "y", "2")
	mustInsert(t, table, "z", "3")

	slots, err := table.Dump(0, 4)
	require.NoError(t, err)

	assert.Equal(t, "x", slots[3].Key())
	assert.Equal(t, "y", slots[0].Key())
	assert.Equal(t, "z", slots[1].Key())
	assert.True(t, slots[2].IsEmpty())

	v, ok := table.Search("z")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestEmptyKey(t *testing.T) {
	table := mustNew(t, 7)

	ok, err := table.Insert("", "nothing")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())

	_, ok = table.Search("")
	assert.False(t, ok)

	assert.Equal(t, 0, table.Hash(""))
}

func TestRoundTrip(t *testing.T) {
	const capacity = 5003

	for _, name := range HasherNames() {
		t.Run(name, func(t *testing.T) {
			h, err := HasherByName(name)
			require.NoError(t, err)

			table := mustNew(t, capacity, WithHasher(h))

			want := make(map[string]string)
			for i := 0; i < 3000; i++ {
				k, v := fmt.Sprintf("%d", 10000+i), fmt.Sprintf("stop-%d", i)
				mustInsert(t, table, k, v)
				want[k] = v
			}

			for k, v := range want {
				got, ok := table.Search(k)
				require.True(t, ok, "key %q not found", k)
				require.Equal(t, v, got)
			}

			for i := 0; i < 100; i++ {
				_, ok := table.Search(fmt.Sprintf("missing-%d", i))
				assert.False(t, ok)
			}

			assert.Equal(t, len(want), table.Len())
			assert.InDelta(t, 3000.0/capacity, table.LoadFactor(), 1e-9)
		})
	}
}

func TestCapacityBound(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 11, 97} {
		table := mustNew(t, capacity)

		failed := 0
		for i := 0; i <= capacity; i++ {
			ok, err := table.Insert(fmt.Sprintf("key-%d", i), "v")
			require.NoError(t, err)

			if !ok {
				failed++
			}
		}

		assert.Equal(t, 1, failed, "capacity %d", capacity)
		assert.Equal(t, capacity, table.Len())

		ok, err := table.Insert("one-more", "v")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestCollisionAccounting(t *testing.T) {
	var (
		rnd   = rand.New(rand.NewSource(42))
		table = mustNew(t, 211, WithHasher(Doubling))

		expected int
		previous int
	)

	for i := 0; i < 300; i++ {
		key := fmt.Sprintf("%x", rnd.Int63())
		busy := !table.slots[table.Hash(key)].IsEmpty()

		ok, err := table.Insert(key, key)
		require.NoError(t, err)

		if ok && busy {
			expected++
		}

		require.GreaterOrEqual(t, table.Collisions(), previous)
		previous = table.Collisions()
	}

	assert.Equal(t, expected, table.Collisions())
}

func TestProbeSequenceConsistency(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	table := mustNew(t, 101, WithHasher(FNV1a))

	for i := 0; i < 90; i++ {
		mustInsert(t, table, fmt.Sprintf("%d", rnd.Intn(1_000_000)), fmt.Sprintf("%d", i))
	}

	for it := table.Iterator(); it.Next(); {
		var (
			s       = it.Value()
			visited []int
		)

		table.probe(s.Key(), func(_, i int, slot *Slot) bool {
			visited = append(visited, i)
			return i != it.Index()
		})

		require.Equal(t, table.Hash(s.Key()), visited[0])
		require.Equal(t, it.Index(), visited[len(visited)-1])

		// Search must not stop early on the way to the stored slot
		for _, i := range visited {
			require.False(t, table.slots[i].IsEmpty(), "hole at %d before %q", i, s.Key())
		}

		_, ok := table.Search(s.Key())
		require.True(t, ok)
	}
}

func TestDuplicatePolicies(t *testing.T) {
	t.Run("probe past", func(t *testing.T) {
		table := mustNew(t, 7)

		mustInsert(t, table, "10036", "old")
		mustInsert(t, table, "10036", "new")

		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 1, table.Collisions())

		v, ok := table.Search("10036")
		assert.True(t, ok)
		assert.Equal(t, "old", v)
	})

	t.Run("reject", func(t *testing.T) {
		table := mustNew(t, 7, WithDuplicatePolicy(RejectDuplicate))

		mustInsert(t, table, "10036", "old")

		ok, err := table.Insert("10036", "new")
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.False(t, ok)
		assert.Equal(t, 1, table.Len())
		assert.Equal(t, 0, table.Collisions())
	})
}

func TestDump(t *testing.T) {
	table := mustNew(t, 10, WithHasher(constant(4)))
	mustInsert(t, table, "k", "v")

	slots, err := table.Dump(3, 3)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.True(t, slots[0].IsEmpty())
	assert.Equal(t, "k", slots[1].Key())
	assert.Equal(t, "v", slots[1].Value())

	// The dump is a copy
	slots[0] = Slot{}
	require.NoError(t, slots[0].Set("other", "x"))
	_, ok := table.Search("other")
	assert.False(t, ok)

	empty, err := table.Dump(10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	tests := []struct {
		start, limit int
	}{
		{-1, 2},
		{0, -1},
		{8, 3},
		{11, 0},
		{math.MaxInt, 1},
		{1, math.MaxInt},
	}

	for _, test := range tests {
		_, err := table.Dump(test.start, test.limit)
		assert.ErrorIs(t, err, ErrOutOfRange, "Dump(%d, %d)", test.start, test.limit)
	}
}

func TestIterator(t *testing.T) {
	table := mustNew(t, 5, WithHasher(constant(3)))

	mustInsert(t, table, "a", "1")
	mustInsert(t, table, "b", "2")
	mustInsert(t, table, "c", "3")

	var (
		keys    []string
		indices []int
	)

	for it := table.Iterator(); it.Next(); {
		keys = append(keys, it.Value().Key())
		indices = append(indices, it.Index())
	}

	assert.Equal(t, []string{"c", "a", "b"}, keys)
	assert.Equal(t, []int{0, 3, 4}, indices)

	empty := mustNew(t, 3)
	assert.False(t, empty.Iterator().Next())
}
