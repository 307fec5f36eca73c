package hashtable

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/nStangl/stophash/util"
)

// Hasher maps a key to a raw 64-bit hash.
// The table reduces it modulo its capacity, so a Hasher
// only has to be pure and defined for every string.
type Hasher func(key string) uint64

const (
	DoublingHasher   = "doubling"
	PolynomialHasher = "polynomial"
	FNV1aHasher      = "fnv1a"
	XXHasher         = "xxhash"
	MD5Hasher        = "md5"

	DefaultHasher = PolynomialHasher
)

var hashers = map[string]Hasher{
	DoublingHasher:   Doubling,
	PolynomialHasher: Polynomial,
	FNV1aHasher:      FNV1a,
	XXHasher:         XXHash,
	MD5Hasher:        MD5,
}

// HasherByName looks up one of the builtin hashers
func HasherByName(name string) (Hasher, error) {
	h, ok := hashers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}

	return h, nil
}

// HasherNames lists the builtin hashers, sorted
func HasherNames() []string {
	names := make([]string, 0, len(hashers))
	for n := range hashers {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Doubling accumulates h = 2h + c over the runes of the key.
// Long keys shift their leading runes out of the word.
func Doubling(key string) uint64 {
	var h uint64
	for _, c := range key {
		h += h + uint64(c)
	}
	return h
}

// Polynomial is the classic h = 31h + c string hash
func Polynomial(key string) uint64 {
	var h uint64
	for _, c := range key {
		h = 31*h + uint64(c)
	}
	return h
}

func FNV1a(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

func XXHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// MD5 keeps the low 64 bits of the 128-bit digest
func MD5(key string) uint64 {
	return util.MD5HashUint128(key).Lo
}
