package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"lukechampine.com/uint128"
)

// Mathmatically correct modulo function (% as done in Python, Haskell, Ruby, etc.)
//
// modulo(-1, 5) = 4
//
// modulo(3, -5) = -2
func Modulo(x, n int) int {
	return (x%n + n) % n
}

func MD5Hash(val string) string {
	b := md5.Sum([]byte(val))
	return hex.EncodeToString(b[:])
}

func MD5HashUint128(val string) uint128.Uint128 {
	b := md5.Sum([]byte(val))
	return uint128.FromBytesBE(b[:])
}

func Uint128BigEndian(u uint128.Uint128) string {
	b := make([]byte, 16)
	u.PutBytesBE(b)

	return strings.TrimLeft(hex.EncodeToString(b), "0")
}

// IsPrime reports whether n is prime, by trial division.
// Table capacities are small enough for this to be fine.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}

	if n%2 == 0 {
		return n == 2
	}

	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}

	return true
}

// NextPrime returns the smallest prime >= n
func NextPrime(n int) int {
	if n <= 2 {
		return 2
	}

	for !IsPrime(n) {
		n++
	}

	return n
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
