// Package hashing derives stable numeric ids and labels from names.
package hashing

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Sum64 returns the 64-bit xxh3 hash of s. The result is stable across
// processes and platforms, which makes it usable as a persistent id.
func Sum64(s string) uint64 {
	return xxh3.HashString(s)
}

// Label returns Sum64 of s rendered as a fixed-width hex string, suitable for
// metric labels and span attributes.
func Label(s string) string {
	const width = 16

	out := strconv.FormatUint(Sum64(s), 16)
	for len(out) < width {
		out = "0" + out
	}

	return out
}
