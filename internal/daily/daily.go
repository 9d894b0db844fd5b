// Package daily keys puzzles by calendar date, derives a reproducible RNG
// per date, and persists published puzzles and player results.
package daily

import (
	"encoding/binary"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/blake2b"
)

const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD key as a UTC midnight.
func ParseDate(key string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, key, time.UTC)
}

// Seed derives two PCG seed words from a keyed BLAKE2b-256 of (salt, date, attempt).
// The same inputs always give the same seed.
func Seed(date time.Time, salt string, attempt int) (uint64, uint64) {
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Only returned for keys longer than 64 bytes, which are hashed above.
		panic(err)
	}
	h.Write([]byte(DateKey(date)))
	var a [8]byte
	binary.BigEndian.PutUint64(a[:], uint64(attempt))
	h.Write(a[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// RNG returns a PCG generator seeded for (date, salt, attempt).
func RNG(date time.Time, salt string, attempt int) *rand.Rand {
	s1, s2 := Seed(date, salt, attempt)
	return rand.New(rand.NewPCG(s1, s2))
}
