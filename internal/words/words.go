// apps/go-server/internal/words/words.go
//
// Prefix-indexed dictionary for the word-chain engine.
//
// Responsibilities:
//   - Normalize a raw corpus (lowercase, a–z only, length ≥ 2, deduplicated).
//   - Keep every accepted word once in an arena slice.
//   - Index arena positions under each of the word's prefixes (length ≥ 2).
//   - Answer membership and prefix queries without further allocation of state.
//
// Notes:
//   • An Index is immutable after Build and may be shared across goroutines.
//   • Rebuilding means building a new Index; there is no incremental insert.
//   • Prefixes shorter than MinPrefixLen are never indexed and always return empty.

package words

import (
	"sort"
	"strings"
)

const (
	// MinWordLen is the shortest word the index accepts.
	MinWordLen = 2
	// MinPrefixLen is the shortest prefix that can be queried.
	MinPrefixLen = 2
)

// Index is a read-only dictionary with prefix buckets.
type Index struct {
	arena    []string           // accepted words, in first-seen order
	set      map[string]int32   // word → arena position
	prefixes map[string][]int32 // prefix → arena positions, first-seen order
}

// Build normalizes words and returns a new Index.
// Malformed entries are dropped silently; an empty input yields an empty index.
func Build(words []string) *Index {
	idx := &Index{
		arena:    make([]string, 0, len(words)),
		set:      make(map[string]int32, len(words)),
		prefixes: make(map[string][]int32),
	}
	for _, raw := range words {
		w, ok := Normalize(raw)
		if !ok {
			continue
		}
		if _, dup := idx.set[w]; dup {
			continue
		}
		pos := int32(len(idx.arena))
		idx.arena = append(idx.arena, w)
		idx.set[w] = pos
		for n := MinPrefixLen; n <= len(w); n++ {
			p := w[:n]
			idx.prefixes[p] = append(idx.prefixes[p], pos)
		}
	}
	return idx
}

// Normalize lowercases and trims w and reports whether it is a legal word.
func Normalize(w string) (string, bool) {
	w = strings.ToLower(strings.TrimSpace(w))
	if len(w) < MinWordLen || !isAlpha(w) {
		return "", false
	}
	return w, true
}

// IsValidWord reports whether w is in the dictionary (case-insensitive).
func (x *Index) IsValidWord(w string) bool {
	if x == nil {
		return false
	}
	_, ok := x.set[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// WordsWithPrefix returns the words starting with prefix, in corpus order.
// The returned slice is owned by the caller.
func (x *Index) WordsWithPrefix(prefix string) []string {
	if x == nil {
		return []string{}
	}
	prefix = strings.ToLower(prefix)
	if len(prefix) < MinPrefixLen {
		return []string{}
	}
	bucket := x.prefixes[prefix]
	out := make([]string, len(bucket))
	for i, pos := range bucket {
		out[i] = x.arena[pos]
	}
	return out
}

// CountWithPrefix returns len(WordsWithPrefix(prefix)) without copying.
func (x *Index) CountWithPrefix(prefix string) int {
	if x == nil || len(prefix) < MinPrefixLen {
		return 0
	}
	return len(x.prefixes[strings.ToLower(prefix)])
}

// Openings returns every populated two-letter prefix, sorted.
func (x *Index) Openings() []string {
	if x == nil {
		return nil
	}
	var out []string
	for p := range x.prefixes {
		if len(p) == MinPrefixLen {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct words.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.arena)
}

// Stats returns counts of loaded words and prefix buckets.
func (x *Index) Stats() (wordCount int, bucketCount int) {
	if x == nil {
		return 0, 0
	}
	return len(x.arena), len(x.prefixes)
}

// Suffix returns the last two letters of w, lowercased, or "" if w is too short.
func Suffix(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	if len(w) < MinPrefixLen {
		return ""
	}
	return w[len(w)-MinPrefixLen:]
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
