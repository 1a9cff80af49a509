// Package search ranks catalog items against inline queries.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MaxResults caps the results returned for one query.
const MaxResults = 20

// MaxDistance is the largest edit distance accepted as a typo match.
const MaxDistance = 2

// minFuzzyLen is the shortest query that is matched by edit distance.
const minFuzzyLen = 3

// Rank orders match quality; lower is better.
type Rank int

const (
	RankPrefix Rank = iota
	RankSubstring
	RankFuzzy
)

// Result is a matched item. Index is its zero-based position in the catalog.
type Result struct {
	Index    int
	Item     string
	Rank     Rank
	Distance int
}

// Number is the item's 1-based global number as shown in the list.
func (r Result) Number() int { return r.Index + 1 }

// Index searches a fixed item list. It is read-only after New.
type Index struct {
	items []string
	lower []string
}

// New indexes items in display order.
func New(items []string) *Index {
	ix := &Index{
		items: append([]string(nil), items...),
		lower: make([]string, len(items)),
	}
	for i, it := range items {
		ix.lower[i] = strings.ToLower(it)
	}
	return ix
}

// Search returns at most limit matches for query (MaxResults when limit is
// out of range), ordered by rank, then distance, then catalog position. An
// empty query lists the first items.
func (ix *Index) Search(query string, limit int) []Result {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var out []Result
	for i, item := range ix.lower {
		r, ok := match(q, item)
		if !ok {
			continue
		}
		r.Index = i
		r.Item = ix.items[i]
		out = append(out, r)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Rank != out[b].Rank {
			return out[a].Rank < out[b].Rank
		}
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		return out[a].Index < out[b].Index
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func match(q, item string) (Result, bool) {
	switch {
	case q == "" || strings.HasPrefix(item, q):
		return Result{Rank: RankPrefix}, true
	case strings.Contains(item, q):
		return Result{Rank: RankSubstring}, true
	}
	n := utf8.RuneCountInString(q)
	if n < minFuzzyLen {
		return Result{}, false
	}
	d := levenshtein.ComputeDistance(q, item)
	for _, word := range strings.FieldsFunc(item, notLetter) {
		d = min(d, levenshtein.ComputeDistance(q, prefixRunes(word, n)))
	}
	if d > MaxDistance {
		return Result{}, false
	}
	return Result{Rank: RankFuzzy, Distance: d}, true
}

func notLetter(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }

func prefixRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
