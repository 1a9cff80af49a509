package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var countries = []string{
	"Afghanistan", "Albania", "France", "French Guiana", "Germany",
	"Guinea", "Guinea-Bissau", "Equatorial Guinea", "Papua New Guinea", "Sweden", "Switzerland",
}

func items(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Item
	}
	return out
}

func TestPrefixBeforeSubstring(t *testing.T) {
	got := New(countries).Search("guinea", 0)
	assert.Equal(t, []string{"Guinea", "Guinea-Bissau", "Equatorial Guinea", "Papua New Guinea", "French Guiana"}, items(got))
	assert.Equal(t, RankPrefix, got[0].Rank)
	assert.Equal(t, RankSubstring, got[2].Rank)
	assert.Equal(t, RankFuzzy, got[4].Rank)
	assert.Equal(t, 6, got[0].Number())
}

func TestCaseInsensitive(t *testing.T) {
	got := New(countries).Search("  FR ", 0)
	assert.Equal(t, []string{"France", "French Guiana"}, items(got))
}

func TestTypoTolerance(t *testing.T) {
	got := New(countries).Search("swizerland", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Switzerland", got[0].Item)
	assert.Equal(t, RankFuzzy, got[0].Rank)
	assert.Equal(t, 1, got[0].Distance)

	got = New(countries).Search("germ4", 0)
	assert.Equal(t, []string{"Germany"}, items(got))

	got = New(countries).Search("bisau", 0)
	assert.Equal(t, []string{"Guinea-Bissau"}, items(got), "partial word typo")
}

func TestShortQueriesAreNotFuzzy(t *testing.T) {
	assert.Empty(t, New(countries).Search("xq", 0))
}

func TestEmptyQueryListsFirstItems(t *testing.T) {
	got := New(countries).Search("", 3)
	assert.Equal(t, []string{"Afghanistan", "Albania", "France"}, items(got))
}

func TestLimit(t *testing.T) {
	many := make([]string, 50)
	for i := range many {
		many[i] = "Item"
	}
	assert.Len(t, New(many).Search("item", 0), MaxResults)
	assert.Len(t, New(many).Search("item", 5), 5)
	assert.Len(t, New(many).Search("item", 500), MaxResults)
}

func TestIndexCopiesItems(t *testing.T) {
	src := []string{"Chad"}
	ix := New(src)
	src[0] = "mutated"
	assert.Equal(t, "Chad", ix.Search("chad", 0)[0].Item)
}
