package navigation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/infobot/core/telegram/format"
	"github.com/m3rciful/infobot/internal/content"
)

// testCatalog builds a catalog of n list items ("Item 1".."Item n") and the given topics.
func testCatalog(t *testing.T, n int, topics ...string) *content.Catalog {
	t.Helper()
	var b strings.Builder
	b.WriteString("title: Test Bot\nwelcome: Pick one\n")
	b.WriteString("list:\n  title: Countries\n  icon: \"🌍\"\n  noun: countries\n  items:")
	if n == 0 {
		b.WriteString(" []")
	}
	b.WriteString("\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "    - Item %d\n", i)
	}
	if len(topics) > 0 {
		b.WriteString("topics:\n  preamble: Here is a short guide\n  items:\n")
		for _, k := range topics {
			fmt.Fprintf(&b, "    - key: %s\n      title: Title %s\n      description: About %s\n      takeaways: [First %s, Second %s]\n", k, k, k, k, k)
		}
	}
	c, err := content.Parse([]byte(b.String()), content.WithTopicKeys(IsDetailKey))
	require.NoError(t, err)
	return c
}

func testNavigator(t *testing.T, n int, admins []int64, topics ...string) *Navigator {
	t.Helper()
	c := testCatalog(t, n, topics...)
	e, err := NewEngine(c, DefaultPageSize)
	require.NoError(t, err)
	return NewNavigator(e, NewRenderer(c, format.Plain{}), NewGuard(admins))
}

func tokens(t *testing.T, v View) [][]string {
	t.Helper()
	out := make([][]string, len(v.Rows))
	for i, row := range v.Rows {
		for _, b := range row {
			if b.Search {
				out[i] = append(out[i], "@search")
				continue
			}
			tok, err := Encode(b.Action)
			require.NoError(t, err)
			out[i] = append(out[i], tok)
		}
	}
	return out
}
