package navigation

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/infobot/core/telegram/format"
)

func lines(text string) []string {
	return strings.Split(text, "\n")
}

func TestScenarioA(t *testing.T) {
	n := testNavigator(t, 45, nil)

	cases := []struct {
		token      string
		first      string
		last       string
		wantTokens [][]string
	}{
		{"page_0", "1. Item 1", "20. Item 20", [][]string{{"page_1"}, {"menu"}}},
		{"page_1", "21. Item 21", "40. Item 40", [][]string{{"page_0", "page_2"}, {"menu"}}},
		{"page_2", "41. Item 41", "45. Item 45", [][]string{{"page_1"}, {"menu"}}},
	}
	for _, tc := range cases {
		res := n.Press(1, tc.token)
		require.NoError(t, res.Fault, tc.token)
		ls := lines(res.View.Text)
		assert.Equal(t, tc.first, ls[2], tc.token)
		assert.Equal(t, tc.last, ls[len(ls)-1], tc.token)
		if diff := cmp.Diff(tc.wantTokens, tokens(t, res.View)); diff != "" {
			t.Fatalf("%s buttons (-want +got):\n%s", tc.token, diff)
		}
	}

	res := n.Press(1, "page_1")
	assert.Equal(t, "🌍 Countries (Page 2/3)", lines(res.View.Text)[0])
	assert.Equal(t, []Button{
		{Label: LabelPrevious, Action: ListAction(0)},
		{Label: LabelNext, Action: ListAction(2)},
	}, res.View.Rows[0])
}

func TestScenarioB(t *testing.T) {
	n := testNavigator(t, 45, nil)
	res := n.Press(1, "count")
	require.NoError(t, res.Fault)
	assert.Contains(t, res.View.Text, "45")
	assert.Equal(t, "🌍 Total countries: 45", res.View.Text)
	assert.Equal(t, []Button{{Label: LabelBack, Action: MenuAction()}}, res.View.Actions())
	assert.Equal(t, [][]string{{"menu"}}, tokens(t, res.View))
}

func TestScenarioC(t *testing.T) {
	n := testNavigator(t, 45, nil)
	res := n.Press(1, "page_abc")
	assert.Equal(t, Menu, res.View.Screen.Kind)
	assert.True(t, strings.HasPrefix(res.View.Text, NoticeUnknown))

	var malformed *MalformedTokenError
	assert.True(t, errors.As(res.Fault, &malformed))
}

func TestClampingMatchesLastPage(t *testing.T) {
	n := testNavigator(t, 45, nil)
	clamped := n.Press(1, "page_999999")
	last := n.Press(1, "page_2")

	if diff := cmp.Diff(last.View, clamped.View); diff != "" {
		t.Fatalf("clamped view differs from last page (-want +got):\n%s", diff)
	}
	var oor *OutOfRangeError
	require.True(t, errors.As(clamped.Fault, &oor))
	assert.Equal(t, OutOfRangeError{Requested: 999999, Served: 2, Pages: 3}, *oor)
	assert.NoError(t, last.Fault)
}

func TestNumberingContinuity(t *testing.T) {
	for _, size := range []int{1, 7, 20} {
		c := testCatalog(t, 45)
		e, err := NewEngine(c, size)
		require.NoError(t, err)
		n := NewNavigator(e, NewRenderer(c, nil), nil)
		for p := 0; p < PageCount(45, size); p++ {
			res := n.Open(1, ListAction(p))
			first := lines(res.View.Text)[2]
			want := strings.Split(first, ".")[0]
			assert.Equal(t, p*size+1, atoi(t, want), "size=%d page=%d", size, p)
		}
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		require.True(t, r >= '0' && r <= '9', s)
		n = n*10 + int(r-'0')
	}
	return n
}

func TestSinglePageListOffersOnlyBack(t *testing.T) {
	n := testNavigator(t, 5, nil)
	res := n.Press(1, "page_0")
	assert.Equal(t, [][]string{{"menu"}}, tokens(t, res.View))
}

func TestEmptyList(t *testing.T) {
	n := testNavigator(t, 0, nil, "crypto")
	res := n.Press(1, "page_0")
	require.NoError(t, res.Fault)
	assert.Equal(t, "🌍 Countries (Page 1/1)", lines(res.View.Text)[0])
	assert.Contains(t, res.View.Text, "No countries yet.")
	assert.Equal(t, [][]string{{"menu"}}, tokens(t, res.View))

	res = n.Press(1, "page_4")
	assert.Equal(t, 0, res.View.Screen.Page)
}

func TestMenuScreen(t *testing.T) {
	n := testNavigator(t, 45, nil, "blockchain", "crypto", "security")
	for _, tok := range []string{"menu", "main_menu"} {
		res := n.Press(1, tok)
		require.NoError(t, res.Fault)
		assert.Equal(t, Menu, res.View.Screen.Kind)
		assert.Equal(t, "Test Bot\n\nPick one", res.View.Text)
		assert.Equal(t, [][]string{
			{"page_0"},
			{"count"},
			{"@search"},
			{"blockchain", "crypto"},
			{"security"},
			{"all_topics"},
		}, tokens(t, res.View))
		assert.Equal(t, Button{Label: LabelSearch, Search: true}, res.View.Rows[2][0])
		for _, b := range res.View.Actions() {
			assert.False(t, b.Search)
		}
	}
}

func TestMenuOffersSearchOnlyWithItems(t *testing.T) {
	n := testNavigator(t, 0, nil, "crypto")
	res := n.Press(1, "menu")
	require.NoError(t, res.Fault)
	assert.Equal(t, [][]string{{"page_0"}, {"count"}, {"crypto"}, {"all_topics"}}, tokens(t, res.View))
}

func TestDetailScreen(t *testing.T) {
	n := testNavigator(t, 3, nil, "blockchain", "crypto", "security")
	res := n.Press(1, "crypto")
	require.NoError(t, res.Fault)
	assert.Equal(t, Detail, res.View.Screen.Kind)
	assert.Equal(t,
		"Here is a short guide\n\nTitle crypto\nAbout crypto\n\nKey takeaways\n• First crypto\n• Second crypto",
		res.View.Text)
	assert.Equal(t, [][]string{
		{"blockchain", "security"},
		{"all_topics"},
		{"menu"},
	}, tokens(t, res.View))
}

func TestOverviewScreen(t *testing.T) {
	n := testNavigator(t, 3, nil, "network", "contact")
	res := n.Press(1, "all_topics")
	require.NoError(t, res.Fault)
	assert.Contains(t, res.View.Text, "Title network\nAbout network")
	assert.Contains(t, res.View.Text, "Title contact\nAbout contact")
	assert.Equal(t, [][]string{{"network", "contact"}, {"menu"}}, tokens(t, res.View))
}

func TestContentMissingFallsBackToMenu(t *testing.T) {
	n := testNavigator(t, 3, nil, "crypto")
	res := n.Press(1, "security")
	assert.Equal(t, Menu, res.View.Screen.Kind)
	assert.True(t, strings.HasPrefix(res.View.Text, NoticeMissing))

	var missing *ContentMissingError
	require.True(t, errors.As(res.Fault, &missing))
	assert.Equal(t, "security", missing.Key)
}

func TestAuthorization(t *testing.T) {
	n := testNavigator(t, 3, []int64{100, 200})
	for _, id := range []int64{100, 200} {
		_, ok := n.Authorize(id, ActionStats)
		assert.True(t, ok, id)
		_, ok = n.Authorize(id, ActionBroadcast)
		assert.True(t, ok, id)
	}
	for _, id := range []int64{0, 1, -100, 300} {
		res, ok := n.Authorize(id, ActionBroadcast)
		require.False(t, ok, id)
		assert.Equal(t, RefusalText, res.View.Text)
		assert.Equal(t, [][]string{{"menu"}}, tokens(t, res.View))
		var denied *UnauthorizedActionError
		require.True(t, errors.As(res.Fault, &denied))
		assert.NotContains(t, res.View.Text, "100")
	}
	_, ok := n.Authorize(1, "help")
	assert.True(t, ok, "unrestricted actions are open to everyone")
}

func TestGuard(t *testing.T) {
	g := NewGuard([]int64{7})
	assert.True(t, g.IsAuthorized(7, ActionStats))
	assert.False(t, g.IsAuthorized(8, ActionStats))
	assert.True(t, g.IsAuthorized(8, "menu"))

	custom := NewGuard([]int64{7}, "export")
	assert.True(t, custom.IsAuthorized(8, ActionStats))
	assert.False(t, custom.IsAuthorized(8, "export"))

	var none *Guard
	assert.False(t, none.IsAuthorized(7, ActionBroadcast))
	assert.True(t, none.IsAuthorized(7, "count"))
}

func TestEveryRenderedButtonEncodes(t *testing.T) {
	n := testNavigator(t, 45, nil, DetailKeys()...)
	var walk []string
	walk = append(walk, "menu", "count", "all_topics", "page_0", "page_1", "page_2")
	walk = append(walk, DetailKeys()...)
	for _, tok := range walk {
		res := n.Press(1, tok)
		require.NoError(t, res.Fault, tok)
		for _, b := range res.View.Actions() {
			enc, err := Encode(b.Action)
			require.NoError(t, err)
			back, err := Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, b.Action, back)
		}
	}
}

func TestHTMLRendererEscapes(t *testing.T) {
	c := testCatalog(t, 1)
	e, err := NewEngine(c, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, e.PageSize())
	n := NewNavigator(e, NewRenderer(c, format.HTML{}), nil)

	res := n.Press(1, "count")
	assert.Equal(t, "🌍 Total countries: <b>1</b>", res.View.Text)

	res = n.Press(1, "nope<script>")
	assert.True(t, strings.HasPrefix(res.View.Text, "<i>"))
}

func TestFitCutsAtLineBoundary(t *testing.T) {
	long := strings.Repeat("line of text\n", 600)
	got := fit(long)
	assert.LessOrEqual(t, len(utf16.Encode([]rune(got))), MaxTextLen)
	assert.True(t, strings.HasSuffix(got, "text\n…"))
	assert.Equal(t, "short", fit("short"))
}

func TestFitCountsUTF16Units(t *testing.T) {
	// 3000 runes, 6000 UTF-16 units.
	emoji := strings.Repeat("🌍", 3000)
	got := fit(emoji)
	assert.Less(t, len(got), len(emoji))
	assert.LessOrEqual(t, len(utf16.Encode([]rune(got))), MaxTextLen)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "🌍\n…"))

	listing := strings.Repeat("🌍 Item\n", 700)
	got = fit(listing)
	assert.LessOrEqual(t, len(utf16.Encode([]rune(got))), MaxTextLen)
	assert.True(t, strings.HasSuffix(got, "Item\n…"))

	fits := strings.Repeat("🌍", MaxTextLen/2)
	assert.Equal(t, fits, fit(fits))
}

func TestConcurrentPresses(t *testing.T) {
	n := testNavigator(t, 45, []int64{1}, "crypto")
	want := n.Press(1, "page_1").View
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, tok := range []string{"menu", "count", "crypto", "page_x", "page_7"} {
				_ = n.Press(int64(i), tok)
			}
			if got := n.Press(int64(i), "page_1").View; !cmp.Equal(want, got) {
				t.Errorf("goroutine %d saw a different page_1 view", i)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewEngineRequiresCatalog(t *testing.T) {
	_, err := NewEngine(nil, 20)
	assert.Error(t, err)
}
