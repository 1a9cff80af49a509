package navigation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxTokenLen is Telegram's callback data limit in bytes.
const MaxTokenLen = 64

const (
	tokenMenu     = "menu"
	tokenMainMenu = "main_menu"
	tokenCount    = "count"
	tokenOverview = "all_topics"
	pagePrefix    = "page_"
)

// detailKeys are the fixed topic literals of the wire grammar.
var detailKeys = []string{
	"features", "usecases", "techspecs", "whitepaper", "network", "contact",
	"blockchain", "crypto", "security", "started",
}

var detailSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(detailKeys))
	for _, k := range detailKeys {
		m[k] = struct{}{}
	}
	return m
}()

// DetailKeys returns the topic literals accepted by the token grammar.
func DetailKeys() []string {
	return append([]string(nil), detailKeys...)
}

// IsDetailKey reports whether key is a topic literal of the token grammar.
func IsDetailKey(key string) bool {
	_, ok := detailSet[key]
	return ok
}

// Encode renders a as its wire token. Actions outside the grammar are rejected.
func Encode(a Action) (string, error) {
	t := a.Target
	if t.Kind != List && t.Page != 0 {
		return "", fmt.Errorf("navigation: encode %s: page %d on non-list screen", t.Kind, t.Page)
	}
	if t.Kind != Detail && a.ItemKey != "" {
		return "", fmt.Errorf("navigation: encode %s: unexpected item key %q", t.Kind, a.ItemKey)
	}
	switch t.Kind {
	case Menu:
		return tokenMenu, nil
	case Count:
		return tokenCount, nil
	case Overview:
		return tokenOverview, nil
	case List:
		if t.Page < 0 {
			return "", fmt.Errorf("navigation: encode list: negative page %d", t.Page)
		}
		return pagePrefix + strconv.Itoa(t.Page), nil
	case Detail:
		if !IsDetailKey(a.ItemKey) {
			return "", fmt.Errorf("navigation: encode detail: unknown topic %q", a.ItemKey)
		}
		return a.ItemKey, nil
	default:
		return "", fmt.Errorf("navigation: encode: unknown screen %s", t.Kind)
	}
}

// MustEncode is Encode for actions built by this package's constructors.
func MustEncode(a Action) string {
	tok, err := Encode(a)
	if err != nil {
		panic(err)
	}
	return tok
}

// Decode parses a wire token. It fails with *MalformedTokenError for
// anything outside the grammar. A page index too large for int decodes as
// math.MaxInt and is clamped by the engine like any other stale page.
func Decode(token string) (Action, error) {
	if len(token) > MaxTokenLen {
		return Action{}, &MalformedTokenError{Token: token, Reason: "too long"}
	}
	switch token {
	case tokenMenu, tokenMainMenu:
		return MenuAction(), nil
	case tokenCount:
		return CountAction(), nil
	case tokenOverview:
		return OverviewAction(), nil
	}
	if IsDetailKey(token) {
		return DetailAction(token), nil
	}
	if digits, ok := strings.CutPrefix(token, pagePrefix); ok {
		page, err := parsePage(digits)
		if err != nil {
			return Action{}, &MalformedTokenError{Token: token, Reason: err.Error()}
		}
		return ListAction(page), nil
	}
	return Action{}, &MalformedTokenError{Token: token, Reason: "unknown token"}
}

func parsePage(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty page index")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("page index %q is not a non-negative integer", s)
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("page index %q has leading zeros", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.MaxInt, nil
	}
	return n, nil
}
