package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/infobot/core/telegram"
	"github.com/m3rciful/infobot/core/telegram/commands"
)

type fakeContext struct {
	tele.Context
	upd       tele.Update
	user      *tele.User
	store     map[string]any
	responses []*tele.CallbackResponse
}

func newFake(userID int64, upd tele.Update) *fakeContext {
	return &fakeContext{upd: upd, user: &tele.User{ID: userID}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update      { return f.upd }
func (f *fakeContext) Sender() *tele.User       { return f.user }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.user.ID, Type: tele.ChatPrivate} }
func (f *fakeContext) Callback() *tele.Callback { return f.upd.Callback }
func (f *fakeContext) Query() *tele.Query       { return f.upd.Query }
func (f *fakeContext) Get(k string) any         { return f.store[k] }
func (f *fakeContext) Set(k string, v any)      { f.store[k] = v }
func (f *fakeContext) Text() string {
	if f.upd.Message != nil {
		return f.upd.Message.Text
	}
	return ""
}
func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

type allowList map[int64]bool

func (a allowList) IsAuthorized(id int64, _ string) bool { return a[id] }

func callbackUpdate(data string) tele.Update {
	return tele.Update{ID: 11, Callback: &tele.Callback{Data: data}}
}

func TestCallbackRouteSendsBareTokensToDefault(t *testing.T) {
	var got []string
	route := CallbackRoute(tg.NewRegistry(), CallbackOptions{
		Default: func(c tele.Context) error {
			got = append(got, c.Callback().Data)
			return nil
		},
	})
	if route.Endpoint != tele.OnCallback {
		t.Fatalf("endpoint = %v", route.Endpoint)
	}

	for _, data := range []string{"page_2", "menu"} {
		if err := route.Handler(newFake(1, callbackUpdate(data))); err != nil {
			t.Fatalf("press %s: %v", data, err)
		}
	}
	if diff := cmp.Diff([]string{"page_2", "menu"}, got); diff != "" {
		t.Fatalf("default saw (-want +got):\n%s", diff)
	}
}

func TestCallbackRoutePrefersRegisteredUnique(t *testing.T) {
	reg := tg.NewRegistry()
	cancelled := false
	if err := reg.RegisterCallback("broadcast", func(tele.Context) error {
		cancelled = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	defaulted := false
	route := CallbackRoute(reg, CallbackOptions{Default: func(tele.Context) error {
		defaulted = true
		return nil
	}})

	if err := route.Handler(newFake(1, callbackUpdate("\fbroadcast|cancel"))); err != nil {
		t.Fatal(err)
	}
	if !cancelled || defaulted {
		t.Fatalf("cancelled = %v, defaulted = %v", cancelled, defaulted)
	}
}

func TestCallbackRouteUnknownUniqueUsesNotFound(t *testing.T) {
	route := CallbackRoute(tg.NewRegistry(), CallbackOptions{Default: func(tele.Context) error {
		t.Fatal("unique-encoded data must not reach the navigation default")
		return nil
	}})
	c := newFake(1, callbackUpdate("\fmystery|x"))
	if err := route.Handler(c); err != nil {
		t.Fatal(err)
	}
	if len(c.responses) != 1 || c.responses[0].Text != "Unsupported action" {
		t.Fatalf("responses = %+v", c.responses)
	}
}

func newGuardedRegistry(ran *[]string) *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/stats", commands.Command{
		Description: "Audience statistics",
		AdminOnly:   true,
		Aliases:     []string{"statistics"},
		Handler: func(tele.Context) error {
			*ran = append(*ran, "stats")
			return nil
		},
	})
	reg.RegisterCommand("/help", commands.Command{
		Description: "Show help",
		Handler: func(tele.Context) error {
			*ran = append(*ran, "help")
			return nil
		},
	})
	return reg
}

func commandHandlers(routes []tg.Route) map[any]tele.HandlerFunc {
	out := map[any]tele.HandlerFunc{}
	for _, r := range routes {
		out[r.Endpoint] = r.Handler
	}
	return out
}

func TestCommandRoutesGuardAdminCommands(t *testing.T) {
	var ran []string
	rejected := 0
	byEndpoint := commandHandlers(CommandRoutes(newGuardedRegistry(&ran), CommandRouteOptions{
		Guard:         allowList{1: true},
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	}))

	msg := tele.Update{ID: 2, Message: &tele.Message{Text: "/stats"}}
	for _, call := range []struct {
		endpoint string
		user     int64
	}{{"/stats", 1}, {"/stats", 2}, {"/help", 2}} {
		if err := byEndpoint[call.endpoint](newFake(call.user, msg)); err != nil {
			t.Fatalf("%s by %d: %v", call.endpoint, call.user, err)
		}
	}

	if diff := cmp.Diff([]string{"stats", "help"}, ran); diff != "" {
		t.Fatalf("handlers run (-want +got):\n%s", diff)
	}
	if rejected != 1 {
		t.Fatalf("rejected = %d, want 1", rejected)
	}
}

type clearedStates []int64

func (c *clearedStates) ClearState(id int64) { *c = append(*c, id) }

func TestCommandRoutesDropPendingConversation(t *testing.T) {
	var ran []string
	var cleared clearedStates
	byEndpoint := commandHandlers(CommandRoutes(newGuardedRegistry(&ran), CommandRouteOptions{
		Guard:         allowList{1: true},
		OnAdminReject: func(tele.Context) error { return nil },
		Conversation:  &cleared,
	}))

	if err := byEndpoint["/help"](newFake(7, tele.Update{ID: 5, Message: &tele.Message{Text: "/help"}})); err != nil {
		t.Fatal(err)
	}
	if err := byEndpoint["/stats"](newFake(8, tele.Update{ID: 6, Message: &tele.Message{Text: "/stats"}})); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(clearedStates{7, 8}, cleared); diff != "" {
		t.Fatalf("cleared (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"help"}, ran); diff != "" {
		t.Fatalf("handlers run (-want +got):\n%s", diff)
	}
}

func TestTextAliasesAreGuarded(t *testing.T) {
	var ran []string
	rejected := 0
	routes := TextRoutes(nil, newGuardedRegistry(&ran), TextOptions{
		Commands: CommandRouteOptions{
			Guard:         allowList{1: true},
			OnAdminReject: func(tele.Context) error { rejected++; return nil },
		},
	})
	text := routes[0].Handler
	upd := tele.Update{ID: 3, Message: &tele.Message{Text: "statistics"}}

	if err := text(newFake(2, upd)); err != nil {
		t.Fatal(err)
	}
	if len(ran) != 0 || rejected != 1 {
		t.Fatalf("stranger: ran %v, rejected %d", ran, rejected)
	}

	if err := text(newFake(1, upd)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"stats"}, ran); diff != "" {
		t.Fatalf("admin alias (-want +got):\n%s", diff)
	}
}

type fakeFSM struct{ active map[int64]bool }

func (f fakeFSM) InProgress(id int64) bool          { return f.active[id] }
func (f fakeFSM) ManagerHandler(tele.Context) error { return errors.New("handled by fsm") }

func TestTextRoutesPreferActiveConversation(t *testing.T) {
	var ran []string
	routes := TextRoutes(fakeFSM{active: map[int64]bool{4: true}}, newGuardedRegistry(&ran), TextOptions{})
	err := routes[0].Handler(newFake(4, tele.Update{ID: 4, Message: &tele.Message{Text: "help"}}))
	if err == nil || err.Error() != "handled by fsm" {
		t.Fatalf("err = %v, want the conversation handler", err)
	}
	if len(ran) != 0 {
		t.Fatalf("alias ran during a conversation: %v", ran)
	}
}

type fallbacks struct{ seen *[]string }

func (f fallbacks) handler(name string) tele.HandlerFunc {
	return func(tele.Context) error { *f.seen = append(*f.seen, name); return nil }
}
func (f fallbacks) UnknownText() tele.HandlerFunc     { return f.handler("text") }
func (f fallbacks) UnknownDocument() tele.HandlerFunc { return f.handler("document") }
func (f fallbacks) UnknownCallback() tele.HandlerFunc { return f.handler("callback") }

func TestTextRoutesUseFallbackProvider(t *testing.T) {
	var ran, seen []string
	routes := TextRoutes(nil, newGuardedRegistry(&ran), TextOptions{Fallback: fallbacks{seen: &seen}})
	if len(routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(routes))
	}
	if err := routes[0].Handler(newFake(1, tele.Update{ID: 8, Message: &tele.Message{Text: "hello there"}})); err != nil {
		t.Fatal(err)
	}
	if err := routes[1].Handler(newFake(1, tele.Update{ID: 9, Message: &tele.Message{Document: &tele.Document{}}})); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"text", "document"}, seen); diff != "" {
		t.Fatalf("fallbacks (-want +got):\n%s", diff)
	}
	if len(ran) != 0 {
		t.Fatalf("commands ran: %v", ran)
	}
}

func TestInlineRoute(t *testing.T) {
	seen := ""
	route := InlineRoute(func(c tele.Context) error {
		seen = c.Query().Text
		return nil
	})
	if route.Endpoint != tele.OnQuery {
		t.Fatalf("endpoint = %v", route.Endpoint)
	}
	if err := route.Handler(newFake(1, tele.Update{ID: 5, Query: &tele.Query{Text: "fran"}})); err != nil {
		t.Fatal(err)
	}
	if seen != "fran" {
		t.Fatalf("query = %q", seen)
	}
}

type codedErr struct{ code string }

func (e codedErr) Error() string { return e.code }
func (e codedErr) Code() string  { return e.code }

func TestErrorCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{fmt.Errorf("press: %w", codedErr{"malformed token"}), "MALFORMED_TOKEN"},
		{errors.New("x"), "ERRORSTRING"},
		{codedErr{}, "CODEDERR"},
		{nil, ""},
	} {
		if got := errorCode(tc.err); got != tc.want {
			t.Errorf("errorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestHandlerName(t *testing.T) {
	for in, want := range map[string]string{
		"/Broadcast": "broadcast",
		"Open Menu":  "open_menu",
		"  ":         "unknown",
	} {
		if got := handlerName(in); got != want {
			t.Errorf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
