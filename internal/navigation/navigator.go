package navigation

import "errors"

// Notices shown above the menu when a press cannot be honoured.
const (
	NoticeUnknown = "Sorry, I didn't recognise that. Here is the main menu."
	NoticeMissing = "That item is no longer available. Here is the main menu."
)

// Result is the outcome of a press. View is always renderable; Fault
// carries the recovered error, if any, for logging only.
type Result struct {
	View  View
	Fault error
}

// Navigator is the total front door of the engine: every input yields a view.
type Navigator struct {
	engine   *Engine
	renderer *Renderer
	guard    *Guard
}

// NewNavigator wires the engine, renderer and guard. A nil guard authorizes
// only unrestricted actions.
func NewNavigator(engine *Engine, renderer *Renderer, guard *Guard) *Navigator {
	return &Navigator{engine: engine, renderer: renderer, guard: guard}
}

// Engine exposes the underlying engine.
func (n *Navigator) Engine() *Engine { return n.engine }

// Renderer exposes the underlying renderer.
func (n *Navigator) Renderer() *Renderer { return n.renderer }

// Press decodes token and opens the resulting action for identity.
func (n *Navigator) Press(identity int64, token string) Result {
	a, err := Decode(token)
	if err != nil {
		return n.fallback(NoticeUnknown, err)
	}
	return n.Open(identity, a)
}

// Open runs the guard, resolves a and renders the outcome.
func (n *Navigator) Open(identity int64, a Action) Result {
	if !n.guard.IsAuthorized(identity, a.Name()) {
		return n.Refuse(identity, a.Name())
	}
	req, err := n.engine.Resolve(a)
	if err != nil {
		var missing *ContentMissingError
		if errors.As(err, &missing) {
			return n.fallback(NoticeMissing, err)
		}
		return n.fallback(NoticeUnknown, err)
	}
	res := Result{View: n.renderer.Render(req)}
	if req.Clamped() {
		res.Fault = &OutOfRangeError{
			Requested: req.Requested,
			Served:    req.Screen.Page,
			Pages:     req.Page.Pages(),
		}
	}
	return res
}

// Authorize checks a restricted action outside the token grammar, such as a
// command. On refusal the result carries the fixed refusal view.
func (n *Navigator) Authorize(identity int64, action string) (Result, bool) {
	if n.guard.IsAuthorized(identity, action) {
		return Result{}, true
	}
	return n.Refuse(identity, action), false
}

// Refuse renders the fixed refusal view for identity and action.
func (n *Navigator) Refuse(identity int64, action string) Result {
	return Result{
		View:  n.renderer.Refusal(),
		Fault: &UnauthorizedActionError{Identity: identity, Action: action},
	}
}

// Menu renders the main menu, optionally prefixed with a notice.
func (n *Navigator) Menu(notice string) View {
	req, _ := n.engine.Resolve(MenuAction())
	return n.renderer.WithNotice(n.renderer.Render(req), notice)
}

func (n *Navigator) fallback(notice string, fault error) Result {
	return Result{View: n.Menu(notice), Fault: fault}
}
