// Package navigation is the stateless menu engine: it turns a callback
// token into the next screen and renders it, carrying all navigation state
// inside the tokens the client echoes back.
package navigation

import "fmt"

// Kind enumerates renderable screens.
type Kind int

const (
	Menu Kind = iota
	List
	Detail
	Count
	// Overview aggregates every topic on one screen.
	Overview
)

func (k Kind) String() string {
	switch k {
	case Menu:
		return "menu"
	case List:
		return "list"
	case Detail:
		return "detail"
	case Count:
		return "count"
	case Overview:
		return "overview"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Screen identifies a view. Page is meaningful only for List and is 0 otherwise.
type Screen struct {
	Kind Kind
	Page int
}

// Action is the decoded intent of a button press. ItemKey is set only for Detail.
type Action struct {
	Target  Screen
	ItemKey string
}

// MenuAction opens the main menu.
func MenuAction() Action { return Action{Target: Screen{Kind: Menu}} }

// ListAction opens the given zero-based list page.
func ListAction(page int) Action { return Action{Target: Screen{Kind: List, Page: page}} }

// CountAction opens the item count screen.
func CountAction() Action { return Action{Target: Screen{Kind: Count}} }

// OverviewAction opens the all-topics screen.
func OverviewAction() Action { return Action{Target: Screen{Kind: Overview}} }

// DetailAction opens the topic with the given key.
func DetailAction(key string) Action {
	return Action{Target: Screen{Kind: Detail}, ItemKey: key}
}

// Name is the action name checked by the access guard.
func (a Action) Name() string {
	switch a.Target.Kind {
	case List:
		return "page"
	case Detail:
		return a.ItemKey
	default:
		return a.Target.Kind.String()
	}
}
