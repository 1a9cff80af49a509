package navigation

import (
	"errors"
	"fmt"

	"github.com/m3rciful/infobot/internal/content"
)

// Request is everything the renderer needs for one screen.
type Request struct {
	// Screen is the screen served; for List its page is already clamped.
	Screen Screen
	// Requested is the list page asked for before clamping.
	Requested int

	Page  PageView
	Items []string
	Total int

	Topic  content.Topic
	Topics []content.Topic
}

// Clamped reports whether a list page was moved into range.
func (r Request) Clamped() bool {
	return r.Screen.Kind == List && r.Requested != r.Screen.Page
}

// Engine resolves actions against a read-only catalog. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	catalog  *content.Catalog
	pageSize int
}

// NewEngine binds the engine to catalog. A non-positive pageSize selects DefaultPageSize.
func NewEngine(catalog *content.Catalog, pageSize int) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("navigation: nil catalog")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{catalog: catalog, pageSize: pageSize}, nil
}

// PageSize is the fixed number of list items per page.
func (e *Engine) PageSize() int { return e.pageSize }

// Pages is the number of list pages, at least one.
func (e *Engine) Pages() int {
	return max(PageCount(e.catalog.Len(), e.pageSize), 1)
}

// Resolve maps a to its render request. Out-of-range list pages are clamped
// and reported through Request.Clamped; a detail key missing from the
// catalog yields *ContentMissingError.
func (e *Engine) Resolve(a Action) (Request, error) {
	switch a.Target.Kind {
	case Menu:
		return Request{Screen: Screen{Kind: Menu}, Total: e.catalog.Len(), Topics: e.catalog.Topics()}, nil
	case List:
		total := e.catalog.Len()
		page := ClampPage(a.Target.Page, total, e.pageSize)
		view := Paginate(total, page, e.pageSize)
		return Request{
			Screen:    Screen{Kind: List, Page: page},
			Requested: a.Target.Page,
			Page:      view,
			Items:     e.catalog.Slice(view.Start, view.End),
			Total:     total,
		}, nil
	case Count:
		return Request{Screen: Screen{Kind: Count}, Total: e.catalog.Len()}, nil
	case Overview:
		return Request{Screen: Screen{Kind: Overview}, Topics: e.catalog.Topics()}, nil
	case Detail:
		topic, ok := e.catalog.Topic(a.ItemKey)
		if !ok {
			return Request{}, &ContentMissingError{Key: a.ItemKey}
		}
		return Request{Screen: Screen{Kind: Detail}, Topic: topic, Topics: e.catalog.Topics()}, nil
	default:
		return Request{}, fmt.Errorf("navigation: resolve: unknown screen %s", a.Target.Kind)
	}
}
