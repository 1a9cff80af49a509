package navigation

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/m3rciful/infobot/core/telegram/format"
	"github.com/m3rciful/infobot/internal/content"
)

// MaxTextLen is Telegram's message length limit in UTF-16 code units.
const MaxTextLen = 4096

// Button labels.
const (
	LabelPrevious = "◀️ Previous"
	LabelNext     = "Next ▶️"
	LabelBack     = "🏠 Back to Menu"
	LabelOverview = "📚 All Topics"
	LabelSearch   = "🔍 Search"
)

// RefusalText is shown for restricted actions the caller may not run.
const RefusalText = "⛔ Sorry, this action is available to administrators only."

// Button is one labeled navigation action. A Search button carries no
// action: it opens inline search over the list in the current chat.
type Button struct {
	Label  string
	Action Action
	Search bool
}

// View is a rendered screen: text in the formatter's dialect plus rows of
// buttons. The navigation row always precedes the back row.
type View struct {
	Screen Screen
	Text   string
	Rows   [][]Button
}

// Actions flattens the navigation buttons in display order, leaving out
// Search buttons.
func (v View) Actions() []Button {
	var out []Button
	for _, row := range v.Rows {
		for _, b := range row {
			if !b.Search {
				out = append(out, b)
			}
		}
	}
	return out
}

// Renderer turns requests into views. It is pure and safe for concurrent use.
type Renderer struct {
	f       format.Formatter
	catalog *content.Catalog
}

// NewRenderer uses f for markup; nil selects plain text.
func NewRenderer(catalog *content.Catalog, f format.Formatter) *Renderer {
	if f == nil {
		f = format.Plain{}
	}
	return &Renderer{f: f, catalog: catalog}
}

// Formatter exposes the markup dialect of rendered text.
func (r *Renderer) Formatter() format.Formatter { return r.f }

// Render builds the view for req.
func (r *Renderer) Render(req Request) View {
	var v View
	switch req.Screen.Kind {
	case List:
		v = r.list(req)
	case Count:
		v = r.count(req)
	case Detail:
		v = r.detail(req)
	case Overview:
		v = r.overview(req)
	default:
		v = r.menu(req)
	}
	v.Screen = req.Screen
	v.Text = fit(v.Text)
	return v
}

// Refusal is the fixed view for unauthorized restricted actions.
func (r *Renderer) Refusal() View {
	return View{
		Screen: Screen{Kind: Menu},
		Text:   r.f.Text(RefusalText),
		Rows:   [][]Button{backRow()},
	}
}

// WithNotice prefixes v with a short italic notice line.
func (r *Renderer) WithNotice(v View, notice string) View {
	if notice == "" {
		return v
	}
	v.Text = fit(r.f.Italic(notice) + "\n\n" + v.Text)
	return v
}

func backRow() []Button {
	return []Button{{Label: LabelBack, Action: MenuAction()}}
}

func (r *Renderer) listLabel() string {
	return joinIcon(r.catalog.ListIcon(), "View "+r.catalog.ListTitle())
}

func (r *Renderer) countLabel() string {
	return "📊 Count " + titleCase(r.catalog.ListNoun())
}

func (r *Renderer) menu(req Request) View {
	var b strings.Builder
	b.WriteString(r.f.Bold(r.catalog.Title()))
	if w := r.catalog.Welcome(); w != "" {
		b.WriteString("\n\n")
		b.WriteString(r.f.Text(w))
	}

	var rows [][]Button
	if r.catalog.ListTitle() != "" {
		rows = append(rows,
			[]Button{{Label: r.listLabel(), Action: ListAction(0)}},
			[]Button{{Label: r.countLabel(), Action: CountAction()}},
		)
		if r.catalog.Len() > 0 {
			rows = append(rows, []Button{{Label: LabelSearch, Search: true}})
		}
	}
	rows = append(rows, topicRows(req.Topics, "")...)
	if len(req.Topics) > 0 {
		rows = append(rows, []Button{{Label: LabelOverview, Action: OverviewAction()}})
	}
	return View{Text: b.String(), Rows: rows}
}

func (r *Renderer) list(req Request) View {
	p := req.Page
	var b strings.Builder
	header := joinIcon(r.catalog.ListIcon(), r.catalog.ListTitle()) +
		" (Page " + strconv.Itoa(p.Label()) + "/" + strconv.Itoa(p.Pages()) + ")"
	b.WriteString(r.f.Bold(header))
	b.WriteString("\n")
	if len(req.Items) == 0 {
		b.WriteString("\n")
		b.WriteString(r.f.Italic("No " + r.catalog.ListNoun() + " yet."))
	}
	for i, item := range req.Items {
		b.WriteString("\n")
		b.WriteString(r.f.Text(strconv.Itoa(p.FirstNumber()+i) + ". " + item))
	}

	var nav []Button
	if p.HasPrevious {
		nav = append(nav, Button{Label: LabelPrevious, Action: ListAction(p.Index - 1)})
	}
	if p.HasNext {
		nav = append(nav, Button{Label: LabelNext, Action: ListAction(p.Index + 1)})
	}
	var rows [][]Button
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, backRow())
	return View{Text: b.String(), Rows: rows}
}

func (r *Renderer) count(req Request) View {
	text := r.f.Text(joinIcon(r.catalog.ListIcon(), "Total "+r.catalog.ListNoun()+": ")) +
		r.f.Bold(strconv.Itoa(req.Total))
	return View{Text: text, Rows: [][]Button{backRow()}}
}

func (r *Renderer) detail(req Request) View {
	t := req.Topic
	var b strings.Builder
	if pre := r.catalog.Preamble(); pre != "" {
		b.WriteString(r.f.Text(pre))
		b.WriteString("\n\n")
	}
	b.WriteString(r.f.Bold(t.Label()))
	b.WriteString("\n")
	b.WriteString(r.f.Text(t.Description))
	if len(t.Takeaways) > 0 {
		b.WriteString("\n\n")
		b.WriteString(r.f.Bold("Key takeaways"))
		for _, line := range t.Takeaways {
			b.WriteString("\n")
			b.WriteString(r.f.Text("• " + line))
		}
	}

	rows := topicRows(req.Topics, t.Key)
	rows = append(rows, []Button{{Label: LabelOverview, Action: OverviewAction()}}, backRow())
	return View{Text: b.String(), Rows: rows}
}

func (r *Renderer) overview(req Request) View {
	var b strings.Builder
	b.WriteString(r.f.Bold(LabelOverview))
	for _, t := range req.Topics {
		b.WriteString("\n\n")
		b.WriteString(r.f.Bold(t.Label()))
		b.WriteString("\n")
		b.WriteString(r.f.Text(t.Description))
	}
	rows := topicRows(req.Topics, "")
	rows = append(rows, backRow())
	return View{Text: b.String(), Rows: rows}
}

// topicRows lays out one button per topic, two per row, skipping except.
func topicRows(topics []content.Topic, except string) [][]Button {
	var rows [][]Button
	var row []Button
	for _, t := range topics {
		if t.Key == except {
			continue
		}
		row = append(row, Button{Label: t.Label(), Action: DetailAction(t.Key)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func joinIcon(icon, s string) string {
	if icon == "" {
		return s
	}
	return icon + " " + s
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

// fit cuts text at a line boundary so it stays within MaxTextLen, which
// Telegram counts in UTF-16 code units. Markup never spans lines, so the
// cut keeps tags balanced.
func fit(text string) string {
	if utf16Len(text) <= MaxTextLen {
		return text
	}
	const ellipsis = "\n…"
	limit := MaxTextLen - utf16Len(ellipsis)
	cut, end, n := 0, len(text), 0
	for i, r := range text {
		w := utf16.RuneLen(r)
		if n+w > limit {
			end = i
			break
		}
		if r == '\n' {
			cut = i
		}
		n += w
	}
	if cut == 0 {
		cut = end
	}
	return text[:cut] + ellipsis
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
