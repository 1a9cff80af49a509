package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/telegram/format"
	"github.com/m3rciful/infobot/core/telegram/keyboard"
	"github.com/m3rciful/infobot/internal/content"
	"github.com/m3rciful/infobot/internal/navigation"
)

// Markup turns the button rows of v into an inline keyboard whose callback
// data are bare navigation tokens. Search buttons open inline mode in the
// current chat with an empty query.
func Markup(v navigation.View) *tele.ReplyMarkup {
	return keyboard.Rows(buttons(v)...)
}

func buttons(v navigation.View) [][]keyboard.Button {
	rows := make([][]keyboard.Button, 0, len(v.Rows))
	for _, row := range v.Rows {
		btns := make([]keyboard.Button, len(row))
		for i, b := range row {
			if b.Search {
				btns[i] = keyboard.Button{Text: b.Label, Query: true}
				continue
			}
			btns[i] = keyboard.Button{Text: b.Label, Data: navigation.MustEncode(b.Action)}
		}
		rows = append(rows, btns)
	}
	return rows
}

// CheckScreens renders every screen reachable from the menu of catalog and
// checks each keyboard against Telegram's limits. It returns the number of
// screens rendered.
func CheckScreens(catalog *content.Catalog, pageSize int, f format.Formatter) (int, error) {
	engine, err := navigation.NewEngine(catalog, pageSize)
	if err != nil {
		return 0, err
	}
	renderer := navigation.NewRenderer(catalog, f)

	actions := []navigation.Action{navigation.MenuAction(), navigation.CountAction(), navigation.OverviewAction()}
	for page := range engine.Pages() {
		actions = append(actions, navigation.ListAction(page))
	}
	for _, t := range catalog.Topics() {
		actions = append(actions, navigation.DetailAction(t.Key))
	}
	for _, a := range actions {
		req, err := engine.Resolve(a)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", a.Name(), err)
		}
		if err := keyboard.Check(buttons(renderer.Render(req))...); err != nil {
			return 0, fmt.Errorf("%s: %w", a.Name(), err)
		}
	}
	return len(actions), nil
}
