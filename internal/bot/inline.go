package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/infobot/core/telegram/ui"
	"github.com/m3rciful/infobot/internal/search"
)

const inlineCacheSeconds = 300

// onInline answers "@bot <query>" with matching list items.
func (a *App) onInline(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	matches := a.search.Search(q.Text, search.MaxResults)
	results := make(tele.Results, 0, len(matches))
	for _, m := range matches {
		n := strconv.Itoa(m.Number())
		results = append(results, ui.NewArticleResult(
			strconv.Itoa(m.Index),
			m.Item,
			"#"+n+" of "+strconv.Itoa(a.catalog.Len())+" "+a.catalog.ListNoun(),
			a.format.Bold(n+". "+m.Item),
			a.format.ParseMode(),
		))
	}
	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: inlineCacheSeconds,
	})
}
