package ui

import tele "gopkg.in/telebot.v4"

// NewArticleResult creates an inline ArticleResult whose chosen message is
// text rendered with the given parse mode.
func NewArticleResult(id, title, description, text string, mode tele.ParseMode) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       title,
		Description: description,
		Text:        text,
	}
	result.SetResultID(id)
	if mode != tele.ModeDefault {
		result.SetParseMode(mode)
	}
	return result
}
