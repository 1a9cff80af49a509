// Package keyboard builds inline keyboards.
package keyboard

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MaxCallbackData is Telegram's limit on callback data, in bytes.
const MaxCallbackData = 64

// CancelText labels the button built by Cancel.
const CancelText = "❌ Cancel"

// Button is one inline button. With Unique empty, Data is sent verbatim
// as the callback data; otherwise telebot's "\f<unique>|<data>" form is
// used so a handler registered under Unique receives it.
//
// A Query button sends no callback: it switches the user to inline mode in
// the current chat with Data prefilled, which may be empty.
type Button struct {
	Text   string
	Unique string
	Data   string
	Query  bool
}

// CallbackData is the exact string Telegram will echo back on a press.
// It is empty for Query buttons.
func (b Button) CallbackData() string {
	if b.Query {
		return ""
	}
	if b.Unique == "" {
		return b.Data
	}
	if b.Data == "" {
		return "\f" + b.Unique
	}
	return "\f" + b.Unique + "|" + b.Data
}

func (b Button) inline() tele.InlineButton {
	if b.Query {
		return tele.InlineButton{Text: b.Text, InlineQueryChat: b.Data}
	}
	return tele.InlineButton{Text: b.Text, Unique: b.Unique, Data: b.Data}
}

// Rows lays the buttons out row by row, dropping empty rows.
func Rows(rows ...[]Button) *tele.ReplyMarkup {
	kb := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		line := make([]tele.InlineButton, len(row))
		for i, b := range row {
			line[i] = b.inline()
		}
		kb = append(kb, line)
	}
	return &tele.ReplyMarkup{InlineKeyboard: kb}
}

// Grid wraps a flat list into rows of at most perRow buttons.
func Grid(buttons []Button, perRow int) *tele.ReplyMarkup {
	perRow = max(perRow, 1)
	rows := make([][]Button, 0, (len(buttons)+perRow-1)/perRow)
	for len(buttons) > 0 {
		n := min(perRow, len(buttons))
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return Rows(rows...)
}

// Cancel is a one-button keyboard that presses unique with data "cancel".
func Cancel(unique string) *tele.ReplyMarkup {
	return Rows([]Button{{Text: CancelText, Unique: unique, Data: "cancel"}})
}

// Check reports the first button Telegram would reject. Rows are numbered
// as Rows lays them out, after empty rows are dropped.
func Check(rows ...[]Button) error {
	r := 0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		for c, btn := range row {
			if strings.TrimSpace(btn.Text) == "" {
				return fmt.Errorf("keyboard: button %d.%d has no label", r, c)
			}
			if btn.Query {
				continue
			}
			data := btn.CallbackData()
			switch {
			case data == "":
				return fmt.Errorf("keyboard: button %d.%d %q has no callback data", r, c, btn.Text)
			case len(data) > MaxCallbackData:
				return fmt.Errorf("keyboard: button %d.%d callback data is %d bytes, limit %d", r, c, len(data), MaxCallbackData)
			}
		}
		r++
	}
	return nil
}
