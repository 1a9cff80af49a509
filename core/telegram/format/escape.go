package format

import "strings"

// markdownV2 escapes every character MarkdownV2 reserves outside entities.
var markdownV2 = strings.NewReplacer(
	`\`, `\\`, "_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
	"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// EscapeMarkdownV2 makes s safe to send with tele.ModeMarkdownV2.
func EscapeMarkdownV2(s string) string {
	return markdownV2.Replace(s)
}
