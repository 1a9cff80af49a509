package logger

import "strings"

var knownStatus = map[string]bool{
	"ok":           true,
	"fail":         true,
	"skip":         true,
	"retry":        true,
	"rate_limited": true,
	"cancelled":    true,
	"refused":      true,
}

var knownOutcome = map[string]bool{
	"ok":           true,
	"fail":         true,
	"cancelled":    true,
	"rate_limited": true,
	"refused":      true,
	"clamped":      true,
	"skip":         true,
}

// normalizeStatus lower-cases known statuses and passes others through.
func normalizeStatus(status string) string {
	if s := strings.ToLower(strings.TrimSpace(status)); knownStatus[s] {
		return s
	}
	return status
}

// normalizeOutcome reports false for outcomes outside the known set; such
// values are dropped from the line.
func normalizeOutcome(outcome string) (string, bool) {
	o := strings.ToLower(strings.TrimSpace(outcome))
	return o, knownOutcome[o]
}

// defaultKeyOrder puts identity first, then the update, the navigation
// state and finally the broadcast and error details.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"cb_key",
	"token",
	"screen",
	"page",
	"pages",
	"requested_page",
	"item",
	"action",
	"outcome",
	"duration_ms",
	"messages",
	"edits",
	"answered",
	"kb",
	"count",
	"query",
	"results",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"broadcast_id",
	"recipients",
	"delivered",
	"failed",
	"removed",
	"err",
	"err_code",
	"cause",
	"attempts",
}
