package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var levelNames = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var (
	knownStatus  = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled", "rejected")
	knownCache   = set("hit", "miss")
	knownOutcome = set("ok", "fail", "cancelled", "rate_limited", "submitted")
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status; unknown values are kept but reported as such.
func normalizeStatus(status string) (string, bool) {
	return lookupEnum(knownStatus, status)
}

func normalizeCache(cache string) (string, bool) {
	return lookupEnum(knownCache, cache)
}

func normalizeOutcome(outcome string) (string, bool) {
	return lookupEnum(knownOutcome, outcome)
}

func lookupEnum(known map[string]struct{}, value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	_, ok := known[value]
	return value, ok
}

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
	"handler",
	"op",
	"cb_key",
	"state",
	"next_state",
	"category",
	"sub_category",
	"question",
	"request_no",
	"request_id",
	"total",
	"urgency",
	"attachments",
	"outcome",
	"duration_ms",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"subject",
	"err",
	"cause",
	"attempts",
	"backoff_ms",
	"count",
}
