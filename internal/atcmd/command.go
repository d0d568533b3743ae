package atcmd

import (
	"strings"
	"time"
)

// Command is one AT exchange request. Critical marks commands whose
// failure the caller cannot work around; the channel itself treats all
// commands the same.
type Command struct {
	Text     string
	Timeout  time.Duration
	Critical bool
}

// Response is the parsed terminal reply to one command. It is never
// partially valid: either a recognized terminal form arrived before the
// command timeout or OK is false.
type Response struct {
	OK    bool
	Value string
}

// ParseResponse interprets the trimmed reply text from the module.
// Recognized terminal forms, checked in order:
//   - the literal "OK"
//   - any reply containing "=OK"
//   - any KEY=VALUE reply, whose trimmed value is returned
//
// Everything else (ERROR, garbage, nothing at all) is a failed exchange.
func ParseResponse(raw string) Response {
	text := strings.TrimSpace(raw)
	if text == "OK" {
		return Response{OK: true}
	}
	if strings.Contains(text, "=OK") {
		return Response{OK: true}
	}
	if i := strings.Index(text, "="); i >= 0 {
		return Response{OK: true, Value: strings.TrimSpace(text[i+1:])}
	}
	return Response{}
}
