package atcmd

import (
	"testing"

	"github.com/danmuck/loractl/internal/testutil/testlog"
)

func TestParseResponse(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		raw   string
		ok    bool
		value string
	}{
		{name: "bare ok", raw: "OK", ok: true},
		{name: "bare ok with crlf", raw: "OK\r\n", ok: true},
		{name: "command ok", raw: "+CMD=OK", ok: true},
		{name: "key value", raw: "+DEVEUI=70B3D57ED0012345", ok: true, value: "70B3D57ED0012345"},
		{name: "negative value", raw: "+RSSI=-82", ok: true, value: "-82"},
		{name: "value with padding", raw: "  +SNR= 7 \r\n", ok: true, value: "7"},
		{name: "error", raw: "ERROR"},
		{name: "empty", raw: ""},
		{name: "garbage", raw: "\x00\xfftrash"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseResponse(tc.raw)
			if got.OK != tc.ok {
				t.Fatalf("ok=%v want %v", got.OK, tc.ok)
			}
			if got.Value != tc.value {
				t.Fatalf("value=%q want %q", got.Value, tc.value)
			}
		})
	}
}
