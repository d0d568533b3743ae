package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/loractl/internal/lora"
	"github.com/danmuck/loractl/internal/testutil/modemtest"
	"github.com/danmuck/loractl/internal/testutil/testlog"
)

func testServer(t *testing.T, handler func(string) string) *Server {
	t.Helper()
	modem := modemtest.New(handler)
	cfg := lora.DefaultConfig()
	cfg.CommandTimeout = 50 * time.Millisecond
	cfg.SettleDelay = time.Millisecond
	cfg.ReadPoll = time.Millisecond
	client := lora.NewClient(modem, cfg, testlog.Logger(t))
	t.Cleanup(client.Stop)
	return NewServer(client, testlog.Logger(t))
}

func TestHealthz(t *testing.T) {
	testlog.Start(t)
	srv := testServer(t, func(string) string { return "OK" })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestStatusReportsModemState(t *testing.T) {
	testlog.Start(t)
	srv := testServer(t, func(cmd string) string {
		switch cmd {
		case "AT+RSSI?":
			return "+RSSI=-82"
		case "AT+SNR?":
			return "+SNR=7"
		default:
			return "OK"
		}
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var body struct {
		Joined     bool `json:"joined"`
		QueueDepth int  `json:"queue_depth"`
		RSSI       int  `json:"rssi"`
		SNR        int  `json:"snr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Joined {
		t.Fatalf("reported joined without a session")
	}
	if body.QueueDepth != 0 {
		t.Fatalf("queue_depth %d", body.QueueDepth)
	}
	if body.RSSI != -82 || body.SNR != 7 {
		t.Fatalf("rssi=%d snr=%d", body.RSSI, body.SNR)
	}
}

func TestStatusSignalUnknownWhenModemSilent(t *testing.T) {
	testlog.Start(t)
	srv := testServer(t, func(string) string { return "" })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		RSSI int `json:"rssi"`
		SNR  int `json:"snr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.RSSI != lora.SignalUnknown || body.SNR != lora.SignalUnknown {
		t.Fatalf("rssi=%d snr=%d, want sentinel", body.RSSI, body.SNR)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	testlog.Start(t)
	srv := testServer(t, func(string) string { return "OK" })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "loractl_") {
		t.Fatalf("metrics body missing loractl collectors")
	}
}
