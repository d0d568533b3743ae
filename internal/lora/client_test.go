package lora

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/loractl/internal/queue"
	"github.com/danmuck/loractl/internal/testutil/testlog"
)

func TestSendRefusedBeforeJoin(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(string) string { return "OK" })

	if client.Send([]byte{0x01}) {
		t.Fatalf("send accepted before join")
	}
	if client.QueueDepth() != 0 {
		t.Fatalf("queue grew before join")
	}
}

func TestSendValidatesPayloadSize(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(string) string { return "OK" })
	client.joined.Store(true)

	if client.Send(nil) {
		t.Fatalf("empty payload accepted")
	}
	if client.Send(make([]byte, queue.MaxPayload+1)) {
		t.Fatalf("oversized payload accepted")
	}
	if client.QueueDepth() != 0 {
		t.Fatalf("invalid payloads changed queue depth")
	}

	if !client.Send(make([]byte, queue.MaxPayload)) {
		t.Fatalf("max-size payload refused")
	}
	if client.QueueDepth() != 1 {
		t.Fatalf("accepted payload missing from queue")
	}
}

func TestSendRefusedWhenQueueFull(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(string) string { return "OK" })
	client.joined.Store(true)

	for i := 0; i < queue.DefaultCapacity; i++ {
		if !client.Send([]byte{byte(i)}) {
			t.Fatalf("send %d refused before capacity", i)
		}
	}
	if client.Send([]byte{0xFF}) {
		t.Fatalf("send accepted past capacity")
	}
	if client.QueueDepth() != queue.DefaultCapacity {
		t.Fatalf("unexpected depth %d", client.QueueDepth())
	}
}

func TestProbe(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(cmd string) string {
		if cmd == "AT" {
			return "OK"
		}
		return ""
	})
	if err := client.Probe(); err != nil {
		t.Fatalf("probe: %v", err)
	}
}

func TestProbeFailsOnSilentModule(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(string) string { return "" })
	if err := client.Probe(); !errors.Is(err, ErrNotResponding) {
		t.Fatalf("expected ErrNotResponding, got %v", err)
	}
}

func TestDevEUI(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(cmd string) string {
		if cmd == "AT+DEVEUI?" {
			return "+DEVEUI=70B3D57ED0012345"
		}
		return "OK"
	})
	eui, err := client.DevEUI()
	if err != nil {
		t.Fatalf("deveui: %v", err)
	}
	if eui != "70B3D57ED0012345" {
		t.Fatalf("unexpected deveui %q", eui)
	}
}

func TestDevEUIQueryFailure(t *testing.T) {
	testlog.Start(t)
	client, _ := testClient(t, func(string) string { return "ERROR" })
	if _, err := client.DevEUI(); err == nil {
		t.Fatalf("expected error on refused query")
	}
}

func TestSignalQueriesReturnSentinelOnFailure(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		reply string
		want  int
	}{
		{name: "rssi value", reply: "+RSSI=-82", want: -82},
		{name: "error reply", reply: "ERROR", want: SignalUnknown},
		{name: "non numeric", reply: "+RSSI=abc", want: SignalUnknown},
		{name: "silent", reply: "", want: SignalUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := testClient(t, func(cmd string) string {
				if cmd == "AT+RSSI?" {
					return tc.reply
				}
				return "OK"
			})
			if got := client.RSSI(); got != tc.want {
				t.Fatalf("rssi=%d want %d", got, tc.want)
			}
		})
	}
}

func TestRebootToleratesSilentModule(t *testing.T) {
	testlog.Start(t)
	client, modem := testClient(t, func(string) string { return "" })
	if err := client.Reboot(); err != nil {
		t.Fatalf("reboot: %v", err)
	}
	cmds := modem.Commands()
	if len(cmds) == 0 || cmds[0] != "AT+REBOOT" {
		t.Fatalf("reboot command not issued: %v", cmds)
	}
}

func TestStopWithoutStartClosesPort(t *testing.T) {
	testlog.Start(t)
	client, modem := testClient(t, func(string) string { return "OK" })

	start := time.Now()
	client.Stop()
	if took := time.Since(start); took > time.Second {
		t.Fatalf("stop without worker took %s", took)
	}
	if !modem.Closed() {
		t.Fatalf("port left open")
	}
	client.Stop()
}
