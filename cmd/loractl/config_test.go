package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/loractl/internal/lora"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loractl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDaemonConfig(t *testing.T) {
	path := writeConfig(t, `
device = "/dev/ttyUSB0"
region = "US915"
data_rate = 2
tx_power = 20
join_eui = "DFDFDFDF00000000"
app_key = "0102030405060708090A0B0C0D0E0F10"
join_timeout = "90s"
send_interval = "45s"
listen_addr = ":9090"
`)

	cfg, err := loadDaemonConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Device != "/dev/ttyUSB0" {
		t.Fatalf("device %q", cfg.Device)
	}
	if cfg.Lora.Region != lora.RegionUS915 {
		t.Fatalf("region %q", cfg.Lora.Region)
	}
	if cfg.Lora.DataRate != 2 || cfg.Lora.TxPower != 20 {
		t.Fatalf("radio settings not applied: %+v", cfg.Lora)
	}
	if cfg.JoinTimeout != 90*time.Second {
		t.Fatalf("join_timeout %s", cfg.JoinTimeout)
	}
	if cfg.Lora.SendInterval != 45*time.Second {
		t.Fatalf("send_interval %s", cfg.Lora.SendInterval)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("listen_addr %q", cfg.ListenAddr)
	}
}

func TestLoadDaemonConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
join_eui = "DFDFDFDF00000000"
app_key = "0102030405060708090A0B0C0D0E0F10"
`)

	cfg, err := loadDaemonConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := defaultDaemonConfig()
	if cfg.Device != want.Device {
		t.Fatalf("device %q, want default %q", cfg.Device, want.Device)
	}
	if cfg.ListenAddr != want.ListenAddr {
		t.Fatalf("listen_addr %q, want default %q", cfg.ListenAddr, want.ListenAddr)
	}
	if cfg.Lora.Region != lora.RegionEU868 {
		t.Fatalf("region %q, want default", cfg.Lora.Region)
	}
	if cfg.Lora.SendInterval != want.Lora.SendInterval {
		t.Fatalf("send_interval %s, want default %s", cfg.Lora.SendInterval, want.Lora.SendInterval)
	}
}

func TestLoadDaemonConfigRejections(t *testing.T) {
	valid := `
join_eui = "DFDFDFDF00000000"
app_key = "0102030405060708090A0B0C0D0E0F10"
`
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown region",
			body:    valid + "region = \"MARS\"\n",
			wantErr: "region",
		},
		{
			name:    "data rate out of range",
			body:    valid + "data_rate = 9\n",
			wantErr: "data rate",
		},
		{
			name:    "short join eui",
			body:    "join_eui = \"DFDF\"\napp_key = \"0102030405060708090A0B0C0D0E0F10\"\n",
			wantErr: "join_eui",
		},
		{
			name:    "non-hex app key",
			body:    "join_eui = \"DFDFDFDF00000000\"\napp_key = \"ZZ02030405060708090A0B0C0D0E0F10\"\n",
			wantErr: "app_key",
		},
		{
			name:    "bad join timeout",
			body:    valid + "join_timeout = \"soon\"\n",
			wantErr: "join_timeout",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadDaemonConfig(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("config accepted")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadDaemonConfigMissingFile(t *testing.T) {
	if _, err := loadDaemonConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
