// lorasend is the synchronous counterpart of the loractl daemon: it
// opens the modem, joins, sends its arguments one at a time on the
// calling goroutine, prints signal stats and exits. No queue, no
// background worker.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/loractl/internal/lora"
	"github.com/danmuck/loractl/internal/observability"
	"github.com/danmuck/loractl/internal/serialio"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lorasend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	device := flag.String("device", "/dev/ttyS0", "serial device of the modem")
	region := flag.String("region", "EU868", "LoRaWAN region (EU868, US915, CN470)")
	dataRate := flag.Int("data-rate", 3, "data rate 0-5, lower = longer range")
	joinEUI := flag.String("join-eui", "", "application JoinEUI (16 hex chars)")
	appKey := flag.String("app-key", "", "application key (32 hex chars)")
	joinTimeout := flag.Duration("join-timeout", 60*time.Second, "max wait for the join accept")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("nothing to send; pass one or more messages as arguments")
	}

	logger := observability.InitLogger("lorasend")

	r, err := lora.ParseRegion(*region)
	if err != nil {
		return err
	}
	cfg := lora.DefaultConfig()
	cfg.Region = r
	cfg.DataRate = *dataRate
	if err := cfg.Validate(); err != nil {
		return err
	}

	port, err := serialio.Open(*device)
	if err != nil {
		return err
	}

	client := lora.NewClient(port, cfg, logger)
	defer client.Stop()

	if err := client.Reboot(); err != nil {
		return fmt.Errorf("module reboot: %w", err)
	}
	if err := client.Probe(); err != nil {
		return fmt.Errorf("%w (device %s)", err, *device)
	}
	if eui, err := client.DevEUI(); err == nil {
		fmt.Printf("DevEUI: %s\n", eui)
	}

	if err := client.Join(*joinEUI, *appKey, *joinTimeout); err != nil {
		return err
	}

	for _, msg := range flag.Args() {
		if !client.SendSync([]byte(msg)) {
			logger.Error().Int("bytes", len(msg)).Msg("message not delivered")
		}
	}

	fmt.Printf("RSSI: %d dBm, SNR: %d dB\n", client.RSSI(), client.SNR())
	return nil
}
