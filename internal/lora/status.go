package lora

import (
	"fmt"
	"strconv"

	"github.com/danmuck/loractl/internal/atcmd"
)

// SignalUnknown is returned when the module cannot report RSSI or SNR.
const SignalUnknown = -999

func (c *Client) IsJoined() bool {
	return c.joined.Load()
}

func (c *Client) QueueDepth() int {
	return c.queue.Len()
}

// DevEUI queries the module's device EUI, needed to register the device
// with the network before its first join.
func (c *Client) DevEUI() (string, error) {
	rsp, err := c.channel.Exchange(atcmd.Command{Text: "AT+DEVEUI?", Timeout: c.cfg.CommandTimeout})
	if err != nil {
		return "", fmt.Errorf("lora: DevEUI query: %w", err)
	}
	if !rsp.OK || rsp.Value == "" {
		return "", fmt.Errorf("lora: DevEUI query failed")
	}
	return rsp.Value, nil
}

// RSSI reports the last received signal strength in dBm, SignalUnknown
// on any failure.
func (c *Client) RSSI() int {
	return c.signalQuery("AT+RSSI?")
}

// SNR reports the last signal-to-noise ratio in dB, SignalUnknown on any
// failure.
func (c *Client) SNR() int {
	return c.signalQuery("AT+SNR?")
}

func (c *Client) signalQuery(text string) int {
	rsp, err := c.channel.Exchange(atcmd.Command{Text: text, Timeout: c.cfg.CommandTimeout})
	if err != nil || !rsp.OK || rsp.Value == "" {
		return SignalUnknown
	}
	v, err := strconv.Atoi(rsp.Value)
	if err != nil {
		return SignalUnknown
	}
	return v
}
