package lora

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/loractl/internal/atcmd"
	"github.com/danmuck/loractl/internal/observability"
)

// configCommands returns the strictly ordered OTAA setup sequence.
// JoinEUI and AppKey are the only critical entries: without either the
// module cannot join, while the advisory ones have workable firmware
// defaults. The caller's identifiers are upper-cased and sent verbatim.
func (c *Client) configCommands(joinEUI, appKey string) []atcmd.Command {
	t := c.cfg.CommandTimeout
	return []atcmd.Command{
		{Text: "AT+LORAMODE=LORAWAN", Timeout: t},
		{Text: "AT+JOINTYPE=OTAA", Timeout: t},
		{Text: fmt.Sprintf("AT+REGION=%s", c.cfg.Region), Timeout: t},
		{Text: "AT+CLASS=CLASS_A", Timeout: t},
		{Text: fmt.Sprintf("AT+DATARATE=%d", c.cfg.DataRate), Timeout: t},
		{Text: fmt.Sprintf("AT+EIRP=%d", c.cfg.TxPower), Timeout: t},
		{Text: "AT+ADR=0", Timeout: t},
		{Text: "AT+UPLINKTYPE=UNCONFIRMED", Timeout: t},
		{Text: "AT+JOINEUI=" + strings.ToUpper(strings.TrimSpace(joinEUI)), Timeout: t, Critical: true},
		{Text: "AT+APPKEY=" + strings.ToUpper(strings.TrimSpace(appKey)), Timeout: t, Critical: true},
	}
}

// Join configures the module, issues the OTAA join request and polls for
// the network accept until timeout (counted from the join request).
// There are no retries at this layer; the caller decides whether to run
// the whole join again. On success the session is joined for good: the
// flag never reverts until the client is stopped.
func (c *Client) Join(joinEUI, appKey string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.cfg.JoinTimeout
	}
	c.log.Info().Str("region", string(c.cfg.Region)).Int("data_rate", c.cfg.DataRate).Msg("joining network")

	for _, cmd := range c.configCommands(joinEUI, appKey) {
		rsp, err := c.channel.Exchange(cmd)
		if err == nil && rsp.OK {
			continue
		}
		if cmd.Critical {
			observability.RecordJoin("config_failed")
			return fmt.Errorf("%w: %s", ErrConfigFailed, cmd.Text)
		}
		c.log.Warn().Str("cmd", cmd.Text).Err(err).Msg("advisory configuration command failed")
	}

	rsp, err := c.channel.Exchange(atcmd.Command{Text: "AT+JOIN=1", Timeout: c.cfg.JoinRequestTimeout})
	if err != nil || !rsp.OK {
		observability.RecordJoin("rejected")
		return ErrJoinRejected
	}
	c.log.Info().Msg("join request sent, waiting for network accept")

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		rsp, err := c.channel.Exchange(atcmd.Command{Text: "AT+JOIN?", Timeout: c.cfg.CommandTimeout})
		if err == nil && rsp.OK && rsp.Value == "1" {
			c.joined.Store(true)
			observability.RecordJoin("accepted")
			c.log.Info().Msg("network joined")
			return nil
		}
		time.Sleep(c.cfg.PollInterval)
	}
	observability.RecordJoin("timeout")
	return fmt.Errorf("%w (%s)", ErrJoinTimeout, timeout)
}
