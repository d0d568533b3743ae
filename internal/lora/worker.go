package lora

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/danmuck/loractl/internal/atcmd"
	"github.com/danmuck/loractl/internal/observability"
	"github.com/danmuck/loractl/internal/queue"
)

// dutyCycleChunk bounds each spacing sleep so Stop is noticed within a
// second even mid-wait.
const dutyCycleChunk = time.Second

// Start launches the transmit worker. Call only after a successful Join;
// the worker is the sole queue consumer and the only writer of the send
// clock. Calling Start twice is a no-op.
func (c *Client) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run()
	c.log.Debug().Msg("transmit worker started")
}

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case <-c.stopc:
			return
		default:
		}

		msg, ok := c.queue.Dequeue(c.cfg.DequeueWait)
		if !ok {
			continue
		}
		select {
		case <-c.stopc:
			return
		default:
		}

		if !c.waitDutyCycle() {
			return
		}
		c.deliver(msg)
	}
}

// waitDutyCycle blocks until SendInterval has passed since the previous
// attempt sequence ended. False means the client is stopping.
func (c *Client) waitDutyCycle() bool {
	elapsed := time.Since(time.Unix(0, c.lastSend.Load()))
	remaining := c.cfg.SendInterval - elapsed
	if remaining <= 0 {
		return true
	}
	c.log.Debug().Dur("wait", remaining).Msg("duty cycle spacing")
	for remaining > 0 {
		chunk := dutyCycleChunk
		if remaining < chunk {
			chunk = remaining
		}
		select {
		case <-c.stopc:
			return false
		case <-time.After(chunk):
		}
		remaining -= chunk
	}
	return true
}

// deliver runs one bounded retry sequence for msg and advances the send
// clock whichever way the sequence ends, so the duty cycle holds across
// failures too. It reports whether the uplink was accepted.
func (c *Client) deliver(msg queue.Message) bool {
	begin := time.Now()
	delivered := false
	for msg.Attempts < c.cfg.MaxRetries {
		select {
		case <-c.stopc:
			c.lastSend.Store(time.Now().UnixNano())
			return false
		default:
		}
		msg.Attempts++
		if c.attemptSend(msg.Payload) {
			delivered = true
			break
		}
		if msg.Attempts < c.cfg.MaxRetries {
			c.log.Warn().Int("attempt", msg.Attempts).Int("max", c.cfg.MaxRetries).Msg("send failed, retrying")
			time.Sleep(c.cfg.RetryDelay)
		}
	}

	c.lastSend.Store(time.Now().UnixNano())
	depth := c.queue.Len()
	observability.RecordQueueDepth(depth)
	if delivered {
		observability.RecordDelivered(msg.Attempts, time.Since(begin))
		c.log.Info().Int("bytes", len(msg.Payload)).Int("queued", depth).Msg("uplink delivered")
		return true
	}
	observability.RecordDrop("retries_exhausted")
	c.log.Error().Int("attempts", msg.Attempts).Msg("uplink dropped after retries")
	return false
}

// attemptSend issues one AT+SEND exchange. After an accepted uplink the
// module keeps the line busy through its class A receive windows, so the
// attempt waits RxWindowWait before reporting success.
func (c *Client) attemptSend(p []byte) bool {
	cmd := atcmd.Command{
		Text:    "AT+SEND=" + strings.ToUpper(hex.EncodeToString(p)),
		Timeout: c.cfg.SendTimeout,
	}
	rsp, err := c.channel.Exchange(cmd)
	if err != nil {
		c.log.Warn().Err(err).Msg("send exchange failed")
		return false
	}
	if !rsp.OK {
		return false
	}
	time.Sleep(c.cfg.RxWindowWait)
	return true
}

// SendSync delivers payload on the caller's goroutine with the same
// spacing, retry and receive-window behavior as the background worker.
// Meant for short-lived tools that never call Start; do not mix with a
// running worker.
func (c *Client) SendSync(p []byte) bool {
	if !c.joined.Load() {
		c.log.Warn().Msg("send refused: not joined")
		observability.RecordDrop("not_joined")
		return false
	}
	if len(p) == 0 || len(p) > queue.MaxPayload {
		c.log.Warn().Int("len", len(p)).Int("max", queue.MaxPayload).Msg("send refused: payload size")
		observability.RecordDrop("payload_invalid")
		return false
	}
	if !c.waitDutyCycle() {
		return false
	}
	return c.deliver(queue.Message{Payload: p})
}
