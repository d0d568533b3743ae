package lora

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/loractl/internal/atcmd"
	"github.com/danmuck/loractl/internal/observability"
	"github.com/danmuck/loractl/internal/payload"
	"github.com/danmuck/loractl/internal/queue"
)

const probeAttempts = 3

// Client owns one modem session: the serial port, the command channel,
// the transmit queue and the background worker.
type Client struct {
	cfg     Config
	port    atcmd.Port
	channel *atcmd.Channel
	queue   *queue.Queue
	log     zerolog.Logger

	joined   atomic.Bool
	lastSend atomic.Int64 // unix nanos of the last attempt sequence end

	started   atomic.Bool
	stopc     chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// NewClient wires a client over an already-open modem port. The client
// owns the port from here on: Stop closes it.
func NewClient(port atcmd.Port, cfg Config, log zerolog.Logger) *Client {
	cfg = cfg.WithDefaults()
	chCfg := atcmd.Config{
		SettleDelay:    cfg.SettleDelay,
		ReadPoll:       cfg.ReadPoll,
		DefaultTimeout: cfg.CommandTimeout,
	}
	return &Client{
		cfg:     cfg,
		port:    port,
		channel: atcmd.NewChannel(port, chCfg, log),
		queue:   queue.New(cfg.QueueSize),
		log:     log,
		stopc:   make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Reboot returns the module to a clean state. The module drops off the
// serial link while restarting, so a settle pause follows the command
// and its reply is not interpreted.
func (c *Client) Reboot() error {
	_, err := c.channel.Exchange(atcmd.Command{Text: "AT+REBOOT", Timeout: 2 * time.Second})
	if err != nil && !isTimeout(err) {
		return err
	}
	time.Sleep(c.cfg.RebootWait)
	return nil
}

// Probe verifies the module answers the AT liveness command, retrying a
// few times to let leftover boot chatter drain.
func (c *Client) Probe() error {
	for i := 0; i < probeAttempts; i++ {
		rsp, err := c.channel.Exchange(atcmd.Command{Text: "AT", Timeout: c.cfg.CommandTimeout})
		if err == nil && rsp.OK {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return ErrNotResponding
}

// Send queues payload for background delivery. Fire and forget: false
// means the payload was refused (not joined, invalid size, queue full)
// and will never be sent; Send itself never blocks.
func (c *Client) Send(p []byte) bool {
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
	if !c.queue.Enqueue(p) {
		c.log.Warn().Msg("send refused: queue full")
		observability.RecordDrop("queue_full")
		return false
	}
	depth := c.queue.Len()
	observability.RecordQueued(depth)
	c.log.Debug().Int("bytes", len(p)).Int("queued", depth).Msg("uplink queued")
	return true
}

// SendRecord encodes a sensor record and queues the result.
func (c *Client) SendRecord(fields ...payload.Field) bool {
	return c.Send(payload.Encode(fields...))
}

// Stop halts the worker, waits up to StopGrace for it to exit, then
// closes the port. Idempotent and safe on every construction and exit
// path; pending queue content is discarded, not drained.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopc) })
	if c.started.Load() {
		select {
		case <-c.done:
		case <-time.After(c.cfg.StopGrace):
			c.log.Warn().Msg("transmit worker did not stop within grace period")
		}
	}
	c.closeOnce.Do(func() {
		if err := c.port.Close(); err != nil {
			c.log.Warn().Err(err).Msg("close modem port")
		}
	})
}
