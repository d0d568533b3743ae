package atcmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var lineDelimiter = []byte("\r\n")

var (
	// ErrTransport reports an I/O failure on the duplex. The channel
	// stays usable for the next exchange; callers decide escalation.
	ErrTransport = errors.New("atcmd: transport failure")
	// ErrTimeout reports that no terminal reply form arrived within the
	// command timeout.
	ErrTimeout = errors.New("atcmd: no terminal response before timeout")
)

// Port is the byte-stream duplex the channel drives. go.bug.st/serial
// ports satisfy it directly; tests supply scripted fakes.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// Config carries the channel's pacing knobs.
type Config struct {
	// SettleDelay is slept after writing a command so the module can
	// begin responding before the read loop starts.
	SettleDelay time.Duration
	// ReadPoll is the pause between read attempts while waiting for the
	// reply delimiter.
	ReadPoll time.Duration
	// DefaultTimeout applies to commands that carry no timeout of
	// their own.
	DefaultTimeout time.Duration
}

// WithDefaults fills zero fields with working values.
func (c Config) WithDefaults() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = 800 * time.Millisecond
	}
	if c.ReadPoll <= 0 {
		c.ReadPoll = 50 * time.Millisecond
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 3 * time.Second
	}
	return c
}

// Channel serializes command/response exchanges over one serial duplex.
// Exchange holds the channel lock for the full round trip.
type Channel struct {
	mu   sync.Mutex
	port Port
	cfg  Config
	log  zerolog.Logger
}

func NewChannel(port Port, cfg Config, log zerolog.Logger) *Channel {
	return &Channel{port: port, cfg: cfg.WithDefaults(), log: log}
}

// Exchange writes one command line and reads until the delimiter appears
// or the command timeout elapses. A transport failure yields a failed
// Response alongside a wrapped ErrTransport; it is never fatal to the
// channel itself.
func (ch *Channel) Exchange(cmd Command) (Response, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if err := ch.port.ResetInputBuffer(); err != nil {
		return Response{}, fmt.Errorf("%w: reset input: %v", ErrTransport, err)
	}
	ch.log.Debug().Str("tx", cmd.Text).Msg("atcmd exchange")
	if _, err := ch.port.Write(append([]byte(cmd.Text), lineDelimiter...)); err != nil {
		return Response{}, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	time.Sleep(ch.cfg.SettleDelay)

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = ch.cfg.DefaultTimeout
	}
	if err := ch.port.SetReadTimeout(ch.cfg.ReadPoll); err != nil {
		return Response{}, fmt.Errorf("%w: set read timeout: %v", ErrTransport, err)
	}

	raw, err := ch.readReply(timeout)
	if err != nil {
		return Response{}, err
	}

	text := string(bytes.TrimSpace(raw))
	ch.log.Debug().Str("rx", text).Msg("atcmd reply")
	if !bytes.Contains(raw, lineDelimiter) {
		return Response{}, fmt.Errorf("%w: %q", ErrTimeout, text)
	}
	return ParseResponse(text), nil
}

func (ch *Channel) readReply(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 256)
	var raw []byte
	for time.Now().Before(deadline) {
		n, err := ch.port.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		if n > 0 {
			raw = append(raw, buf[:n]...)
			if bytes.Contains(raw, lineDelimiter) {
				return raw, nil
			}
			continue
		}
		time.Sleep(ch.cfg.ReadPoll)
	}
	return raw, nil
}
