// Package modemtest provides a scripted AT modem implementing atcmd.Port
// for driver tests.
package modemtest

import (
	"bytes"
	"sync"
	"time"
)

// Modem answers each written CR LF terminated command line from a handler
// function. A handler returning "" leaves the modem silent, which the
// channel observes as a timeout.
type Modem struct {
	mu      sync.Mutex
	handler func(cmd string) string
	inbuf   []byte
	pending []byte
	writes  []WrittenCommand

	writeErr error
	readErr  error
	closed   bool
}

// WrittenCommand records one command line and when the modem received it.
type WrittenCommand struct {
	Text string
	At   time.Time
}

func New(handler func(cmd string) string) *Modem {
	if handler == nil {
		handler = func(string) string { return "" }
	}
	return &Modem{handler: handler}
}

func (m *Modem) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.inbuf = append(m.inbuf, p...)
	for {
		i := bytes.Index(m.inbuf, []byte("\r\n"))
		if i < 0 {
			break
		}
		line := string(m.inbuf[:i])
		m.inbuf = m.inbuf[i+2:]
		m.writes = append(m.writes, WrittenCommand{Text: line, At: time.Now()})
		if reply := m.handler(line); reply != "" {
			m.pending = append(m.pending, []byte(reply+"\r\n")...)
		}
	}
	return len(p), nil
}

// Read behaves like a serial port with a read timeout: no pending bytes
// means (0, nil), not an error.
func (m *Modem) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return 0, m.readErr
	}
	if len(m.pending) == 0 {
		return 0, nil
	}
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

func (m *Modem) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return nil
}

func (m *Modem) SetReadTimeout(time.Duration) error { return nil }

func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Inject queues unsolicited bytes as if the module had spoken out of
// turn; ResetInputBuffer discards them.
func (m *Modem) Inject(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, raw...)
}

// FailWrites makes every subsequent Write return err.
func (m *Modem) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailReads makes every subsequent Read return err.
func (m *Modem) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Writes returns every command line received so far.
func (m *Modem) Writes() []WrittenCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WrittenCommand, len(m.writes))
	copy(out, m.writes)
	return out
}

// Commands returns just the command texts, oldest first.
func (m *Modem) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.writes))
	for _, w := range m.writes {
		out = append(out, w.Text)
	}
	return out
}

// Closed reports whether Close was called.
func (m *Modem) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
