package lora

import (
	"errors"

	"github.com/danmuck/loractl/internal/atcmd"
)

var (
	// ErrConfigFailed reports that a critical join-configuration command
	// was refused; the join aborts immediately.
	ErrConfigFailed = errors.New("lora: critical configuration command failed")
	// ErrJoinRejected reports that the module refused the join request.
	ErrJoinRejected = errors.New("lora: join request rejected by module")
	// ErrJoinTimeout reports that no join accept arrived in time.
	ErrJoinTimeout = errors.New("lora: no join accept before timeout")
	// ErrNotResponding reports a module that failed every liveness probe.
	ErrNotResponding = errors.New("lora: module not responding to AT probe")
)

// isTimeout distinguishes a silent module from a broken duplex; some
// commands (reboot) legitimately go unanswered.
func isTimeout(err error) bool {
	return errors.Is(err, atcmd.ErrTimeout)
}
