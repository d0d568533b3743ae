// Package serialio opens and configures the physical modem link.
package serialio

import (
	"fmt"

	"go.bug.st/serial"
)

// BaudRate is fixed by the module firmware: 9600 baud, 8N1.
const BaudRate = 9600

// Open configures device for AT traffic and returns the duplex. The
// returned port satisfies atcmd.Port; the caller owns closing it.
func Open(device string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", device, err)
	}
	return port, nil
}
