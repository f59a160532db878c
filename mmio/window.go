// Package mmio exposes the card controller as two byte-wide registers
// inside a memory-mapped window, matching the SiFive-E QSPI1 layout the
// reference firmware drives.
package mmio

import (
	"fmt"

	"github.com/sarchlab/sdsim/card"
)

// Register offsets within the window, relative to the device's mapped
// base. The absolute base address is a platform/board concern.
const (
	// TxData is the outgoing-data register: each host write delivers
	// one command byte to the controller.
	TxData = 0x48

	// RxData is the incoming-data register: each host read pulls one
	// response byte from the controller.
	RxData = 0x4C

	// WindowSize is the size of the device's address window.
	WindowSize = 0x1000
)

// Window adapts a card.Controller to register-level access. All other
// offsets in the window are reserved: writes are ignored and reads
// return 0 with no side effect.
type Window struct {
	controller *card.Controller
}

// NewWindow creates a register window over the given controller.
func NewWindow(controller *card.Controller) *Window {
	return &Window{controller: controller}
}

// Controller returns the underlying protocol controller.
func (w *Window) Controller() *card.Controller {
	return w.controller
}

// Write handles a host store to the window. Only the low byte of the
// value is meaningful; stores anywhere but TxData are silently ignored.
func (w *Window) Write(offset uint64, value uint64) error {
	if offset >= WindowSize {
		return fmt.Errorf("write offset 0x%X outside device window", offset)
	}
	if offset != TxData {
		return nil
	}
	return w.controller.HandleCommandByte(byte(value & 0xFF))
}

// Read handles a host load from the window. Reads of RxData return the
// controller's next response byte masked to 8 bits.
func (w *Window) Read(offset uint64) (uint64, error) {
	if offset >= WindowSize {
		return 0, fmt.Errorf("read offset 0x%X outside device window", offset)
	}
	if offset != RxData {
		return 0, nil
	}

	b, err := w.controller.HandleResponseByte()
	if err != nil {
		return 0, err
	}
	return uint64(b) & 0xFF, nil
}
