// Package host drives the card through its register window the way the
// reference firmware does: shift a 6-byte frame out, poll for the first
// non-filler byte, then collect the rest of the reply.
package host

import (
	"fmt"

	"github.com/sarchlab/sdsim/card"
	"github.com/sarchlab/sdsim/disk"
	"github.com/sarchlab/sdsim/mmio"
)

// maxPolls bounds the filler bytes tolerated before the first reply
// byte. The emulated controller answers after a single filler read; the
// headroom mirrors firmware retry loops.
const maxPolls = 64

// Driver issues card commands through a register window.
type Driver struct {
	window *mmio.Window
}

// NewDriver creates a Driver over the given register window.
func NewDriver(window *mmio.Window) *Driver {
	return &Driver{window: window}
}

// Init runs the SPI-mode initialization handshake: CMD0, CMD8, CMD58,
// CMD55, ACMD41, CMD16. It fails on the first unexpected reply byte.
func (d *Driver) Init() error {
	steps := []struct {
		name  string
		frame [card.FrameSize]byte
		want  []byte
	}{
		{"CMD0", [6]byte{0x40, 0x00, 0x00, 0x00, 0x00, 0x95}, []byte{0x01}},
		{"CMD8", [6]byte{0x48, 0x00, 0x00, 0x01, 0xAA, 0x87},
			[]byte{0x01, 0x00, 0x00, 0x01, 0xAA}},
		{"CMD58", [6]byte{0x7A, 0x00, 0x00, 0x00, 0x00, 0xFF},
			[]byte{0x00, 0xC0, 0xFF, 0x80, 0x00}},
		{"CMD55", [6]byte{0x77, 0x00, 0x00, 0x00, 0x00, 0xFF}, []byte{0x00}},
		{"ACMD41", [6]byte{0x69, 0x40, 0x00, 0x00, 0x00, 0xFF}, []byte{0x00}},
		{"CMD16", [6]byte{0x50, 0x00, 0x00, 0x02, 0x00, 0xFF}, []byte{0x00}},
	}

	for _, step := range steps {
		reply, err := d.exchange(step.frame, len(step.want))
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		for i, want := range step.want {
			if reply[i] != want {
				return fmt.Errorf(
					"%s: reply byte %d is 0x%02X, want 0x%02X",
					step.name, i, reply[i], want)
			}
		}
	}

	return nil
}

// ReadBlock issues CMD17 for the given block and returns its 512 bytes.
func (d *Driver) ReadBlock(blockNo uint32) ([]byte, error) {
	frame := [card.FrameSize]byte{
		card.OpCmd17,
		byte(blockNo >> 24),
		byte(blockNo >> 16),
		byte(blockNo >> 8),
		byte(blockNo),
		0xFF,
	}

	reply, err := d.exchange(frame, 1+disk.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("CMD17 block %d: %w", blockNo, err)
	}
	if reply[0] != card.StartToken {
		return nil, fmt.Errorf(
			"CMD17 block %d: token is 0x%02X, want 0x%02X",
			blockNo, reply[0], card.StartToken)
	}

	return reply[1:], nil
}

// exchange shifts the frame out, polls past filler bytes, and collects
// a reply of the given length starting with the first non-filler byte.
func (d *Driver) exchange(frame [card.FrameSize]byte, replyLen int) ([]byte, error) {
	for _, b := range frame {
		if err := d.window.Write(mmio.TxData, uint64(b)); err != nil {
			return nil, err
		}
	}

	first, err := d.poll()
	if err != nil {
		return nil, err
	}

	reply := make([]byte, 0, replyLen)
	reply = append(reply, first)
	for len(reply) < replyLen {
		v, err := d.window.Read(mmio.RxData)
		if err != nil {
			return nil, err
		}
		reply = append(reply, byte(v))
	}

	return reply, nil
}

// poll reads the incoming-data register until a non-filler byte shows
// up.
func (d *Driver) poll() (byte, error) {
	for i := 0; i < maxPolls; i++ {
		v, err := d.window.Read(mmio.RxData)
		if err != nil {
			return 0, err
		}
		if byte(v) != card.FillByte {
			return byte(v), nil
		}
	}
	return 0, fmt.Errorf("no reply after %d polls", maxPolls)
}
