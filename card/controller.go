package card

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/sdsim/disk"
	"github.com/sarchlab/sdsim/latency"
)

// cmdBufferCap bounds the command buffer. Every conforming frame is
// exactly FrameSize bytes; the extra headroom only exists to diagnose a
// runaway host before it scribbles further.
const cmdBufferCap = 32

// Stats holds protocol counters for the controller.
type Stats struct {
	// Frames is the number of command frames completed.
	Frames uint64
	// ReplyBytes is the number of reply bytes served, filler excluded.
	ReplyBytes uint64
	// BlocksRead is the number of single-block transfers started.
	BlocksRead uint64
}

// Controller is the card protocol state machine. It owns all protocol
// state and is driven exclusively through HandleCommandByte and
// HandleResponseByte, one byte transaction at a time; access is
// serialized by the bus abstraction, so no locking is needed.
type Controller struct {
	state  State
	cmd    [cmdBufferCap]byte
	cmdLen int

	// Reply cursors. At most one is active at a time; the controller
	// never interleaves two commands' response streams.
	cmd8Idx  int
	cmd58Idx int

	// blockIdx is -1 while no transfer is in progress, else the next
	// index into staged to serve.
	blockIdx int
	staged   [1 + disk.BlockSize]byte

	store *disk.Store
	lat   *latency.Model

	stats Stats
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithLatency sets a custom access latency model.
func WithLatency(m *latency.Model) Option {
	return func(c *Controller) {
		c.lat = m
	}
}

// New creates a Controller over the given block store. The default
// latency model stalls each block read by the reference 30ms.
func New(store *disk.Store, opts ...Option) *Controller {
	c := &Controller{
		state:    StateIdle,
		blockIdx: -1,
		store:    store,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.lat == nil {
		c.lat = latency.NewModel()
	}

	return c
}

// State returns the current framing state.
func (c *Controller) State() State {
	return c.state
}

// Stats returns the protocol counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// HandleCommandByte consumes one byte written by the host to the
// outgoing-data register.
//
// While a frame is being accumulated the byte is appended to the frame
// buffer; while idle it must be a recognized opcode or the fill byte.
// Errors
// indicate a non-conforming host and leave the controller in a state
// the caller should treat as fatal.
func (c *Controller) HandleCommandByte(value byte) error {
	if c.state != StateIdle && c.state != StateReady {
		if c.cmdLen >= cmdBufferCap {
			return fmt.Errorf("%w: %d bytes without a complete frame",
				ErrCommandOverflow, cmdBufferCap)
		}
		c.cmd[c.cmdLen] = value
		c.cmdLen++
		if c.cmdLen == cmdBufferCap {
			return fmt.Errorf("%w: %d bytes without a complete frame",
				ErrCommandOverflow, cmdBufferCap)
		}
		return nil
	}

	if value == FillByte {
		// Bus idle byte: no state change.
		return nil
	}

	if c.replyInProgress() {
		return fmt.Errorf("%w: opcode 0x%02X while replying to 0x%02X",
			ErrReplyInProgress, value, c.cmd[0])
	}

	next, ok := receivingState(value)
	if !ok {
		return fmt.Errorf("%w: opcode 0x%02X", ErrUnknownCommand, value)
	}

	c.cmd[0] = value
	c.cmdLen = 1
	c.state = next
	return nil
}

// HandleResponseByte produces one byte for the host's read of the
// incoming-data register.
//
// While the frame is still being collected it returns the fill byte,
// transitioning to StateReady on the read that finds all 6 frame bytes
// buffered. Once ready, it serves the reply stream for the buffered
// command and implicitly resets to StateIdle when the stream completes.
func (c *Controller) HandleResponseByte() (byte, error) {
	if c.state != StateReady {
		if c.state != StateIdle && c.cmdLen >= FrameSize {
			c.state = StateReady
			c.stats.Frames++
		}
		return FillByte, nil
	}

	b, err := c.dispatch()
	if err != nil {
		return 0, err
	}
	c.stats.ReplyBytes++
	return b, nil
}

// replyInProgress reports whether a multi-byte reply is partially
// consumed. Overlapping it with a new command is rejected rather than
// aborting the in-flight reply.
func (c *Controller) replyInProgress() bool {
	return c.state == StateReady &&
		(c.cmd8Idx > 0 || c.cmd58Idx > 0 || c.blockIdx >= 0)
}

// dispatch serves the next reply byte for the completed frame.
func (c *Controller) dispatch() (byte, error) {
	switch c.cmd[0] {
	case OpCmd0:
		c.reset()
		return 0x01, nil

	case OpCmd16, OpCmd55, OpAcmd41:
		c.reset()
		return 0x00, nil

	case OpCmd8:
		b := cmd8Reply[c.cmd8Idx]
		c.cmd8Idx++
		if c.cmd8Idx == len(cmd8Reply) {
			c.cmd8Idx = 0
			c.reset()
		}
		return b, nil

	case OpCmd58:
		b := cmd58Reply[c.cmd58Idx]
		c.cmd58Idx++
		if c.cmd58Idx == len(cmd58Reply) {
			c.cmd58Idx = 0
			c.reset()
		}
		return b, nil

	case OpCmd17:
		return c.serveBlock()

	default:
		return 0, fmt.Errorf("%w: opcode 0x%02X in completed frame",
			ErrUnknownCommand, c.cmd[0])
	}
}

// serveBlock runs the single-block read sub-protocol. On the first
// dispatch after frame completion it decodes the block number from the
// argument bytes (big-endian), stages start token plus 512 data bytes,
// and stalls for the configured block-read latency before the first
// byte is returned. Each subsequent call serves one staged byte; the
// 513th resets the controller for the next transfer.
func (c *Controller) serveBlock() (byte, error) {
	if c.blockIdx == -1 {
		blockNo := binary.BigEndian.Uint32(c.cmd[1:5])

		data, err := c.store.ReadBlock(blockNo)
		if err != nil {
			return 0, err
		}

		c.staged[0] = StartToken
		copy(c.staged[1:], data)

		c.lat.BlockRead()

		c.blockIdx = 0
		c.stats.BlocksRead++
	}

	b := c.staged[c.blockIdx]
	c.blockIdx++
	if c.blockIdx == len(c.staged) {
		c.blockIdx = -1
		c.reset()
	}
	return b, nil
}

// reset clears the command frame and returns to idle. Reply cursors are
// reset by their owners before calling.
func (c *Controller) reset() {
	c.cmdLen = 0
	c.state = StateIdle
}
