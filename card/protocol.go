// Package card emulates an SD card controller in SPI mode, as seen by
// a host that shifts fixed 6-byte command frames out one register and
// polls reply bytes back in through another.
//
// Command set (frame => reply):
//
//	CMD0   {0x40, 0x00, 0x00, 0x00, 0x00, 0x95} => 0x01
//	CMD8   {0x48, 0x00, 0x00, 0x01, 0xAA, 0x87} => 0x01 0x00 0x00 0x01 0xAA
//	CMD16  {0x50, 0x00, 0x00, 0x02, 0x00, 0xFF} => 0x00
//	CMD58  {0x7A, 0x00, 0x00, 0x00, 0x00, 0xFF} => 0x00 0xC0 0xFF 0x80 0x00
//	CMD55  {0x77, 0x00, 0x00, 0x00, 0x00, 0xFF} => 0x00
//	ACMD41 {0x69, 0x40, 0x00, 0x00, 0x00, 0xFF} => 0x00
//	CMD17  {0x51, arg3, arg2, arg1, arg0, 0xFF} => 0xFE + 512 data bytes
package card

// Command opcodes recognized while the controller is idle.
const (
	OpCmd0   byte = 0x40 // go idle
	OpCmd8   byte = 0x48 // send interface condition
	OpCmd16  byte = 0x50 // set block length
	OpCmd17  byte = 0x51 // read single block
	OpAcmd41 byte = 0x69 // send operating condition
	OpCmd55  byte = 0x77 // application command prefix
	OpCmd58  byte = 0x7A // read OCR
)

const (
	// FillByte is the bus idle/dummy byte. Hosts write it to clock the
	// bus and read it back while no reply byte is pending.
	FillByte byte = 0xFF

	// StartToken precedes the 512 data bytes of a block-read transfer.
	StartToken byte = 0xFE

	// FrameSize is the length of every command frame: opcode, four
	// argument bytes, trailer.
	FrameSize = 6
)

// Fixed multi-byte reply tables.
var (
	cmd8Reply  = [5]byte{0x01, 0x00, 0x00, 0x01, 0xAA}
	cmd58Reply = [5]byte{0x00, 0xC0, 0xFF, 0x80, 0x00}
)

// State identifies the controller's position in the command framing
// protocol.
type State int

const (
	// StateIdle means no command frame is in flight.
	StateIdle State = iota
	// StateReady means a complete frame is buffered and reply bytes
	// are being served.
	StateReady
	// Receiving states accumulate the remaining frame bytes of the
	// named command.
	StateReceivingCmd0
	StateReceivingCmd8
	StateReceivingCmd16
	StateReceivingCmd55
	StateReceivingCmd58
	StateReceivingAcmd41
	StateReceivingCmd17
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReady:
		return "Ready"
	case StateReceivingCmd0:
		return "ReceivingCmd0"
	case StateReceivingCmd8:
		return "ReceivingCmd8"
	case StateReceivingCmd16:
		return "ReceivingCmd16"
	case StateReceivingCmd55:
		return "ReceivingCmd55"
	case StateReceivingCmd58:
		return "ReceivingCmd58"
	case StateReceivingAcmd41:
		return "ReceivingAcmd41"
	case StateReceivingCmd17:
		return "ReceivingCmd17"
	default:
		return "Unknown"
	}
}

// receivingState maps an opcode to the state that accumulates its
// frame. The second return value is false for unrecognized opcodes.
func receivingState(opcode byte) (State, bool) {
	switch opcode {
	case OpCmd0:
		return StateReceivingCmd0, true
	case OpCmd8:
		return StateReceivingCmd8, true
	case OpCmd16:
		return StateReceivingCmd16, true
	case OpCmd17:
		return StateReceivingCmd17, true
	case OpAcmd41:
		return StateReceivingAcmd41, true
	case OpCmd55:
		return StateReceivingCmd55, true
	case OpCmd58:
		return StateReceivingCmd58, true
	default:
		return StateIdle, false
	}
}
