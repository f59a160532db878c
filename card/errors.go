package card

import "errors"

// Protocol violations indicate a non-conforming host. The protocol has
// no error-response frame for malformed commands, so these surface as
// hard errors from the register-access entry points rather than being
// absorbed; masking them would desynchronize the controller from the
// host's expectations.
var (
	// ErrUnknownCommand is returned when a byte that is neither a
	// recognized opcode nor the fill byte arrives while idle, or when
	// a completed frame holds an opcode the dispatcher does not know.
	ErrUnknownCommand = errors.New("unknown card command")

	// ErrCommandOverflow is returned when the command buffer fills
	// without a frame ever completing.
	ErrCommandOverflow = errors.New("command buffer overflow")

	// ErrReplyInProgress is returned when a new command opcode arrives
	// while a multi-byte reply is only partially consumed.
	ErrReplyInProgress = errors.New("command started while reply in progress")
)
