package vm

import "errors"

// ErrDivByZero is the fault raised by DIV when the divisor is zero.
var ErrDivByZero = errors.New("division by zero")

// ErrUnknownInstruction is the fault raised when Step decodes an opcode
// outside the known set. Unreachable after a successful assembly; kept
// reachable here for a hand-built or corrupted code stream.
var ErrUnknownInstruction = errors.New("unknown instruction")

// ErrStackOverflow and ErrStackUnderflow guard the call/operand stack
// against running off either end of its fixed-size buffer. Not part of
// the spec's enumerated fault kinds, but required so a runaway program
// halts with a diagnostic instead of corrupting memory.
var ErrStackOverflow = errors.New("stack overflow")
var ErrStackUnderflow = errors.New("stack underflow")

// ErrOutOfBounds is returned by memory accesses outside [0, len(Memory)).
var ErrOutOfBounds = errors.New("memory address out of bounds")
