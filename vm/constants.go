// Package vm implements the register virtual machine (spec component
// C6): a fetch-decode-dispatch loop over a register file, an upward-
// growing LIFO call/operand stack, flat cell-addressed memory, and a
// three-state flag register, plus the syscall gateway (C7). The
// disassembler (C8) lives in package disasm.
package vm

// NumRegisters is the size of the general-purpose register file (AX,
// BX, CX, DX).
const NumRegisters = 4

// DefaultMemorySize is the VM's flat memory size in cells when the
// caller does not override it.
const DefaultMemorySize = 32768

// DefaultStackSize is the call/operand stack's depth in cells when the
// caller does not override it.
const DefaultStackSize = 2048
