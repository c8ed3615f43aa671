package parser

import "fmt"

// UnexpectedTokenError reports an adjacency-grammar violation: the
// assembler saw a token type that is not legal following the previous
// one.
type UnexpectedTokenError struct {
	Seen  TokenType
	After TokenType
	Line  int
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("line %d: unexpected %s after %s", e.Line, e.Seen, e.After)
}

// UnknownMnemonicError reports an Instruction-shaped token whose text is
// not a recognised opcode.
type UnknownMnemonicError struct {
	Value string
	Line  int
}

func (e *UnknownMnemonicError) Error() string {
	return fmt.Sprintf("line %d: unknown mnemonic %q", e.Line, e.Value)
}

// UndefinedSymbolError reports a label reference that was still
// unresolved after the assembler's second pass.
type UndefinedSymbolError struct {
	Name string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q", e.Name)
}

// DataOffsetViolationError reports a data-section label resolving to an
// address below DATA_OFFSET.
type DataOffsetViolationError struct {
	Address int64
	Line    int
}

func (e *DataOffsetViolationError) Error() string {
	return fmt.Sprintf("line %d: data address 0x%X is below DATA_OFFSET", e.Line, e.Address)
}

// LexError reports a malformed lexical unit: an unterminated string or a
// label name over the bounded length. Unreachable from the current
// lexer (it never fails outright, only emits Unknown tokens), but kept
// as a distinguishable error kind per the error design.
type LexError struct {
	Message string
	Line    int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
