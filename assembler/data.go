package assembler

import (
	"fmt"

	"github.com/anthropic-labs/rvm/isa"
	"github.com/anthropic-labs/rvm/parser"
)

// pendingData accumulates one data-section declaration: a label and
// whatever combination of directive/string/constant follows it.
type pendingData struct {
	label     string
	line      int
	directive string
	literal   string
	sawComma  bool
}

// nextDataAddr is the address the next byte appended to a.data would
// live at.
func (a *Assembler) nextDataAddr() int64 {
	return isa.DataOffset + int64(len(a.data))
}

func (a *Assembler) checkDataOffset(addr int64, line int) error {
	if addr < isa.DataOffset {
		return &parser.DataOffsetViolationError{Address: addr, Line: line}
	}
	return nil
}

// emitReservation handles `label: directive constant`: reserve
// constant*multiplier(directive) zero bytes at the current data
// address.
func (a *Assembler) emitReservation(dl *pendingData, count int64) error {
	addr := a.nextDataAddr()
	if err := a.checkDataOffset(addr, dl.line); err != nil {
		return err
	}
	mult := multiplierOf(dl.directive)
	n := count * mult
	if n < 0 {
		return fmt.Errorf("line %d: negative reservation size for %q", dl.line, dl.label)
	}
	a.data = append(a.data, make([]byte, n)...)
	a.syms.Put(dl.label, addr)
	return nil
}

// emitStringData handles `label: directive string_literal, length`:
// copy length bytes of the literal, then a NUL terminator.
func (a *Assembler) emitStringData(dl *pendingData, length int64) error {
	addr := a.nextDataAddr()
	if err := a.checkDataOffset(addr, dl.line); err != nil {
		return err
	}
	if length < 0 || length > int64(len(dl.literal)) {
		return fmt.Errorf("line %d: string length %d exceeds literal %q", dl.line, length, dl.literal)
	}
	a.data = append(a.data, []byte(dl.literal[:length])...)
	a.data = append(a.data, 0)
	a.syms.Put(dl.label, addr)
	return nil
}

// emitScalarData handles `label: constant` with no directive on this
// statement: store the constant's low multiplier(currentDirective)
// bytes, little-endian.
func (a *Assembler) emitScalarData(dl *pendingData, v int64) error {
	addr := a.nextDataAddr()
	if err := a.checkDataOffset(addr, dl.line); err != nil {
		return err
	}
	mult := multiplierOf(a.currentDirective)
	uv := uint64(v)
	for i := int64(0); i < mult; i++ {
		a.data = append(a.data, byte(uv>>(8*uint(i))))
	}
	a.syms.Put(dl.label, addr)
	return nil
}
