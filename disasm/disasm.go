// Package disasm renders an assembled code stream back into readable
// text: one line per instruction, column-aligned address, mnemonic, and
// operands (spec component C8).
package disasm

import (
	"fmt"
	"strings"

	"github.com/anthropic-labs/rvm/isa"
)

// controlFlow reports whether op's dst is a code address rather than an
// operand addressed through its semantic tag.
func controlFlow(op isa.Opcode) bool {
	switch op {
	case isa.JMP, isa.JEQ, isa.JNE, isa.JLE, isa.JLT, isa.JGE, isa.JGT, isa.CALL:
		return true
	default:
		return false
	}
}

func dstText(sem isa.Semantic, v int64) (string, bool) {
	switch {
	case sem.HasDstReg():
		return isa.Register(v).String(), true
	case sem.HasDstMem():
		return fmt.Sprintf("[0x%X]", v), true
	default:
		return "", false
	}
}

func srcText(sem isa.Semantic, v int64) (string, bool) {
	switch {
	case sem.HasSrcReg():
		return isa.Register(v).String(), true
	case sem.HasSrcMem():
		return fmt.Sprintf("[0x%X]", v), true
	case sem.HasSrcIReg():
		return fmt.Sprintf("[%s]", isa.Register(v).String()), true
	case sem.HasSrcImm():
		return fmt.Sprintf("#%d", v), true
	default:
		return "", false
	}
}

// Instruction renders one decoded line, with no leading address.
func Instruction(l isa.Line) string {
	if controlFlow(l.Op) {
		return fmt.Sprintf("%s 0x%X", l.Op, l.Dst)
	}

	switch l.Op.OperandCount() {
	case 0:
		return l.Op.String()

	case 1:
		if text, ok := dstText(l.Sem, l.Dst); ok {
			return fmt.Sprintf("%s %s", l.Op, text)
		}
		if text, ok := srcText(l.Sem, l.Src); ok {
			return fmt.Sprintf("%s %s", l.Op, text)
		}
		return l.Op.String()

	default:
		dst, _ := dstText(l.Sem, l.Dst)
		src, _ := srcText(l.Sem, l.Src)
		return fmt.Sprintf("%s %s, %s", l.Op, dst, src)
	}
}

// Program renders an entire code stream, one address-prefixed line per
// word, matching the column layout the teacher's formatter uses for
// source text rather than encoded instructions.
func Program(code []isa.Word) string {
	var b strings.Builder
	for addr, w := range code {
		fmt.Fprintf(&b, "%04X: %s\n", addr, Instruction(isa.Decode(w)))
	}
	return b.String()
}
