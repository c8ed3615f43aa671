package assembler

import "github.com/anthropic-labs/rvm/isa"

// pendingLine accumulates one main-section instruction as its operand
// tokens are consumed, before it is sealed into an isa.Word.
type pendingLine struct {
	op         isa.Opcode
	sem        isa.Semantic
	dst        int64
	src        int64
	dstFilled  bool
	srcFilled  bool
	afterComma bool
	started    bool
}

func newPendingLine(op isa.Opcode) *pendingLine {
	return &pendingLine{op: op, sem: isa.Atom, dst: -1, src: -1, started: true}
}

// isFirstOperand reports whether the next operand token is this
// instruction's first (pre-comma, nothing filled yet).
func (p *pendingLine) isFirstOperand() bool {
	return !p.afterComma && !p.dstFilled && !p.srcFilled
}

// setRegister places a register operand: the first operand of an
// instruction fills dst (seeded DstReg), a second (post-comma) operand
// fills src (SrcReg).
func (p *pendingLine) setRegister(idx int64) {
	if p.isFirstOperand() {
		p.dst = idx
		p.sem |= isa.DstReg
		p.dstFilled = true
		return
	}
	p.src = idx
	p.sem |= isa.SrcReg
	p.srcFilled = true
}

// setImmediate places a constant operand. Per the seeding rule, a
// Constant token always carries an SrcImm tag and fills src, regardless
// of its position (a bare constant is never a destination in this ISA).
func (p *pendingLine) setImmediate(v int64) {
	p.src = v
	p.sem |= isa.SrcImm
	p.srcFilled = true
}

// line returns the sealed isa.Line for this pending instruction.
func (p *pendingLine) line() isa.Line {
	return isa.Line{Op: p.op, Sem: p.sem, Dst: p.dst, Src: p.src}
}
