package vm

import (
	"fmt"

	"github.com/anthropic-labs/rvm/isa"
)

// Run steps the VM until it halts, faults, or (if MaxCycles is set)
// exceeds its cycle budget.
func (m *VM) Run() error {
	for m.Running {
		if m.MaxCycles != 0 && m.Cycles >= m.MaxCycles {
			return fmt.Errorf("vm: exceeded max cycles (%d)", m.MaxCycles)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes, and dispatches exactly one instruction.
// Running off the end of the code stream without an explicit HLT is
// treated as a clean halt, matching the legal "HALT-only" empty-main
// case at the boundary.
func (m *VM) Step() error {
	if !m.Running {
		return nil
	}
	if m.PC < 0 || m.PC >= len(m.Code) {
		m.Running = false
		return nil
	}

	word := m.Code[m.PC]
	m.PC++
	line := isa.Decode(word)
	m.Cycles++

	return m.dispatch(line)
}

func (m *VM) dispatch(l isa.Line) error {
	switch l.Op {
	case isa.NOP:
		return nil

	case isa.CLF:
		m.Flags = FlagNone
		return nil

	case isa.CMP:
		a, err := m.getDst(l)
		if err != nil {
			return err
		}
		b, err := m.srcValue(l)
		if err != nil {
			return err
		}
		m.Flags = flagsFor(a - b)
		return nil

	case isa.MOV:
		v, err := m.srcValue(l)
		if err != nil {
			return err
		}
		if err := m.setDst(l, v); err != nil {
			return err
		}
		m.Flags = flagsFor(v)
		return nil

	case isa.PSH:
		v, err := m.operandValue(l)
		if err != nil {
			return err
		}
		return m.push(v)

	case isa.POP:
		v, err := m.pop()
		if err != nil {
			return err
		}
		return m.setDst(l, v)

	case isa.ADD, isa.SUB, isa.MUL:
		return m.arith(l, func(a, b int64) (int64, error) {
			switch l.Op {
			case isa.ADD:
				return a + b, nil
			case isa.SUB:
				return a - b, nil
			default:
				return a * b, nil
			}
		})

	case isa.DIV:
		return m.arith(l, func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, ErrDivByZero
			}
			return a / b, nil
		})

	case isa.MOD:
		return m.arith(l, func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, ErrDivByZero
			}
			return a % b, nil
		})

	case isa.INC:
		return m.incdec(l, 1)

	case isa.DEC:
		return m.incdec(l, -1)

	case isa.AND:
		return m.bitwise(l, func(a, b int64) int64 { return a & b })
	case isa.BOR:
		return m.bitwise(l, func(a, b int64) int64 { return a | b })
	case isa.XOR:
		return m.bitwise(l, func(a, b int64) int64 { return a ^ b })

	case isa.NOT:
		// Arithmetic negation, not bitwise complement: the mnemonic is
		// historical, matched to the source's observable behaviour
		// rather than its name.
		m.Regs[l.Dst] = -m.Regs[l.Src]
		return nil

	case isa.SHL:
		m.Regs[l.Dst] <<= uint64(m.Regs[l.Src])
		return nil
	case isa.SHR:
		m.Regs[l.Dst] >>= uint64(m.Regs[l.Src])
		return nil

	case isa.JMP:
		m.PC = int(l.Dst)
		return nil
	case isa.JEQ:
		return m.branchIf(l, jumpEQ)
	case isa.JNE:
		return m.branchIf(l, jumpNE)
	case isa.JLE:
		return m.branchIf(l, jumpLE)
	case isa.JLT:
		return m.branchIf(l, jumpLT)
	case isa.JGE:
		return m.branchIf(l, jumpGE)
	case isa.JGT:
		return m.branchIf(l, jumpGT)

	case isa.CALL:
		if err := m.push(int64(m.PC)); err != nil {
			return err
		}
		m.PC = int(l.Dst)
		return nil

	case isa.RET:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.PC = int(v)
		return nil

	case isa.SYSCALL:
		return m.syscall()

	case isa.HLT:
		m.Running = false
		return nil

	default:
		m.Running = false
		return fmt.Errorf("vm: opcode %d: %w", l.Op, ErrUnknownInstruction)
	}
}

func (m *VM) branchIf(l isa.Line, kind jumpKind) error {
	if takeBranch(kind, m.Flags) {
		m.PC = int(l.Dst)
	}
	return nil
}

// srcValue resolves the "src" operand's value per its semantic tag:
// register, memory, indirect-register, or a sign-extended immediate.
func (m *VM) srcValue(l isa.Line) (int64, error) {
	switch {
	case l.Sem.HasSrcReg():
		return m.Regs[l.Src], nil
	case l.Sem.HasSrcMem():
		return m.ReadMemory(l.Src)
	case l.Sem.HasSrcIReg():
		return m.ReadMemory(m.Regs[l.Src])
	default:
		return l.Src, nil
	}
}

// getDst reads the "dst" operand's current value (register or memory
// cell); it never applies an immediate interpretation, since dst is
// always an addressable location for the ops that use it.
func (m *VM) getDst(l isa.Line) (int64, error) {
	if l.Sem.HasDstReg() {
		return m.Regs[l.Dst], nil
	}
	return m.ReadMemory(l.Dst)
}

// setDst writes v to the "dst" operand's location.
func (m *VM) setDst(l isa.Line, v int64) error {
	if l.Sem.HasDstReg() {
		m.Regs[l.Dst] = v
		return nil
	}
	return m.WriteMemory(l.Dst, v)
}

// operandValue reads a single-operand instruction's lone operand,
// regardless of which field (dst or src) the assembler's seeding rule
// placed it in: Register/Address operands land in dst (DstReg/DstMem),
// an indirect-register or bare immediate lands in src.
func (m *VM) operandValue(l isa.Line) (int64, error) {
	switch {
	case l.Sem.HasDstReg():
		return m.Regs[l.Dst], nil
	case l.Sem.HasDstMem():
		return m.ReadMemory(l.Dst)
	default:
		return m.srcValue(l)
	}
}

func (m *VM) arith(l isa.Line, op func(a, b int64) (int64, error)) error {
	a, err := m.getDst(l)
	if err != nil {
		return err
	}
	b, err := m.srcValue(l)
	if err != nil {
		return err
	}
	v, err := op(a, b)
	if err != nil {
		m.Running = false
		return fmt.Errorf("vm: %w", err)
	}
	if err := m.setDst(l, v); err != nil {
		return err
	}
	m.Flags = flagsFor(v)
	return nil
}

func (m *VM) incdec(l isa.Line, delta int64) error {
	v, err := m.getDst(l)
	if err != nil {
		return err
	}
	v += delta
	if err := m.setDst(l, v); err != nil {
		return err
	}
	m.Flags = flagsFor(v)
	return nil
}

func (m *VM) bitwise(l isa.Line, op func(a, b int64) int64) error {
	m.Regs[l.Dst] = op(m.Regs[l.Dst], m.Regs[l.Src])
	return nil
}
