package vm

import (
	"bufio"
	"io"
	"strconv"

	"github.com/anthropic-labs/rvm/isa"
)

// syscall dispatches on Regs[BX]: 0 reads, 1 writes, 64 parses a decimal
// string. Any other value is a no-op. I/O failures are swallowed rather
// than surfaced to the running program, matching a guest's inability to
// see anything finer than "the bytes did or didn't show up".
func (m *VM) syscall() error {
	switch m.Regs[isa.BX] {
	case 0:
		return m.sysRead()
	case 1:
		return m.sysWrite()
	case 64:
		return m.sysAtoi()
	default:
		return nil
	}
}

// sysRead reads Regs[DX] bytes from Stdin into memory starting at
// Regs[CX]. A short read (including EOF) simply stores however many
// bytes arrived; the rest of the destination cells are left untouched.
func (m *VM) sysRead() error {
	n := m.Regs[isa.DX]
	addr := m.Regs[isa.CX]
	if n <= 0 {
		return nil
	}

	buf := make([]byte, n)
	read, _ := io.ReadFull(m.Stdin, buf)
	for i := 0; i < read; i++ {
		if err := m.WriteMemory(addr+int64(i), int64(buf[i])); err != nil {
			return nil
		}
	}
	return nil
}

// sysWrite writes Regs[DX] bytes from memory starting at Regs[CX] to
// Stdout and flushes.
func (m *VM) sysWrite() error {
	n := m.Regs[isa.DX]
	addr := m.Regs[isa.CX]
	if n <= 0 {
		return nil
	}

	buf := make([]byte, n)
	for i := int64(0); i < n; i++ {
		v, err := m.ReadMemory(addr + i)
		if err != nil {
			return nil
		}
		buf[i] = byte(v)
	}

	w := bufio.NewWriter(m.Stdout)
	_, _ = w.Write(buf)
	_ = w.Flush()
	return nil
}

// sysAtoi parses the NUL-terminated digit string at memory Regs[CX] and
// stores the result in Regs[AX]. A malformed string yields zero rather
// than a VM fault.
func (m *VM) sysAtoi() error {
	addr := m.Regs[isa.CX]

	var digits []byte
	for {
		v, err := m.ReadMemory(addr)
		if err != nil || v == 0 {
			break
		}
		digits = append(digits, byte(v))
		addr++
	}

	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		n = 0
	}
	m.Regs[isa.AX] = n
	return nil
}
