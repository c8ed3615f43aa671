package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/anthropic-labs/rvm/image"
	"github.com/anthropic-labs/rvm/isa"
)

// VM is the register virtual machine's whole runtime state: the code it
// is executing, its register file, call/operand stack, flat memory, and
// condition flags.
type VM struct {
	Code []isa.Word

	PC      int
	Regs    [NumRegisters]int64
	SP      int
	Stack   []int64
	Memory  []int64
	Flags   FlagState
	Running bool

	// MaxCycles bounds Run's fetch-decode-dispatch loop; zero means
	// unlimited. Cycles counts instructions executed by the most recent
	// Run/Step sequence.
	MaxCycles uint64
	Cycles    uint64

	// Stdin and Stdout back SYSCALL's read/write cases. They default to
	// the process's own streams in NewVM; tests substitute buffers.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewVM allocates a VM with the given memory and stack sizes, falling
// back to the package defaults for non-positive values.
func NewVM(memorySize, stackSize int) *VM {
	if memorySize <= 0 {
		memorySize = DefaultMemorySize
	}
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	return &VM{
		Memory: make([]int64, memorySize),
		Stack:  make([]int64, stackSize),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// LoadImage resets the VM and installs a freshly assembled program:
// registers, stack, and memory are zeroed, the data segment is copied
// into memory starting at DATA_OFFSET*2, the indirection table at
// [DATA_OFFSET, DATA_OFFSET*2) is populated so that a data label's
// resolved address (an index into that table) yields the real data
// pointer on load, and PC is set to the image's entry point.
func (m *VM) LoadImage(img *image.Image) error {
	for i := range m.Regs {
		m.Regs[i] = 0
	}
	for i := range m.Stack {
		m.Stack[i] = 0
	}
	for i := range m.Memory {
		m.Memory[i] = 0
	}

	m.Code = img.Code
	m.SP = 0
	m.Flags = FlagNone
	m.Cycles = 0

	realBase := int64(isa.DataOffset * 2)
	if len(img.Data) > 0 && realBase+int64(len(img.Data)) > int64(len(m.Memory)) {
		return fmt.Errorf("vm: data segment of %d bytes does not fit in %d-cell memory", len(img.Data), len(m.Memory))
	}
	for i, b := range img.Data {
		m.Memory[realBase+int64(i)] = int64(b)
		m.Memory[isa.DataOffset+int64(i)] = realBase + int64(i)
	}

	m.PC = img.EntryPoint
	m.Running = true
	return nil
}
