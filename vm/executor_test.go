package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anthropic-labs/rvm/isa"
	"github.com/anthropic-labs/rvm/loader"
	"github.com/anthropic-labs/rvm/vm"
)

func run(t *testing.T, src string) *vm.VM {
	t.Helper()
	m := vm.NewVM(0, 0)
	if err := loader.LoadProgram(m, []byte(src)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return m
}

// TestScenarioMovAddHlt is S1: mov ax,3 / add bx,ax / hlt leaves
// AX=3, BX=3, CX=0, DX=0 with flags Positive.
func TestScenarioMovAddHlt(t *testing.T) {
	m := run(t, ".main\nmov ax, 3\nadd bx, ax\nhlt\n")
	if m.Regs[isa.AX] != 3 || m.Regs[isa.BX] != 3 || m.Regs[isa.CX] != 0 || m.Regs[isa.DX] != 0 {
		t.Fatalf("unexpected regs: %+v", m.Regs)
	}
	if m.Flags != vm.FlagPositive {
		t.Errorf("flags = %v, want Positive", m.Flags)
	}
}

// TestScenarioDivByZeroFaults is S2: dividing by zero halts the VM with
// an error instead of panicking or producing a garbage result.
func TestScenarioDivByZeroFaults(t *testing.T) {
	m := vm.NewVM(0, 0)
	if err := loader.LoadProgram(m, []byte(".main\nmov ax, 8\ndiv ax, 0\nhlt\n")); err != nil {
		t.Fatalf("load: %v", err)
	}
	err := m.Run()
	if err == nil {
		t.Fatal("expected division-by-zero error, got nil")
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestScenarioCountdownLoop is S3: a ten-iteration decrement loop ends
// with AX==0 and the Zero flag set.
func TestScenarioCountdownLoop(t *testing.T) {
	src := `.main
mov ax, 10
loop:
dec ax
cmp ax, 0
jne loop
hlt
`
	m := run(t, src)
	if m.Regs[isa.AX] != 0 {
		t.Fatalf("AX = %d, want 0", m.Regs[isa.AX])
	}
	if m.Flags != vm.FlagZero {
		t.Errorf("flags = %v, want Zero", m.Flags)
	}
}

// TestCmpAgainstNonzeroComparand locks in that CMP sets flags from
// dst-src, not from dst's own sign: ax=3 is positive on its own, but
// 3-5 is negative, so the branch must be taken.
func TestCmpAgainstNonzeroComparand(t *testing.T) {
	src := `.main
mov ax, 3
cmp ax, 5
jlt taken
mov bx, 1
hlt
taken:
mov bx, 2
hlt
`
	m := run(t, src)
	if m.Regs[isa.BX] != 2 {
		t.Fatalf("BX = %d, want 2 (branch not taken on dst-src comparison)", m.Regs[isa.BX])
	}
}

// TestScenarioStackRoundTrip is S4: a push followed by a pop into a
// different register carries the value across, and the stack slot
// that held it is observable.
func TestScenarioStackRoundTrip(t *testing.T) {
	m := run(t, ".main\nmov ax, 32\npsh ax\npop dx\nhlt\n")
	if m.Stack[0] != 32 {
		t.Fatalf("stack[0] = %d, want 32", m.Stack[0])
	}
	if m.Regs[isa.DX] != 32 {
		t.Fatalf("DX = %d, want 32", m.Regs[isa.DX])
	}
	if m.SP != 0 {
		t.Errorf("SP = %d, want 0 after balanced push/pop", m.SP)
	}
}

// TestScenarioSyscallWrite is S5: writing a data-section string via the
// syscall gateway produces exactly that string on stdout.
func TestScenarioSyscallWrite(t *testing.T) {
	src := `.data
msg: db "Hi", 2
.main
mov bx, 1
mov cx, msg
mov dx, 2
syscall
hlt
`
	m := vm.NewVM(0, 0)
	if err := loader.LoadProgram(m, []byte(src)); err != nil {
		t.Fatalf("load: %v", err)
	}
	var out bytes.Buffer
	m.Stdout = &out
	if err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "Hi" {
		t.Fatalf("stdout = %q, want %q", out.String(), "Hi")
	}
}

// TestScenarioMemoryRoundTrip is S6: a computed value stored to a
// memory cell is readable back through a different register.
func TestScenarioMemoryRoundTrip(t *testing.T) {
	m := run(t, ".main\nmov ax, 3\nmul ax, 4\nmov [0x10], ax\nmov bx, [0x10]\nhlt\n")
	v, err := m.ReadMemory(0x10)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if v != 12 {
		t.Fatalf("memory[0x10] = %d, want 12", v)
	}
	if m.Regs[isa.BX] != 12 {
		t.Fatalf("BX = %d, want 12", m.Regs[isa.BX])
	}
}

func TestStackDisciplinePushPopOrdering(t *testing.T) {
	m := run(t, ".main\nmov ax, 1\nmov bx, 2\nmov cx, 3\npsh ax\npsh bx\npsh cx\npop ax\npop bx\npop cx\nhlt\n")
	if m.Regs[isa.AX] != 3 || m.Regs[isa.BX] != 2 || m.Regs[isa.CX] != 1 {
		t.Fatalf("LIFO pop order violated: AX=%d BX=%d CX=%d", m.Regs[isa.AX], m.Regs[isa.BX], m.Regs[isa.CX])
	}
}

func TestCallRetRoundTrip(t *testing.T) {
	src := `.main
call routine
mov bx, 99
hlt
routine:
mov ax, 7
ret
`
	m := run(t, src)
	if m.Regs[isa.AX] != 7 {
		t.Fatalf("AX = %d, want 7 (subroutine did not run)", m.Regs[isa.AX])
	}
	if m.Regs[isa.BX] != 99 {
		t.Fatalf("BX = %d, want 99 (did not return to call site)", m.Regs[isa.BX])
	}
}

func TestModByZeroFaults(t *testing.T) {
	m := vm.NewVM(0, 0)
	if err := loader.LoadProgram(m, []byte(".main\nmov ax, 5\nmod ax, 0\nhlt\n")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected modulo-by-zero error, got nil")
	}
}

func TestStackOverflowFaults(t *testing.T) {
	m := vm.NewVM(32, 1)
	if err := loader.LoadProgram(m, []byte(".main\nmov ax, 1\npsh ax\npsh ax\nhlt\n")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Run(); err != vm.ErrStackOverflow {
		t.Fatalf("err = %v, want ErrStackOverflow", err)
	}
}

func TestStackUnderflowFaults(t *testing.T) {
	m := vm.NewVM(32, 4)
	if err := loader.LoadProgram(m, []byte(".main\npop ax\nhlt\n")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Run(); err != vm.ErrStackUnderflow {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}
}

func TestOutOfBoundsMemoryFaults(t *testing.T) {
	m := vm.NewVM(8, 4)
	if err := loader.LoadProgram(m, []byte(".main\nmov [1000], ax\nhlt\n")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected out-of-bounds error, got nil")
	}
}

func TestFlagsAlwaysExactlyOneSetAfterArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want vm.FlagState
	}{
		{".main\nmov ax, 0\nsub ax, 0\nhlt\n", vm.FlagZero},
		{".main\nmov ax, 5\nsub ax, 1\nhlt\n", vm.FlagPositive},
		{".main\nmov ax, 1\nsub ax, 5\nhlt\n", vm.FlagNegative},
	}
	for _, c := range cases {
		m := run(t, c.src)
		if m.Flags != c.want {
			t.Errorf("src %q: flags = %v, want %v", c.src, m.Flags, c.want)
		}
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	m := vm.NewVM(0, 0)
	w, err := isa.Encode(isa.Line{Op: 31, Src: -1, Dst: -1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m.Code = []isa.Word{w}
	m.Running = true
	err = m.Step()
	if err == nil {
		t.Fatal("expected unknown-instruction error")
	}
	if m.Running {
		t.Error("VM should stop running after an unknown opcode")
	}
}
