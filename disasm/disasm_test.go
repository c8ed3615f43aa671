package disasm

import (
	"strings"
	"testing"

	"github.com/anthropic-labs/rvm/isa"
)

func TestInstructionNoOperand(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.HLT})
	if got != "HLT" {
		t.Errorf("got %q, want %q", got, "HLT")
	}
}

func TestInstructionImmReg(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.MOV, Sem: isa.ImmReg, Dst: int64(isa.AX), Src: 3})
	if got != "MOV AX, #3" {
		t.Errorf("got %q, want %q", got, "MOV AX, #3")
	}
}

func TestInstructionRegReg(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.ADD, Sem: isa.RegReg, Dst: int64(isa.BX), Src: int64(isa.AX)})
	if got != "ADD BX, AX" {
		t.Errorf("got %q, want %q", got, "ADD BX, AX")
	}
}

func TestInstructionMemOperand(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.MOV, Sem: isa.DstMem | isa.SrcReg, Dst: 0x10, Src: int64(isa.AX)})
	if got != "MOV [0x10], AX" {
		t.Errorf("got %q, want %q", got, "MOV [0x10], AX")
	}
}

func TestInstructionIndirectRegister(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.MOV, Sem: isa.DstReg | isa.SrcIReg, Dst: int64(isa.AX), Src: int64(isa.BX)})
	if got != "MOV AX, [BX]" {
		t.Errorf("got %q, want %q", got, "MOV AX, [BX]")
	}
}

func TestInstructionControlFlowRendersTargetAddress(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.JMP, Dst: 7})
	if got != "JMP 0x7" {
		t.Errorf("got %q, want %q", got, "JMP 0x7")
	}
}

func TestInstructionSingleOperand(t *testing.T) {
	got := Instruction(isa.Line{Op: isa.INC, Sem: isa.DstReg, Dst: int64(isa.CX)})
	if got != "INC CX" {
		t.Errorf("got %q, want %q", got, "INC CX")
	}
}

func TestProgramListsOneLinePerWordWithAddress(t *testing.T) {
	mov, err := isa.Encode(isa.Line{Op: isa.MOV, Sem: isa.ImmReg, Dst: int64(isa.AX), Src: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	hlt, err := isa.Encode(isa.Line{Op: isa.HLT})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := Program([]isa.Word{mov, hlt})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "0000: MOV AX, #1") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0001: HLT") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
