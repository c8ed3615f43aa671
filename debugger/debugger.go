// Package debugger implements an interactive, single-stepping front end
// over a running vm.VM: breakpoints, watchpoints, step/continue/next,
// and state inspection, grounded on the teacher's own CLI and TUI
// debugger (component C11). There is no expression evaluator here —
// targets are bare registers, labels, or numeric addresses.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropic-labs/rvm/isa"
	"github.com/anthropic-labs/rvm/vm"
)

// Debugger holds all state for one interactive debugging session.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	Running          bool
	StepMode         StepMode
	StepOverReturnPC int
	ShowRegisters    bool
	ShowFlags        bool

	// Symbols maps label names to code addresses, for `break <label>`
	// and disassembly annotation. Populated by LoadSymbols after
	// assembly.
	Symbols map[string]int64

	LastCommand string
	Output      strings.Builder
}

// StepMode selects what ShouldBreak is watching for.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
	StepOut
)

// NewDebugger creates a debugger wrapping machine, with a command
// history sized per historySize (0 uses the default).
func NewDebugger(machine *vm.VM, historySize int) *Debugger {
	return &Debugger{
		VM:            machine,
		Breakpoints:   NewBreakpointManager(),
		Watchpoints:   NewWatchpointManager(),
		History:       NewCommandHistoryWithSize(historySize),
		ShowRegisters: true,
		ShowFlags:     true,
		Symbols:       make(map[string]int64),
	}
}

// LoadSymbols installs a label->address table, typically the one
// AssembleWithSymbols returned for the program the debugger is running.
func (d *Debugger) LoadSymbols(symbols map[string]int64) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label to a code address, or parses a bare
// decimal or 0x-prefixed hex literal.
func (d *Debugger) ResolveAddress(s string) (int64, error) {
	if addr, exists := d.Symbols[s]; exists {
		return addr, nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return v, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return v, nil
}

// ExecuteCommand parses and runs one command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)

	case "set":
		return d.cmdSet(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the
// instruction at the VM's current PC runs.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver, StepOut:
		if pc == d.StepOverReturnPC {
			d.StepMode = StepNone
			return true, "step complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); changed {
		return true, fmt.Sprintf("watchpoint %d: %s changed to %d", wp.ID, isa.Register(wp.Register), wp.LastValue)
	}

	return false, ""
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver arranges to run until control returns to the instruction
// after the current one — a true "step over" only for CALL, otherwise
// equivalent to a single step.
func (d *Debugger) SetStepOver() {
	if d.VM.PC >= 0 && d.VM.PC < len(d.VM.Code) {
		line := isa.Decode(d.VM.Code[d.VM.PC])
		if line.Op == isa.CALL {
			d.StepOverReturnPC = d.VM.PC + 1
			d.StepMode = StepOver
			d.Running = true
			return
		}
	}
	d.StepMode = StepSingle
	d.Running = true
}

// SetStepOut runs until the current call returns: the return address CALL
// pushed sits at the top of the stack, so that's the target PC. Outside
// any call (empty stack) this falls back to a single step.
func (d *Debugger) SetStepOut() {
	if d.VM.SP <= 0 {
		d.StepMode = StepSingle
		d.Running = true
		return
	}
	d.StepOverReturnPC = int(d.VM.Stack[d.VM.SP-1])
	d.StepMode = StepOut
	d.Running = true
}
