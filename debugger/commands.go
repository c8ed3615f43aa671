package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropic-labs/rvm/disasm"
	"github.com/anthropic-labs/rvm/isa"
)

// cmdRun sets the VM running from its current PC. It does not rewind PC
// to the entry point.
func (d *Debugger) cmdRun(args []string) error {
	d.Running = true
	d.StepMode = StepNone
	d.VM.Running = true
	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution from the current PC.
func (d *Debugger) cmdContinue(args []string) error {
	if !d.VM.Running {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over a CALL instruction, otherwise behaves like step.
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish runs until the current call returns.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint at an address or label.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label>")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(int(address), false)
	d.Printf("Breakpoint %d at 0x%X\n", bp.ID, address)
	return nil
}

// cmdTBreak sets a one-shot breakpoint.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(int(address), true)
	d.Printf("Temporary breakpoint %d at 0x%X\n", bp.ID, address)
	return nil
}

// cmdDelete deletes one breakpoint, or all of them with no argument.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a register.
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register>")
	}

	reg, ok := isa.LookupRegister(args[0])
	if !ok {
		return fmt.Errorf("not a register: %s", args[0])
	}

	wp := d.Watchpoints.AddWatchpoint(reg, d.VM)
	d.Printf("Watchpoint %d: %s (currently %d)\n", wp.ID, reg, wp.LastValue)
	return nil
}

// cmdPrint prints a register's or memory cell's value.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <register|address>")
	}

	if reg, ok := isa.LookupRegister(args[0]); ok {
		v := d.VM.Regs[reg]
		d.Printf("%s = 0x%X (%d)\n", reg, v, v)
		return nil
	}

	addr, err := d.ResolveAddress(strings.TrimSuffix(strings.TrimPrefix(args[0], "["), "]"))
	if err != nil {
		return err
	}
	v, err := d.VM.ReadMemory(addr)
	if err != nil {
		return err
	}
	d.Printf("[0x%X] = 0x%X (%d)\n", addr, v, v)
	return nil
}

// cmdExamine dumps a run of memory cells starting at an address.
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <address> [count]")
	}

	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	count := int64(8)
	if len(args) > 1 {
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err == nil && n > 0 {
			count = n
		}
	}

	d.Printf("0x%X:", addr)
	for i := int64(0); i < count; i++ {
		v, err := d.VM.ReadMemory(addr + i)
		if err != nil {
			break
		}
		d.Printf(" 0x%X", v)
	}
	d.Println()
	return nil
}

// cmdInfo shows a category of program state.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|flags|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "flags", "f":
		return d.showFlags()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for r := isa.AX; r <= isa.DX; r++ {
		d.Printf("  %-3s = 0x%X (%d)\n", r, d.VM.Regs[r], d.VM.Regs[r])
	}
	d.Printf("  PC  = 0x%X\n", d.VM.PC)
	d.Printf("  SP  = 0x%X\n", d.VM.SP)
	return nil
}

func (d *Debugger) showFlags() error {
	d.Printf("Flags: %s\n", d.VM.Flags)
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		d.Printf("  %d: 0x%X %s%s (hit %d times)\n", bp.ID, bp.Address, status, temp, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s %s (hit %d times, last value: %d)\n", wp.ID, wp.Register, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

func (d *Debugger) showStack() error {
	d.Printf("Stack (SP = %d):\n", d.VM.SP)
	for i := d.VM.SP - 1; i >= 0 && i >= d.VM.SP-16; i-- {
		d.Printf("  [%d]: %d\n", i, d.VM.Stack[i])
	}
	return nil
}

// cmdList disassembles a window of code around the current PC.
func (d *Debugger) cmdList(args []string) error {
	start := d.VM.PC - 5
	if start < 0 {
		start = 0
	}
	end := d.VM.PC + 10
	if end > len(d.VM.Code) {
		end = len(d.VM.Code)
	}

	for addr := start; addr < end; addr++ {
		marker := "  "
		if addr == d.VM.PC {
			marker = "=>"
		}
		if d.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}
		d.Printf("%s 0x%04X: %s\n", marker, addr, disasm.Instruction(isa.Decode(d.VM.Code[addr])))
	}
	return nil
}

// cmdSet writes a register or memory cell.
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <register|address> = <value>")
	}

	value, err := strconv.ParseInt(args[2], 0, 64)
	if err != nil {
		return fmt.Errorf("invalid value: %s", args[2])
	}

	if reg, ok := isa.LookupRegister(args[0]); ok {
		d.VM.Regs[reg] = value
		d.Printf("%s set to %d\n", reg, value)
		return nil
	}

	addr, err := d.ResolveAddress(strings.TrimSuffix(strings.TrimPrefix(args[0], "["), "]"))
	if err != nil {
		return err
	}
	if err := d.VM.WriteMemory(addr, value); err != nil {
		return err
	}
	d.Printf("[0x%X] set to %d\n", addr, value)
	return nil
}

// cmdReset sets PC to instruction 0 and clears Running. Registers, stack,
// memory and flags keep their values, and an entry point other than 0 is
// not restored.
func (d *Debugger) cmdReset(args []string) error {
	d.VM.PC = 0
	d.VM.Running = false
	d.Println("VM reset")
	return nil
}

// cmdHelp displays help information.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println("Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over CALL")
	d.Println("  finish (fin)      - Run until the current call returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <reg>   - Watch a register for changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <reg|addr> - Show a register or memory cell")
	d.Println("  x <addr> [count]     - Dump memory cells")
	d.Println("  info (i) <what>      - Show registers/flags/breakpoints/watchpoints/stack")
	d.Println("  list (l)             - Disassemble around PC")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <reg|addr> = <val> - Modify a register or memory cell")
	d.Println()
	d.Println("Control:")
	d.Println("  reset             - Reset the VM")
	d.Println("  help (h, ?)       - Show this help")
	return nil
}
