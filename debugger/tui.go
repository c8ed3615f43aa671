package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/anthropic-labs/rvm/disasm"
	"github.com/anthropic-labs/rvm/isa"
)

// TUI is the interactive terminal front end for the debugger (component
// C12): registers, stack, disassembly, and source panes around a
// command line, grounded on the teacher's tview/tcell layout.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	StackView       *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	SourceLines []string
	SourceFile  string
}

// NewTUI creates a text user interface over dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.DisassemblyView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 9, 0, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[yellow]Stopped:[white] %s at PC=0x%X\n", reason, t.Debugger.VM.PC))
				break
			}
			if err := t.Debugger.VM.Step(); err != nil {
				t.WriteOutput(fmt.Sprintf("[red]Runtime error:[white] %v\n", err))
				t.Debugger.Running = false
				break
			}
			if !t.Debugger.VM.Running {
				t.Debugger.Running = false
				t.WriteOutput("Program halted\n")
				break
			}
		}
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output pane.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every pane from current VM state.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateStackView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView shows the loaded source text. There's no
// address->line map (the assembler doesn't produce one), so unlike the
// disassembly pane this view can't highlight the current instruction;
// it's a plain read-along reference.
func (t *TUI) UpdateSourceView() {
	if len(t.SourceLines) == 0 {
		t.SourceView.SetText("[yellow]No source loaded[white]")
		return
	}
	t.SourceView.SetText(strings.Join(t.SourceLines, "\n"))
}

// UpdateRegisterView shows the register file, PC, SP, and flags.
func (t *TUI) UpdateRegisterView() {
	m := t.Debugger.VM
	var lines []string

	var cols []string
	for r := isa.AX; r <= isa.DX; r++ {
		cols = append(cols, fmt.Sprintf("%-3s: 0x%X", r, m.Regs[r]))
	}
	lines = append(lines, strings.Join(cols, "  "))
	lines = append(lines, fmt.Sprintf("PC: 0x%X  SP: %d", m.PC, m.SP))
	lines = append(lines, fmt.Sprintf("Flags: %s", m.Flags))
	lines = append(lines, fmt.Sprintf("Cycles: %d", m.Cycles))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView shows the top of the call/operand stack.
func (t *TUI) UpdateStackView() {
	m := t.Debugger.VM
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]SP: %d[white]", m.SP))

	for i := m.SP - 1; i >= 0 && i >= m.SP-16; i-- {
		marker := "  "
		if i == m.SP-1 {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s [%d]: %d", marker, i, m.Stack[i]))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateDisassemblyView shows a window of decoded instructions around PC.
func (t *TUI) UpdateDisassemblyView() {
	m := t.Debugger.VM
	start := m.PC - 8
	if start < 0 {
		start = 0
	}
	end := m.PC + 16
	if end > len(m.Code) {
		end = len(m.Code)
	}

	var lines []string
	for addr := start; addr < end; addr++ {
		marker, color := "  ", "white"
		if addr == m.PC {
			marker, color = "->", "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		text := disasm.Instruction(isa.Decode(m.Code[addr]))
		if sym := t.findSymbolForAddress(int64(addr)); sym != "" {
			text += fmt.Sprintf("  <%s>", sym)
		}
		lines = append(lines, fmt.Sprintf("[%s]%s 0x%04X: %s[white]", color, marker, addr, text))
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView lists breakpoints and watchpoints together.
func (t *TUI) UpdateBreakpointsView() {
	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] 0x%X", bp.ID, color, status, bp.Address)
			if sym := t.findSymbolForAddress(int64(bp.Address)); sym != "" {
				line += fmt.Sprintf(" <%s>", sym)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: watch %s = %d", wp.ID, wp.Register, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) findSymbolForAddress(addr int64) string {
	for sym, symAddr := range t.Debugger.Symbols {
		if symAddr == addr {
			return sym
		}
	}
	return ""
}

// Run starts the TUI application's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]rvm debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop halts the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}

// LoadSource stores source text for the source pane.
func (t *TUI) LoadSource(filename string, lines []string) {
	t.SourceFile = filename
	t.SourceLines = lines
	t.UpdateSourceView()
}
