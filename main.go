package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropic-labs/rvm/assembler"
	"github.com/anthropic-labs/rvm/config"
	"github.com/anthropic-labs/rvm/debugger"
	"github.com/anthropic-labs/rvm/disasm"
	"github.com/anthropic-labs/rvm/isa"
	"github.com/anthropic-labs/rvm/parser"
	"github.com/anthropic-labs/rvm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum CPU cycles before halt (0 uses config default)")
		memorySize  = flag.Int("memory-size", 0, "Memory size in cells (0 uses config default)")
		stackSize   = flag.Int("stack-size", 0, "Stack size in cells (0 uses config default)")
		entryPoint  = flag.Int("entry", -1, "Entry point instruction index (-1 uses the assembled .main address)")
		dumpTokens  = flag.Bool("dump-tokens", false, "Dump the lexed token stream and exit")
		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the resolved symbol table and exit")
		disassemble = flag.Bool("disasm", false, "Print disassembly and exit")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rvm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	src, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", asmFile, err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	} else if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}

	if *verboseMode {
		fmt.Printf("Assembling %s\n", asmFile)
	}

	lexer := parser.NewLexer(src)
	tokens := lexer.Tokens()

	if *dumpTokens {
		dumpTokenStream(tokens)
		os.Exit(0)
	}

	img, symbols, err := assembler.AssembleWithSymbols(tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Assembled %d instructions, %d data bytes, entry point %d\n",
			len(img.Code), len(img.Data), img.EntryPoint)
	}

	if *dumpSymbols {
		dumpSymbolTable(symbols, "")
		os.Exit(0)
	}

	if *disassemble {
		fmt.Print(disasm.Program(img.Code))
		os.Exit(0)
	}

	if *entryPoint >= 0 {
		img.EntryPoint = *entryPoint
	}

	memSize := cfg.Execution.MemorySize
	if *memorySize > 0 {
		memSize = *memorySize
	}
	stkSize := cfg.Execution.StackSize
	if *stackSize > 0 {
		stkSize = *stackSize
	}

	machine := vm.NewVM(memSize, stkSize)
	machine.MaxCycles = cfg.Execution.MaxCycles
	if *maxCycles > 0 {
		machine.MaxCycles = *maxCycles
	}

	if err := machine.LoadImage(img); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine, cfg.Debugger.HistorySize)
		dbg.LoadSymbols(symbols)
		dbg.ShowRegisters = cfg.Debugger.ShowRegisters
		dbg.ShowFlags = cfg.Debugger.ShowFlags

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("rvm debugger - type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", asmFile)
			fmt.Println()

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		os.Exit(0)
	}

	if *verboseMode {
		fmt.Println("Starting execution...")
	}

	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error at PC=%d: %v\n", machine.PC, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Println("Execution complete")
		fmt.Printf("Cycles: %d\n", machine.Cycles)
		fmt.Printf("AX: %d\n", machine.Regs[isa.AX])
	}

	os.Exit(0)
}

func printHelp() {
	fmt.Printf(`rvm %s

Usage: rvm [options] <assembly-file>

Options:
  -help              Show this help message
  -version           Show version information
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-cycles N      Maximum CPU cycles before halt (default from config)
  -memory-size N     Memory size in cells (default from config)
  -stack-size N      Stack size in cells (default from config)
  -entry N           Override the entry instruction index
  -dump-tokens       Dump the lexed token stream and exit
  -dump-symbols      Dump the resolved symbol table and exit
  -disasm            Print disassembly and exit
  -verbose           Enable verbose output
  -config PATH       Load a specific TOML config file

Examples:
  # Run a program directly
  rvm examples/hello.asm

  # Run with the CLI debugger
  rvm -debug examples/fibonacci.asm

  # Run with the TUI debugger
  rvm -tui examples/fibonacci.asm

  # Inspect assembled code without running it
  rvm -disasm examples/fibonacci.asm
  rvm -dump-symbols examples/fibonacci.asm

Debugger commands (when in -debug mode):
  run, r             Start program execution
  continue, c        Continue execution
  step, s            Execute single instruction
  next, n            Step over CALL
  break ADDR         Set breakpoint at address or label
  info registers     Show all registers
  print REG|[ADDR]   Show a register or memory cell
  help               Show debugger help
`, Version)
}

func dumpTokenStream(tokens []parser.Token) {
	for _, tok := range tokens {
		if tok.Type == parser.Newline {
			continue
		}
		fmt.Printf("%-6s %-10s %q (line %d)\n", tok.Section, tok.Type, tok.Value, tok.Line)
	}
}

func dumpSymbolTable(symbols map[string]int64, filename string) {
	writer := os.Stdout
	if filename != "" {
		f, err := os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating symbol file: %v\n", err)
			return
		}
		defer f.Close()
		writer = f
	}

	if len(symbols) == 0 {
		fmt.Fprintln(writer, "No symbols defined")
		return
	}

	fmt.Fprintln(writer, "Symbol Table")
	fmt.Fprintln(writer, "============")
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "%-30s %s\n", "Name", "Address")
	fmt.Fprintln(writer, strings.Repeat("-", 50))

	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return symbols[names[i]] < symbols[names[j]] })

	for _, name := range names {
		fmt.Fprintf(writer, "%-30s 0x%X\n", name, symbols[name])
	}

	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "Total symbols: %d\n", len(symbols))
}
