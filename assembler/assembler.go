// Package assembler implements the two-pass assembler (spec component
// C4): it walks a lexed token stream, enforces the adjacency grammar,
// interprets data-section directives, encodes main-section instructions,
// and backpatches forward label references into a program image.
package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropic-labs/rvm/image"
	"github.com/anthropic-labs/rvm/isa"
	"github.com/anthropic-labs/rvm/parser"
)

// multiplierOf maps a data-shape directive to the cell width it reserves.
func multiplierOf(directive string) int64 {
	switch strings.ToUpper(directive) {
	case "DB":
		return 1
	case "DW":
		return 2
	case "DD":
		return 4
	case "DQ":
		return 8
	default:
		return 1
	}
}

// adjacency is the Current -> allowed-next table from the assembler's
// grammar. Token types with no entry are unconstrained: anything may
// follow them (Section, Directive, Comma, and Unknown all fall through
// this way, matching the table in the component design, which lists
// only the constrained currents).
//
// Every Newline entry also admits EOF: a source file with no trailing
// newline after its last statement is not a grammar violation.
var adjacency = map[parser.TokenType][]parser.TokenType{
	parser.Label:       {parser.Label, parser.Constant, parser.Directive, parser.String, parser.Instruction, parser.Newline, parser.EOF},
	parser.Instruction: {parser.Constant, parser.Register, parser.Address, parser.Comment, parser.Newline, parser.EOF},
	parser.Register:    {parser.Constant, parser.Register, parser.Comma, parser.Comment, parser.Newline, parser.EOF},
	parser.String:      {parser.Comma, parser.Comment, parser.Newline, parser.EOF},
	parser.Constant:    {parser.Newline, parser.Comma, parser.Comment, parser.EOF},
	// Comma is added to Address's allowed-next set beyond the literal
	// table: `mov [0x10], ax` (a first-operand memory address followed
	// by a comma and a second operand) is a required scenario, and the
	// table as given has no transition that admits it.
	parser.Address: {parser.Comma, parser.Comment, parser.Newline, parser.EOF},
	parser.Comment: {parser.Newline, parser.EOF},
}

func allowed(cur, next parser.TokenType) bool {
	list, constrained := adjacency[cur]
	if !constrained {
		return true
	}
	for _, t := range list {
		if t == next {
			return true
		}
	}
	return false
}

// Assembler holds all state for one assembly: its own symbol table (per
// the concurrency model, never shared across compilations), the pending
// main-section instruction being accumulated, and the growing code/data
// buffers.
type Assembler struct {
	tokens []parser.Token
	pos    int

	syms *parser.SymbolTable

	code []isa.Word
	data []byte

	entryPoint int
	entrySet   bool

	currentDirective string

	havePrev bool
	prevType parser.TokenType
}

// New creates an Assembler over a token stream, owning a fresh symbol
// table.
func New(tokens []parser.Token) *Assembler {
	return &Assembler{
		tokens:           tokens,
		syms:             parser.NewSymbolTable(),
		currentDirective: "DB",
	}
}

// Assemble runs both passes over the supplied token stream and returns
// the resulting program image.
func Assemble(tokens []parser.Token) (*image.Image, error) {
	img, _, err := AssembleWithSymbols(tokens)
	return img, err
}

// AssembleWithSymbols assembles tokens exactly like Assemble, additionally
// returning the resolved label table. Tools that annotate addresses with
// names (the disassembler, `-dump-symbols`, the debugger's `break
// <label>`) need this; ordinary assemble-and-run callers don't.
func AssembleWithSymbols(tokens []parser.Token) (*image.Image, map[string]int64, error) {
	a := New(tokens)
	if err := a.pass1(); err != nil {
		return nil, nil, err
	}
	if err := a.pass2(); err != nil {
		return nil, nil, err
	}
	img := &image.Image{
		Code:       a.code,
		Data:       a.data,
		DataAddr:   isa.DataOffset,
		EntryPoint: a.entryPoint,
	}
	return img, a.syms.All(), nil
}

// checkAdjacency enforces the grammar for one token transition. The very
// first token of the stream has no predecessor to check against.
func (a *Assembler) checkAdjacency(tok parser.Token) error {
	if !a.havePrev {
		a.havePrev = true
		a.prevType = tok.Type
		return nil
	}
	if !allowed(a.prevType, tok.Type) {
		return &parser.UnexpectedTokenError{Seen: tok.Type, After: a.prevType, Line: tok.Line}
	}
	a.prevType = tok.Type
	return nil
}

// parseConstant parses a decimal or 0x-prefixed hex literal.
func parseConstant(text string) (int64, error) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		v, err := strconv.ParseInt(t[2:], 16, 64)
		return v, err
	}
	return strconv.ParseInt(t, 10, 64)
}

// pass1 walks the token stream once, emitting main-section instructions
// (with placeholder operands for not-yet-known labels) and building the
// data segment and symbol table. Forward label references are queued in
// the symbol table for pass2.
func (a *Assembler) pass1() error {
	var pending *pendingLine
	var dataLine *pendingData

	for a.pos < len(a.tokens) {
		tok := a.tokens[a.pos]
		a.pos++

		if err := a.checkAdjacency(tok); err != nil {
			return err
		}

		switch tok.Type {
		case parser.EOF:
			if pending != nil && pending.started {
				if err := a.emitPending(pending); err != nil {
					return err
				}
			}
			return nil

		case parser.Section:
			sec := strings.ToLower(tok.Value)
			if sec == ".main" && !a.entrySet {
				a.entryPoint = len(a.code)
				a.entrySet = true
			}

		case parser.Label:
			if tok.Section == parser.SectionMain {
				a.syms.Put(tok.Value, int64(len(a.code)))
			} else {
				dataLine = &pendingData{label: tok.Value, line: tok.Line}
			}

		case parser.Directive:
			if dataLine != nil {
				dataLine.directive = strings.ToUpper(tok.Value)
				a.currentDirective = dataLine.directive
			}

		case parser.String:
			if dataLine != nil {
				dataLine.literal = tok.Value
			}

		case parser.Comma:
			if dataLine != nil {
				dataLine.sawComma = true
			} else if pending != nil {
				pending.afterComma = true
			}

		case parser.Constant:
			if dataLine != nil {
				v, err := parseConstant(tok.Value)
				if err != nil {
					return fmt.Errorf("line %d: invalid constant %q: %w", tok.Line, tok.Value, err)
				}
				if dataLine.literal != "" && dataLine.sawComma {
					if err := a.emitStringData(dataLine, v); err != nil {
						return err
					}
					dataLine = nil
				} else if dataLine.directive != "" {
					if err := a.emitReservation(dataLine, v); err != nil {
						return err
					}
					dataLine = nil
				} else {
					if err := a.emitScalarData(dataLine, v); err != nil {
						return err
					}
					dataLine = nil
				}
			} else if pending != nil {
				v, err := parseConstant(tok.Value)
				if err != nil {
					return fmt.Errorf("line %d: invalid constant %q: %w", tok.Line, tok.Value, err)
				}
				pending.setImmediate(v)
			}

		case parser.Instruction:
			op, ok := isa.LookupMnemonic(tok.Value)
			if !ok {
				return &parser.UnknownMnemonicError{Value: tok.Value, Line: tok.Line}
			}
			pending = newPendingLine(op)
			if op.OperandCount() == 0 {
				if err := a.emitPending(pending); err != nil {
					return err
				}
				pending = nil
			}

		case parser.Register:
			if pending != nil {
				reg, _ := isa.LookupRegister(tok.Value)
				pending.setRegister(int64(reg))
			}

		case parser.Address:
			if pending != nil {
				if err := a.fillAddressOperand(pending, tok); err != nil {
					return err
				}
			}

		case parser.Newline, parser.Comment:
			if pending != nil && pending.started {
				if err := a.emitPending(pending); err != nil {
					return err
				}
				pending = nil
			}

		case parser.Unknown:
			if tok.Section == parser.SectionMain && pending == nil {
				return &parser.UnknownMnemonicError{Value: tok.Value, Line: tok.Line}
			}
			return fmt.Errorf("line %d: unrecognized token %q", tok.Line, tok.Value)
		}
	}
	if pending != nil && pending.started {
		if err := a.emitPending(pending); err != nil {
			return err
		}
	}
	return nil
}

// emitPending seals a pending main-section instruction into an encoded
// word and appends it to the code stream.
func (a *Assembler) emitPending(p *pendingLine) error {
	w, err := isa.Encode(p.line())
	if err != nil {
		return err
	}
	a.code = append(a.code, w)
	return nil
}

// resolveAddress resolves a bare address operand: a numeric literal
// resolves to itself (never subject to DataOffsetViolation — that check
// only applies to data-section label addresses); a name looks up the
// symbol table and is returned unresolved (false) if not yet known.
func (a *Assembler) resolveAddress(text string) (value int64, resolved bool, err error) {
	if len(text) > 0 && (isDigit(text[0])) {
		v, perr := parseConstant(text)
		if perr != nil {
			return 0, false, perr
		}
		return v, true, nil
	}
	if v, ok := a.syms.Get(text); ok {
		return v, true, nil
	}
	return 0, false, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// fillAddressOperand handles an Address token inside a main-section
// instruction: a bracketed register name is an indirect-register
// operand (always src, SrcIReg); anything else is a direct
// memory/label address, seeded into dst for a first operand and src for
// a second, per the same position rule Register/Constant use.
func (a *Assembler) fillAddressOperand(p *pendingLine, tok parser.Token) error {
	if reg, ok := isa.LookupRegister(tok.Value); ok {
		p.src = int64(reg)
		p.sem |= isa.SrcIReg
		p.srcFilled = true
		return nil
	}

	first := p.isFirstOperand()
	addr, resolved, err := a.resolveAddress(tok.Value)
	if err != nil {
		return err
	}

	if first {
		p.dst = addr
		p.sem |= isa.DstMem
		p.dstFilled = true
		if !resolved {
			a.syms.AddUnresolved(tok.Value, len(a.code), parser.FieldDst)
		}
		return nil
	}
	p.src = addr
	p.sem |= isa.SrcMem
	p.srcFilled = true
	if !resolved {
		a.syms.AddUnresolved(tok.Value, len(a.code), parser.FieldSrc)
	}
	return nil
}

// pass2 patches every outstanding forward reference now that the whole
// program has been scanned.
func (a *Assembler) pass2() error {
	for _, ref := range a.syms.Unresolved() {
		addr, ok := a.syms.Get(ref.Name)
		if !ok {
			return &parser.UndefinedSymbolError{Name: ref.Name}
		}
		var err error
		switch ref.Field {
		case parser.FieldDst:
			a.code[ref.Index], err = isa.PatchDst(a.code[ref.Index], addr)
		default:
			a.code[ref.Index], err = isa.PatchSrc(a.code[ref.Index], addr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
