// Package loader wires the lexer, assembler, and VM together: it turns
// source bytes into a running machine in one call, the way a small
// toolchain's driver code usually does.
package loader

import (
	"fmt"

	"github.com/anthropic-labs/rvm/assembler"
	"github.com/anthropic-labs/rvm/image"
	"github.com/anthropic-labs/rvm/parser"
	"github.com/anthropic-labs/rvm/vm"
)

// Assemble lexes and assembles source, returning the resulting image.
func Assemble(src []byte) (*image.Image, error) {
	lexer := parser.NewLexer(src)
	tokens := lexer.Tokens()

	img, err := assembler.Assemble(tokens)
	if err != nil {
		return nil, fmt.Errorf("loader: assemble failed: %w", err)
	}
	return img, nil
}

// LoadProgram assembles source and installs it into machine, ready to
// run from its entry point.
func LoadProgram(machine *vm.VM, src []byte) error {
	img, err := Assemble(src)
	if err != nil {
		return err
	}
	if err := machine.LoadImage(img); err != nil {
		return fmt.Errorf("loader: load failed: %w", err)
	}
	return nil
}
