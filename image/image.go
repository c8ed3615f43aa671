// Package image defines the program image the assembler produces and
// the virtual machine consumes: an encoded instruction stream, a data
// byte segment, and the entry instruction index.
package image

import "github.com/anthropic-labs/rvm/isa"

// Image is the output of a successful assembly: everything the VM needs
// to start running a program.
type Image struct {
	// Code is the encoded instruction stream.
	Code []isa.Word
	// Data is the raw bytes reserved/initialised by the data section.
	Data []byte
	// DataAddr is the base address (isa.DataOffset) data labels were
	// resolved against.
	DataAddr int64
	// EntryPoint is the instruction index execution begins at, recorded
	// when the .main section was first seen.
	EntryPoint int
}
