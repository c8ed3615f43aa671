package parser

// maxSymbolNameLen bounds a stored label name, per the data model.
const maxSymbolNameLen = 64

// OperandField identifies which operand slot of a pending instruction an
// unresolved label reference will patch.
type OperandField int

const (
	FieldDst OperandField = iota
	FieldSrc
)

// UnresolvedRef pairs a referenced label name with the index of the
// instruction whose operand needs patching once the label resolves, and
// which operand field to patch.
type UnresolvedRef struct {
	Name  string
	Index int
	Field OperandField
}

// SymbolTable maps label names to addresses, and tracks label
// references seen before their definition. It is scoped to a single
// assembly: the design explicitly rejects a shared global table, so
// every Assembler owns its own instance.
type SymbolTable struct {
	resolved   map[string]int64
	unresolved []UnresolvedRef
}

// NewSymbolTable returns an empty, ready-to-use symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{resolved: make(map[string]int64)}
}

func truncateName(name string) string {
	if len(name) > maxSymbolNameLen {
		return name[:maxSymbolNameLen]
	}
	return name
}

// Put binds name to offset. A duplicate definition overwrites the prior
// binding: the last definition wins.
func (st *SymbolTable) Put(name string, offset int64) {
	st.resolved[truncateName(name)] = offset
}

// Get looks up a resolved label's address.
func (st *SymbolTable) Get(name string) (int64, bool) {
	v, ok := st.resolved[truncateName(name)]
	return v, ok
}

// AddUnresolved records that the instruction at index references name in
// the given operand field, which is not yet (or not ever, until
// resolution) a known label.
func (st *SymbolTable) AddUnresolved(name string, index int, field OperandField) {
	st.unresolved = append(st.unresolved, UnresolvedRef{Name: truncateName(name), Index: index, Field: field})
}

// Unresolved returns every outstanding backpatch request, in the order
// they were recorded.
func (st *SymbolTable) Unresolved() []UnresolvedRef {
	return st.unresolved
}

// All returns a copy of every resolved label binding, for tools (the
// disassembler, `-dump-symbols`, the debugger) that want to annotate
// addresses with their names after assembly.
func (st *SymbolTable) All() map[string]int64 {
	out := make(map[string]int64, len(st.resolved))
	for k, v := range st.resolved {
		out[k] = v
	}
	return out
}
