package ir

import (
	"strings"

	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// Param is a single IR function parameter, bound to a fixed virtual
// register for the lifetime of the function.
type Param struct {
	Name string
	Typ  types.Type
	Reg  Reg
}

// Function is one Snow function or struct method lowered to a flat
// instruction list.
type Function struct {
	Name       string // qualified as "module.function", or "struct.method"
	Params     []Param
	ReturnType types.Type
	IsMethod   bool
	OwnerField string // not set by Build; when IsMethod, the receiver (self) is r0

	Locals []Reg // every virtual register the body declares, in declaration order

	Instrs []Instruction

	nextReg   int
	nextLabel int
}

func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// AllocReg reserves and returns the next unused virtual register.
func (f *Function) AllocReg() Reg {
	r := Reg(f.nextReg)
	f.nextReg++
	return r
}

// NewLabel reserves and returns the next unused label.
func (f *Function) NewLabel() Label {
	l := Label(f.nextLabel)
	f.nextLabel++
	return l
}

// Emit appends in to the function's instruction list and returns its index.
func (f *Function) Emit(in Instruction) int {
	f.Instrs = append(f.Instrs, in)
	return len(f.Instrs) - 1
}

// NumRegs returns the count of virtual registers allocated in this
// function.
func (f *Function) NumRegs() int { return f.nextReg }

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("function ")
	sb.WriteString(f.Name)
	sb.WriteRune('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Typ.String())
	}
	sb.WriteString("): ")
	if f.ReturnType != nil {
		sb.WriteString(f.ReturnType.String())
	} else {
		sb.WriteString("void")
	}
	sb.WriteString(" {\n")
	for _, in := range f.Instrs {
		if in.Op == OpLabel {
			sb.WriteString(in.String())
		} else {
			sb.WriteRune('\t')
			sb.WriteString(in.String())
		}
		sb.WriteRune('\n')
	}
	sb.WriteString("}")
	return sb.String()
}

// Global is a module-level variable.
type Global struct {
	Name string
	Typ  types.Type
	Init *Constant // nil if the initializer is not a compile-time constant
}

// StructLayout records a struct type's field order, used by the VM to lay
// out instances and by the backend to resolve field offsets.
type StructLayout struct {
	Name       string
	FieldNames []string
	FieldTypes []types.Type
	Parent     string // empty if no base struct
}

// Program is the complete lowered output for one compiled source file: all
// functions (free functions and struct methods alike, flattened into one
// namespace), globals and struct layouts.
type Program struct {
	Functions []*Function
	Globals   []*Global
	Structs   []*StructLayout
	Entry     string // name of the function to invoke first, e.g. "main" or "_start"
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, g := range p.Globals {
		sb.WriteString("global ")
		sb.WriteString(g.Name)
		sb.WriteString(": ")
		sb.WriteString(g.Typ.String())
		sb.WriteRune('\n')
	}
	for _, fn := range p.Functions {
		sb.WriteString(fn.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}
