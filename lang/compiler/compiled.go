package compiler

import (
	"strings"

	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// Instr is one resolved bytecode instruction: a stack-machine operation plus
// whichever of its immediate operands the Opcode requires. Which fields are
// live is determined by Op, in the same way ir.Instruction's fields are
// interpreted by its own Op.
type Instr struct {
	Op Opcode

	Slot int // local slot index: *_LOAD/*_STORE
	Addr int // resolved instruction index: JMP/CJMP target
	N    int // argument/element count: CALL/CALLM/NEW_ARRAY/NEW_STRUCT/SYSCALL/RETURN (0 or 1)

	Name string // global/field/function/struct/syscall name

	Const ir.Constant // immediate value: *_CONST family
}

func (in Instr) String() string {
	switch in.Op {
	case B_LOAD, S_LOAD, I_LOAD, L_LOAD, F_LOAD, D_LOAD, R_LOAD,
		B_STORE, S_STORE, I_STORE, L_STORE, F_STORE, D_STORE, R_STORE:
		return in.Op.String() + " " + itoa(in.Slot)
	case JMP, CJMP:
		return in.Op.String() + " " + itoa(in.Addr)
	case CALL, CALLM, SYSCALL:
		return in.Op.String() + " " + in.Name + " " + itoa(in.N)
	case NEW_ARRAY:
		return in.Op.String() + " " + itoa(in.N)
	case NEW_STRUCT:
		return in.Op.String() + " " + in.Name + " " + itoa(in.N)
	case LOAD_FIELD, STORE_FIELD, G_LOAD, G_STORE:
		return in.Op.String() + " " + in.Name
	case RETURN:
		return in.Op.String() + " " + itoa(in.N)
	case B_CONST, S_CONST, I_CONST, L_CONST, F_CONST, D_CONST, STR_CONST, BOOL_CONST:
		return in.Op.String() + " " + in.Const.String()
	default:
		return in.Op.String()
	}
}

func itoa(n int) string {
	var sb strings.Builder
	if n < 0 {
		sb.WriteByte('-')
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
	}
	return sb.String()
}

// Func is one compiled function's bytecode body, sized for a fixed local
// slot frame (no register file: the VM addresses locals by slot the same
// way it addresses stack cells).
type Func struct {
	Name       string
	NumParams  int
	NumSlots   int
	IsMethod   bool
	ReturnType types.Type
	Code       []Instr
}

// Global is a module-level variable's compiled shape: its name, static
// type, and constant-folded initializer if the source expression allowed
// one to be computed at compile time.
type Global struct {
	Name string
	Typ  types.Type
	Init *ir.Constant
}

// Struct records field order and ancestry for the VM's instance layout and
// the backend's field-name-to-offset resolution.
type Struct struct {
	Name       string
	FieldNames []string
	FieldTypes []types.Type
	Parent     string
}

// Program is the full compiled unit the VM loads and runs.
type Program struct {
	Funcs   []*Func
	Globals []*Global
	Structs []*Struct
	Entry   string
}

// Func looks up a compiled function by name.
func (p *Program) Func(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
