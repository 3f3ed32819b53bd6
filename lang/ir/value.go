package ir

import (
	"fmt"

	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// ConstKind tags which field of Constant holds the value.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstBool
)

// Constant is a typed immediate value produced by lowering a
// NumberLiteral/StringLiteral/BoolLiteral AST node.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Typ   types.Type
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	default:
		return "?"
	}
}

// OperandKind tags which field of Operand is live.
type OperandKind uint8

const (
	OperandReg OperandKind = iota
	OperandConst
	OperandGlobal
)

// Operand is a source value fed into an instruction: a virtual register, an
// immediate Constant, or a named global.
type Operand struct {
	Kind   OperandKind
	Reg    Reg
	Const  Constant
	Global string
}

func RegOperand(r Reg) Operand       { return Operand{Kind: OperandReg, Reg: r} }
func ConstOperand(c Constant) Operand { return Operand{Kind: OperandConst, Const: c} }
func GlobalOperand(name string) Operand { return Operand{Kind: OperandGlobal, Global: name} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandReg:
		return o.Reg.String()
	case OperandConst:
		return o.Const.String()
	case OperandGlobal:
		return "@" + o.Global
	default:
		return "?"
	}
}
