package ir

import (
	"fmt"
	"strings"

	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// Op identifies the kind of an Instruction. The comment beside each constant
// sketches its operand picture, in the same style the backend's opcode
// catalog (lang/compiler) documents stack effects.
type Op uint8

const ( //nolint:revive
	OpLoadConst Op = iota // Dst = Const
	OpMove                // Dst = Src1
	OpLoadGlobal          // Dst = globals[Name]
	OpStoreGlobal         // globals[Name] = Src1
	OpBinary              // Dst = Src1 Arith Src2
	OpUnary               // Dst = Arith Src1
	OpCompare             // Dst = Src1 Cmp Src2   (bool)
	OpLabel               // marks L as a jump target; no operands
	OpJump                // pc = L
	OpCmpJump             // if Src1 is false: pc = L
	OpCall                // [Dst =] call Name(Args...)
	OpCallMethod          // [Dst =] Src1.Name(Args...)
	OpReturn              // return [Src1]
	OpNewArray            // Dst = new Typ[Args...]
	OpNewStruct           // Dst = new Name(Args...)
	OpLoadIndex           // Dst = Src1[Src2]
	OpStoreIndex          // Src1[Src2] = Src3
	OpLoadField           // Dst = Src1.Name
	OpStoreField          // Src1.Name = Src2
)

var opNames = [...]string{
	OpLoadConst: "loadconst", OpMove: "move", OpLoadGlobal: "loadglobal",
	OpStoreGlobal: "storeglobal", OpBinary: "binary", OpUnary: "unary",
	OpCompare: "compare", OpLabel: "label", OpJump: "jump", OpCmpJump: "cmpjump",
	OpCall: "call", OpCallMethod: "callmethod", OpReturn: "return",
	OpNewArray: "newarray", OpNewStruct: "newstruct", OpLoadIndex: "loadindex",
	OpStoreIndex: "storeindex", OpLoadField: "loadfield", OpStoreField: "storefield",
}

func (op Op) String() string { return opNames[op] }

// Instruction is a single IR operation. Not every field applies to every
// Op; see the stack-picture comment on the Op constant for which fields are
// live.
type Instruction struct {
	Op Op

	Dst Reg

	Src1 Operand
	Src2 Operand
	Src3 Operand

	Arith ArithOp
	Cmp   CmpOp

	L Label

	Name string // global name / field name / called function name / struct type name
	Args []Operand

	HasValue bool // for OpReturn: whether Src1 carries a value

	Typ types.Type // result type, used by lang/compiler to pick a width-specific opcode family
}

func (in Instruction) String() string {
	switch in.Op {
	case OpLoadConst:
		return fmt.Sprintf("%s = loadconst %s", in.Dst, in.Src1)
	case OpMove:
		return fmt.Sprintf("%s = move %s", in.Dst, in.Src1)
	case OpLoadGlobal:
		return fmt.Sprintf("%s = loadglobal %s", in.Dst, in.Name)
	case OpStoreGlobal:
		return fmt.Sprintf("storeglobal %s = %s", in.Name, in.Src1)
	case OpBinary:
		return fmt.Sprintf("%s = %s %s, %s", in.Dst, in.Arith, in.Src1, in.Src2)
	case OpUnary:
		return fmt.Sprintf("%s = %s %s", in.Dst, in.Arith, in.Src1)
	case OpCompare:
		return fmt.Sprintf("%s = %s %s, %s", in.Dst, in.Cmp, in.Src1, in.Src2)
	case OpLabel:
		return fmt.Sprintf("%s:", in.L)
	case OpJump:
		return fmt.Sprintf("jump %s", in.L)
	case OpCmpJump:
		return fmt.Sprintf("cmpjump %s, %s", in.Src1, in.L)
	case OpCall:
		return fmt.Sprintf("%s = call %s(%s)", in.Dst, in.Name, joinOperands(in.Args))
	case OpCallMethod:
		return fmt.Sprintf("%s = callmethod %s.%s(%s)", in.Dst, in.Src1, in.Name, joinOperands(in.Args))
	case OpReturn:
		if !in.HasValue {
			return "return"
		}
		return fmt.Sprintf("return %s", in.Src1)
	case OpNewArray:
		return fmt.Sprintf("%s = newarray %s[%s]", in.Dst, in.Typ, joinOperands(in.Args))
	case OpNewStruct:
		return fmt.Sprintf("%s = newstruct %s(%s)", in.Dst, in.Name, joinOperands(in.Args))
	case OpLoadIndex:
		return fmt.Sprintf("%s = %s[%s]", in.Dst, in.Src1, in.Src2)
	case OpStoreIndex:
		return fmt.Sprintf("%s[%s] = %s", in.Src1, in.Src2, in.Src3)
	case OpLoadField:
		return fmt.Sprintf("%s = %s.%s", in.Dst, in.Src1, in.Name)
	case OpStoreField:
		return fmt.Sprintf("%s.%s = %s", in.Src1, in.Name, in.Src2)
	default:
		return "?"
	}
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}
