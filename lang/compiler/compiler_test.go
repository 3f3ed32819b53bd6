package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// add2and3 builds a tiny program computing 2 + 3 and returning it, to exercise
// the full Compile path: constant push, int-family add, return.
func add2and3() *ir.Program {
	fn := ir.NewFunction("main")
	a := fn.AllocReg()
	b := fn.AllocReg()
	c := fn.AllocReg()

	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: a,
		Src1: ir.ConstOperand(ir.Constant{Kind: ir.ConstInt, Int: 2, Typ: types.BuiltinType{Kind: types.Int}})})
	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: b,
		Src1: ir.ConstOperand(ir.Constant{Kind: ir.ConstInt, Int: 3, Typ: types.BuiltinType{Kind: types.Int}})})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: c, Arith: ir.Add,
		Src1: ir.RegOperand(a), Src2: ir.RegOperand(b), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(c), HasValue: true})

	return &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}
}

func TestCompileArithmetic(t *testing.T) {
	prog, err := Compile(add2and3())
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	fn := prog.Func("main")
	require.NotNil(t, fn)
	require.Equal(t, 3, fn.NumSlots) // a, b, c each get a distinct slot: all three are live simultaneously

	var ops []Opcode
	for _, in := range fn.Code {
		ops = append(ops, in.Op)
	}
	require.Contains(t, ops, I_CONST)
	require.Contains(t, ops, I_ADD)
	require.Contains(t, ops, R_STORE)
	require.Contains(t, ops, R_LOAD)
	require.Equal(t, RETURN, ops[len(ops)-1])
}

func TestCompileJumpResolvesLabel(t *testing.T) {
	fn := ir.NewFunction("loop")
	r := fn.AllocReg()
	top := fn.NewLabel()
	end := fn.NewLabel()

	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: r,
		Src1: ir.ConstOperand(ir.Constant{Kind: ir.ConstBool, Bool: true, Typ: types.BuiltinType{Kind: types.Boolean}})})
	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: top})
	fn.Emit(ir.Instruction{Op: ir.OpCmpJump, Src1: ir.RegOperand(r), L: end})
	fn.Emit(ir.Instruction{Op: ir.OpJump, L: top})
	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: end})
	fn.Emit(ir.Instruction{Op: ir.OpReturn})

	prog, err := Compile(&ir.Program{Functions: []*ir.Function{fn}})
	require.NoError(t, err)

	cf := prog.Func("loop")
	var jmp, cjmp *Instr
	for i := range cf.Code {
		switch cf.Code[i].Op {
		case JMP:
			jmp = &cf.Code[i]
		case CJMP:
			cjmp = &cf.Code[i]
		}
	}
	require.NotNil(t, jmp)
	require.NotNil(t, cjmp)
	// `top` sits right after the first load/store pair; `end` sits right
	// before the trailing return.
	require.Equal(t, R_LOAD, cf.Code[jmp.Addr].Op)
	require.Equal(t, RETURN, cf.Code[cjmp.Addr].Op)
}

func TestArithOpcodeFamilySelection(t *testing.T) {
	require.Equal(t, B_ADD, arithOpcode(types.BuiltinType{Kind: types.Byte}, ir.Add))
	require.Equal(t, D_NEG, arithOpcode(types.BuiltinType{Kind: types.Double}, ir.Neg))
	require.Equal(t, STR_CONCAT, arithOpcode(types.BuiltinType{Kind: types.String}, ir.Concat))
	require.Equal(t, I_MUL, arithOpcode(nil, ir.Mul)) // unresolved type falls back to int
}

func TestConstOpcodeSelection(t *testing.T) {
	require.Equal(t, STR_CONST, constOpcode(types.BuiltinType{Kind: types.String}))
	require.Equal(t, BOOL_CONST, constOpcode(types.BuiltinType{Kind: types.Boolean}))
	require.Equal(t, L_CONST, constOpcode(types.BuiltinType{Kind: types.Long}))
}

func TestDisassembleIncludesFunctionHeader(t *testing.T) {
	prog, err := Compile(add2and3())
	require.NoError(t, err)
	out := Disassemble(prog)
	require.True(t, strings.Contains(out, "function: main"))
	require.True(t, strings.Contains(out, "i_add"))
}
