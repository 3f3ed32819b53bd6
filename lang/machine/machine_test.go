package machine

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/compiler"
	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

func intConst(n int64) ir.Operand {
	return ir.ConstOperand(ir.Constant{Kind: ir.ConstInt, Int: n, Typ: types.BuiltinType{Kind: types.Int}})
}

func run(t *testing.T, prog *ir.Program, stdout *bytes.Buffer) Value {
	t.Helper()
	compiled, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &Thread{Stdout: stdout}
	v, err := RunProgram(context.Background(), th, compiled)
	require.NoError(t, err)
	return v
}

// TestArithmeticScenario mirrors the "arithmetic expression" scenario:
// (2 + 3) * 4 - 6 == 14.
func TestArithmeticScenario(t *testing.T) {
	fn := ir.NewFunction("main")
	a := fn.AllocReg()
	b := fn.AllocReg()
	c := fn.AllocReg()

	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: a, Arith: ir.Add, Src1: intConst(2), Src2: intConst(3), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: b, Arith: ir.Mul, Src1: ir.RegOperand(a), Src2: intConst(4), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: c, Arith: ir.Sub, Src1: ir.RegOperand(b), Src2: intConst(6), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(c), HasValue: true})

	v := run(t, &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}, &bytes.Buffer{})
	require.Equal(t, int64(14), v.I)
}

// TestLoopSumScenario sums 1..10 with a C-style loop and expects 55.
func TestLoopSumScenario(t *testing.T) {
	fn := ir.NewFunction("main")
	i := fn.AllocReg()
	sum := fn.AllocReg()

	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: i, Src1: intConst(1)})
	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: sum, Src1: intConst(0)})

	condLabel := fn.NewLabel()
	stepLabel := fn.NewLabel()
	endLabel := fn.NewLabel()

	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: condLabel})
	cond := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpCompare, Dst: cond, Cmp: ir.Le, Src1: ir.RegOperand(i), Src2: intConst(10), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpCmpJump, Src1: ir.RegOperand(cond), L: endLabel})

	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: sum, Arith: ir.Add, Src1: ir.RegOperand(sum), Src2: ir.RegOperand(i), Typ: types.BuiltinType{Kind: types.Int}})

	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: stepLabel})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: i, Arith: ir.Add, Src1: ir.RegOperand(i), Src2: intConst(1), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpJump, L: condLabel})
	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: endLabel})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(sum), HasValue: true})

	v := run(t, &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}, &bytes.Buffer{})
	require.Equal(t, int64(55), v.I)
}

// TestFactorialScenario exercises recursive CALL dispatch: factorial(5) == 120.
func TestFactorialScenario(t *testing.T) {
	fact := ir.NewFunction("factorial")
	n := fact.AllocReg()
	fact.Params = append(fact.Params, ir.Param{Name: "n", Typ: types.BuiltinType{Kind: types.Int}, Reg: n})

	cond := fact.AllocReg()
	fact.Emit(ir.Instruction{Op: ir.OpCompare, Dst: cond, Cmp: ir.Le, Src1: ir.RegOperand(n), Src2: intConst(1), Typ: types.BuiltinType{Kind: types.Int}})
	elseLabel := fact.NewLabel()
	fact.Emit(ir.Instruction{Op: ir.OpCmpJump, Src1: ir.RegOperand(cond), L: elseLabel})
	fact.Emit(ir.Instruction{Op: ir.OpReturn, Src1: intConst(1), HasValue: true})
	fact.Emit(ir.Instruction{Op: ir.OpLabel, L: elseLabel})

	sub := fact.AllocReg()
	fact.Emit(ir.Instruction{Op: ir.OpBinary, Dst: sub, Arith: ir.Sub, Src1: ir.RegOperand(n), Src2: intConst(1), Typ: types.BuiltinType{Kind: types.Int}})
	rec := fact.AllocReg()
	fact.Emit(ir.Instruction{Op: ir.OpCall, Dst: rec, Name: "factorial", Args: []ir.Operand{ir.RegOperand(sub)}})
	res := fact.AllocReg()
	fact.Emit(ir.Instruction{Op: ir.OpBinary, Dst: res, Arith: ir.Mul, Src1: ir.RegOperand(n), Src2: ir.RegOperand(rec), Typ: types.BuiltinType{Kind: types.Int}})
	fact.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(res), HasValue: true})

	main := ir.NewFunction("main")
	r := main.AllocReg()
	main.Emit(ir.Instruction{Op: ir.OpCall, Dst: r, Name: "factorial", Args: []ir.Operand{intConst(5)}})
	main.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(r), HasValue: true})

	v := run(t, &ir.Program{Functions: []*ir.Function{fact, main}, Entry: "main"}, &bytes.Buffer{})
	require.Equal(t, int64(120), v.I)
}

// TestFloatDivisionDiffersFromIntDivision checks that 7/2 under int
// truncates but under double does not.
func TestFloatDivisionDiffersFromIntDivision(t *testing.T) {
	fn := ir.NewFunction("main")
	iQuot := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: iQuot, Arith: ir.Div, Src1: intConst(7), Src2: intConst(2), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(iQuot), HasValue: true})
	v := run(t, &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}, &bytes.Buffer{})
	require.Equal(t, int64(3), v.I)

	fn2 := ir.NewFunction("main")
	dQuot := fn2.AllocReg()
	dConst := func(f float64) ir.Operand {
		return ir.ConstOperand(ir.Constant{Kind: ir.ConstFloat, Float: f, Typ: types.BuiltinType{Kind: types.Double}})
	}
	fn2.Emit(ir.Instruction{Op: ir.OpBinary, Dst: dQuot, Arith: ir.Div, Src1: dConst(7), Src2: dConst(2), Typ: types.BuiltinType{Kind: types.Double}})
	fn2.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(dQuot), HasValue: true})
	v2 := run(t, &ir.Program{Functions: []*ir.Function{fn2}, Entry: "main"}, &bytes.Buffer{})
	require.InDelta(t, 3.5, v2.F, 0.0001)
}

// TestStringConcatPrintScenario checks `print("Hello" + " " + "World!")`.
func TestStringConcatPrintScenario(t *testing.T) {
	strConst := func(s string) ir.Operand {
		return ir.ConstOperand(ir.Constant{Kind: ir.ConstString, Str: s, Typ: types.BuiltinType{Kind: types.String}})
	}

	fn := ir.NewFunction("main")
	a := fn.AllocReg()
	b := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: a, Arith: ir.Concat, Src1: strConst("Hello"), Src2: strConst(" "), Typ: types.BuiltinType{Kind: types.String}})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: b, Arith: ir.Concat, Src1: ir.RegOperand(a), Src2: strConst("World!"), Typ: types.BuiltinType{Kind: types.String}})
	r := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpCall, Dst: r, Name: "print", Args: []ir.Operand{ir.RegOperand(b)}})
	fn.Emit(ir.Instruction{Op: ir.OpReturn})

	var out bytes.Buffer
	run(t, &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}, &out)
	require.Equal(t, "Hello World!", out.String())
}

// TestBreakThenPrintScenario: a loop that breaks when i==3, then prints i;
// expects stdout "3".
func TestBreakThenPrintScenario(t *testing.T) {
	fn := ir.NewFunction("main")
	i := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: i, Src1: intConst(0)})

	top := fn.NewLabel()
	brk := fn.NewLabel()

	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: top})
	cond := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpCompare, Dst: cond, Cmp: ir.Neq, Src1: ir.RegOperand(i), Src2: intConst(3), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpCmpJump, Src1: ir.RegOperand(cond), L: brk})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: i, Arith: ir.Add, Src1: ir.RegOperand(i), Src2: intConst(1), Typ: types.BuiltinType{Kind: types.Int}})
	fn.Emit(ir.Instruction{Op: ir.OpJump, L: top})
	fn.Emit(ir.Instruction{Op: ir.OpLabel, L: brk})

	r := fn.AllocReg()
	fn.Emit(ir.Instruction{Op: ir.OpCall, Dst: r, Name: "print", Args: []ir.Operand{ir.RegOperand(i)}})
	fn.Emit(ir.Instruction{Op: ir.OpReturn})

	var out bytes.Buffer
	run(t, &ir.Program{Functions: []*ir.Function{fn}, Entry: "main"}, &out)
	require.Equal(t, "3", out.String())
}

// TestStructFieldAndMethod exercises NEW_STRUCT/LOAD_FIELD/CALLM end to end.
func TestStructFieldAndMethod(t *testing.T) {
	prog := &compiler.Program{
		Structs: []*compiler.Struct{
			{Name: "Counter", FieldNames: []string{"n"}, FieldTypes: []types.Type{types.BuiltinType{Kind: types.Int}}},
		},
	}

	inc := &compiler.Func{
		Name: "Counter.inc", NumParams: 1, NumSlots: 1, IsMethod: true,
		Code: []compiler.Instr{
			{Op: compiler.R_LOAD, Slot: 0}, // push self
			{Op: compiler.R_LOAD, Slot: 0}, // push self (for field load)
			{Op: compiler.LOAD_FIELD, Name: "n"},
			{Op: compiler.I_CONST, Const: ir.Constant{Kind: ir.ConstInt, Int: 1}},
			{Op: compiler.I_ADD},
			{Op: compiler.STORE_FIELD, Name: "n"}, // pops value then self
			{Op: compiler.R_LOAD, Slot: 0},
			{Op: compiler.LOAD_FIELD, Name: "n"},
			{Op: compiler.RETURN, N: 1},
		},
	}

	main := &compiler.Func{
		Name: "main", NumSlots: 1,
		Code: []compiler.Instr{
			{Op: compiler.I_CONST, Const: ir.Constant{Kind: ir.ConstInt, Int: 41}},
			{Op: compiler.NEW_STRUCT, Name: "Counter", N: 1},
			{Op: compiler.R_STORE, Slot: 0},
			{Op: compiler.R_LOAD, Slot: 0},
			{Op: compiler.CALLM, Name: "inc", N: 0},
			{Op: compiler.RETURN, N: 1},
		},
	}
	prog.Funcs = []*compiler.Func{inc, main}
	prog.Entry = "main"

	th := &Thread{Stdout: &bytes.Buffer{}}
	v, err := RunProgram(context.Background(), th, prog)
	require.NoError(t, err)
	require.Equal(t, int64(42), v.I)
}
