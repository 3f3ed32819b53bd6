// Package compiler translates a built and register-allocated lang/ir
// Program into the VM's fixed bytecode catalog, and provides a
// pseudo-assembly textual form for disassembling a compiled Program.
package compiler

import "fmt"

// Increment this to force recompilation of any saved bytecode files.
const Version = 0

// Opcode is one instruction in the VM's fixed catalog, grouped by
// primitive-type width (B_/S_/I_/L_/F_/D_) for the families where width
// affects runtime behavior (arithmetic overflow and rounding), plus
// reference/stack/flow/register/system families that operate uniformly on
// the VM's boxed Value regardless of its static width.
type Opcode uint8

// "x PUSH x y" is a stack picture describing the operand stack before and
// after execution. OP<n> denotes an immediate operand: an index into the
// slot, constant, name or address space named in the comment.
const ( //nolint:revive
	NOP Opcode = iota // - NOP -

	// --- stack ---
	POP //   x POP -
	DUP //   x DUP x x

	// --- push / constant ---
	B_CONST // - B_CONST<const> x
	S_CONST // - S_CONST<const> x
	I_CONST // - I_CONST<const> x
	L_CONST // - L_CONST<const> x
	F_CONST // - F_CONST<const> x
	D_CONST // - D_CONST<const> x
	STR_CONST  // - STR_CONST<const> x
	BOOL_CONST // - BOOL_CONST<0|1> x

	// --- register (locals) ---
	B_LOAD  // - B_LOAD<slot>  x
	B_STORE //  x B_STORE<slot> -
	S_LOAD
	S_STORE
	I_LOAD
	I_STORE
	L_LOAD
	L_STORE
	F_LOAD
	F_STORE
	D_LOAD
	D_STORE
	R_LOAD  // reference-typed local (string, array, struct, any)
	R_STORE

	// --- global ---
	G_LOAD  // - G_LOAD<global>  x
	G_STORE //  x G_STORE<global> -

	// --- arithmetic, per width ---
	B_ADD
	B_SUB
	B_MUL
	B_DIV
	B_MOD
	B_NEG
	S_ADD
	S_SUB
	S_MUL
	S_DIV
	S_MOD
	S_NEG
	I_ADD
	I_SUB
	I_MUL
	I_DIV
	I_MOD
	I_NEG
	L_ADD
	L_SUB
	L_MUL
	L_DIV
	L_MOD
	L_NEG
	F_ADD
	F_SUB
	F_MUL
	F_DIV
	F_MOD
	F_NEG
	D_ADD
	D_SUB
	D_MUL
	D_DIV
	D_MOD
	D_NEG
	STR_CONCAT // a b STR_CONCAT a+b

	// --- comparison (width-independent: compares boxed Values directly) ---
	CMP_EQ
	CMP_NE
	CMP_LT
	CMP_LE
	CMP_GT
	CMP_GE

	// --- reference ---
	NEW_ARRAY  // x1..xn NEW_ARRAY<n> array
	NEW_STRUCT // x1..xn NEW_STRUCT<n,struct> inst
	LOAD_INDEX //    a i LOAD_INDEX elem
	STORE_INDEX // a i v STORE_INDEX -
	LOAD_FIELD //    a LOAD_FIELD<name> v
	STORE_FIELD // a v STORE_FIELD<name> -

	// --- flow ---
	JMP     // - JMP<addr> -
	CJMP    // cond CJMP<addr> -       jumps if cond is false
	CALL    // args.. CALL<func,n> [result]
	CALLM   // recv args.. CALLM<name,n> [result]
	RETURN  // [value] RETURN -
	HALT    // - HALT -

	// --- system ---
	SYSCALL // args.. SYSCALL<id,n> [result]

	maxOpcode
)

var opcodeNames = [...]string{
	NOP: "nop", POP: "pop", DUP: "dup",
	B_CONST: "b_const", S_CONST: "s_const", I_CONST: "i_const", L_CONST: "l_const",
	F_CONST: "f_const", D_CONST: "d_const", STR_CONST: "str_const", BOOL_CONST: "bool_const",
	B_LOAD: "b_load", B_STORE: "b_store", S_LOAD: "s_load", S_STORE: "s_store",
	I_LOAD: "i_load", I_STORE: "i_store", L_LOAD: "l_load", L_STORE: "l_store",
	F_LOAD: "f_load", F_STORE: "f_store", D_LOAD: "d_load", D_STORE: "d_store",
	R_LOAD: "r_load", R_STORE: "r_store",
	G_LOAD: "g_load", G_STORE: "g_store",
	B_ADD: "b_add", B_SUB: "b_sub", B_MUL: "b_mul", B_DIV: "b_div", B_MOD: "b_mod", B_NEG: "b_neg",
	S_ADD: "s_add", S_SUB: "s_sub", S_MUL: "s_mul", S_DIV: "s_div", S_MOD: "s_mod", S_NEG: "s_neg",
	I_ADD: "i_add", I_SUB: "i_sub", I_MUL: "i_mul", I_DIV: "i_div", I_MOD: "i_mod", I_NEG: "i_neg",
	L_ADD: "l_add", L_SUB: "l_sub", L_MUL: "l_mul", L_DIV: "l_div", L_MOD: "l_mod", L_NEG: "l_neg",
	F_ADD: "f_add", F_SUB: "f_sub", F_MUL: "f_mul", F_DIV: "f_div", F_MOD: "f_mod", F_NEG: "f_neg",
	D_ADD: "d_add", D_SUB: "d_sub", D_MUL: "d_mul", D_DIV: "d_div", D_MOD: "d_mod", D_NEG: "d_neg",
	STR_CONCAT: "str_concat",
	CMP_EQ: "cmp_eq", CMP_NE: "cmp_ne", CMP_LT: "cmp_lt", CMP_LE: "cmp_le", CMP_GT: "cmp_gt", CMP_GE: "cmp_ge",
	NEW_ARRAY: "new_array", NEW_STRUCT: "new_struct", LOAD_INDEX: "load_index",
	STORE_INDEX: "store_index", LOAD_FIELD: "load_field", STORE_FIELD: "store_field",
	JMP: "jmp", CJMP: "cjmp", CALL: "call", CALLM: "callm", RETURN: "return", HALT: "halt",
	SYSCALL: "syscall",
}

var reverseOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

func (op Opcode) String() string {
	if op < maxOpcode {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// LookupOpcode returns the Opcode named by s, for the assembler.
func LookupOpcode(s string) (Opcode, bool) {
	op, ok := reverseOpcode[s]
	return op, ok
}
