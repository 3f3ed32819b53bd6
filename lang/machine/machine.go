package machine

import (
	"fmt"
	"math"

	"github.com/jcnc-org/Snow-sub005/lang/compiler"
	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// machine holds the state shared across every frame of one program run:
// the compiled program itself, its globals, and the struct ancestry table
// CALLM uses to resolve an inherited method to the function that actually
// defines it.
type machine struct {
	th   *Thread
	prog *compiler.Program

	globals map[string]Value
	parent  map[string]string            // struct name -> parent struct name ("" if none)
	layout  map[string]*compiler.Struct  // struct name -> compiled layout
}

func newMachine(th *Thread, prog *compiler.Program) *machine {
	m := &machine{
		th:      th,
		prog:    prog,
		globals: make(map[string]Value, len(prog.Globals)),
		parent:  make(map[string]string, len(prog.Structs)),
		layout:  make(map[string]*compiler.Struct, len(prog.Structs)),
	}
	for _, s := range prog.Structs {
		m.parent[s.Name] = s.Parent
		m.layout[s.Name] = s
	}
	return m
}

func (m *machine) initGlobals() error {
	for _, g := range m.prog.Globals {
		if g.Init != nil {
			m.globals[g.Name] = constantValue(*g.Init)
		} else {
			m.globals[g.Name] = zeroValue(g.Typ)
		}
	}
	return nil
}

func zeroValue(t types.Type) Value {
	bt, ok := t.(types.BuiltinType)
	if !ok {
		return Value{}
	}
	switch bt.Kind {
	case types.Byte:
		return Byte(0)
	case types.Short:
		return Short(0)
	case types.Int:
		return Int(0)
	case types.Long:
		return Long(0)
	case types.Float:
		return Float(0)
	case types.Double:
		return Double(0)
	case types.Boolean:
		return Bool(false)
	case types.String:
		return Str("")
	default:
		return Value{}
	}
}

func constantValue(c ir.Constant) Value {
	width, isNumeric := 2, false
	if w, ok := widthIndexOf(c.Typ); ok {
		width, isNumeric = w, true
	}
	switch c.Kind {
	case ir.ConstInt:
		if isNumeric {
			return makeNumeric(width, 0, c.Int)
		}
		return Int(c.Int)
	case ir.ConstFloat:
		if isNumeric {
			return makeNumeric(width, c.Float, 0)
		}
		return Double(c.Float)
	case ir.ConstString:
		return Str(c.Str)
	case ir.ConstBool:
		return Bool(c.Bool)
	default:
		return Value{}
	}
}

func widthIndexOf(t types.Type) (int, bool) {
	bt, ok := t.(types.BuiltinType)
	if !ok {
		return 0, false
	}
	switch bt.Kind {
	case types.Byte:
		return 0, true
	case types.Short:
		return 1, true
	case types.Int:
		return 2, true
	case types.Long:
		return 3, true
	case types.Float:
		return 4, true
	case types.Double:
		return 5, true
	default:
		return 0, false
	}
}

func makeNumeric(width int, f float64, i int64) Value {
	switch width {
	case 0:
		return Byte(int64(int8(i)))
	case 1:
		return Short(int64(int16(i)))
	case 2:
		return Int(int64(int32(i)))
	case 3:
		return Long(i)
	case 4:
		return Float(float64(float32(f)))
	case 5:
		return Double(f)
	default:
		return Int(i)
	}
}

// call pushes a new frame for fn, runs its bytecode to completion, and
// pops the frame. args are bound to the frame's leading local slots in
// declaration order (for a method, args[0] is the receiver).
func (m *machine) call(fn *compiler.Func, args []Value) (Value, error) {
	if m.th.MaxCallStackDepth > 0 && len(m.th.callStack) >= m.th.MaxCallStackDepth {
		return Value{}, fmt.Errorf("machine: call stack depth exceeded (max %d)", m.th.MaxCallStackDepth)
	}

	fr := newFrame(fn)
	for i, a := range args {
		if i < len(fr.locals) {
			fr.locals[i] = a
		}
	}
	m.th.callStack = append(m.th.callStack, fr)
	defer func() { m.th.callStack = m.th.callStack[:len(m.th.callStack)-1] }()

	return m.run(fr)
}

// run executes fr's code to completion, returning the value its RETURN
// instruction carried (Void() if the function returned without a value).
func (m *machine) run(fr *Frame) (Value, error) {
	code := fr.fn.Code
	for {
		if fr.pc < 0 || fr.pc >= len(code) {
			return Value{}, fmt.Errorf("machine: program counter %d out of range in %s", fr.pc, fr.fn.Name)
		}

		m.th.steps++
		if m.th.steps >= m.th.maxSteps {
			m.th.ctxCancel()
			return Value{}, fmt.Errorf("machine: step budget exhausted in %s", fr.fn.Name)
		}
		if m.th.cancelled.Load() {
			return Value{}, fmt.Errorf("machine: thread cancelled")
		}

		in := code[fr.pc]
		fr.pc++

		switch {
		case in.Op == compiler.RETURN:
			if in.N == 1 {
				return fr.pop(), nil
			}
			return Void(), nil

		case in.Op == compiler.JMP:
			fr.pc = in.Addr

		case in.Op == compiler.CJMP:
			cond := fr.pop()
			if !cond.Bool() {
				fr.pc = in.Addr
			}

		case in.Op == compiler.R_LOAD:
			fr.push(fr.locals[in.Slot])

		case in.Op == compiler.R_STORE:
			fr.locals[in.Slot] = fr.pop()

		case in.Op == compiler.G_LOAD:
			fr.push(m.globals[in.Name])

		case in.Op == compiler.G_STORE:
			m.globals[in.Name] = fr.pop()

		case isConstOpcode(in.Op):
			fr.push(constantValue(in.Const))

		case isArithOpcode(in.Op):
			width, kind := arithFamily(in.Op)
			if kind == 5 { // unary negate
				a := fr.pop()
				fr.push(evalUnaryArith(width, a))
				break
			}
			b := fr.pop()
			a := fr.pop()
			v, err := evalBinaryArith(width, kind, a, b)
			if err != nil {
				return Value{}, fmt.Errorf("machine: in %s: %w", fr.fn.Name, err)
			}
			fr.push(v)

		case in.Op == compiler.STR_CONCAT:
			b := fr.pop()
			a := fr.pop()
			fr.push(Str(a.String() + b.String()))

		case isCompareOpcode(in.Op):
			b := fr.pop()
			a := fr.pop()
			v, err := evalCompare(in.Op, a, b)
			if err != nil {
				return Value{}, fmt.Errorf("machine: in %s: %w", fr.fn.Name, err)
			}
			fr.push(v)

		case in.Op == compiler.NEW_ARRAY:
			elems := make([]Value, in.N)
			for i := in.N - 1; i >= 0; i-- {
				elems[i] = fr.pop()
			}
			fr.push(Array(elems))

		case in.Op == compiler.NEW_STRUCT:
			args := make([]Value, in.N)
			for i := in.N - 1; i >= 0; i-- {
				args[i] = fr.pop()
			}
			inst, err := m.newInstance(in.Name, args)
			if err != nil {
				return Value{}, err
			}
			fr.push(Struct(inst))

		case in.Op == compiler.LOAD_INDEX:
			idx := fr.pop()
			arr := fr.pop()
			if idx.I < 0 || int(idx.I) >= len(arr.Arr) {
				return Value{}, fmt.Errorf("machine: index %d out of range (len %d)", idx.I, len(arr.Arr))
			}
			fr.push(arr.Arr[idx.I])

		case in.Op == compiler.STORE_INDEX:
			val := fr.pop()
			idx := fr.pop()
			arr := fr.pop()
			if idx.I < 0 || int(idx.I) >= len(arr.Arr) {
				return Value{}, fmt.Errorf("machine: index %d out of range (len %d)", idx.I, len(arr.Arr))
			}
			arr.Arr[idx.I] = val

		case in.Op == compiler.LOAD_FIELD:
			obj := fr.pop()
			if obj.St == nil {
				return Value{}, fmt.Errorf("machine: field access %q on null", in.Name)
			}
			fr.push(obj.St.Fields[in.Name])

		case in.Op == compiler.STORE_FIELD:
			val := fr.pop()
			obj := fr.pop()
			if obj.St == nil {
				return Value{}, fmt.Errorf("machine: field assignment %q on null", in.Name)
			}
			obj.St.Fields[in.Name] = val

		case in.Op == compiler.CALL:
			args := make([]Value, in.N)
			for i := in.N - 1; i >= 0; i-- {
				args[i] = fr.pop()
			}
			v, err := m.dispatchCall(in.Name, args)
			if err != nil {
				return Value{}, err
			}
			fr.push(v)

		case in.Op == compiler.CALLM:
			args := make([]Value, in.N)
			for i := in.N - 1; i >= 0; i-- {
				args[i] = fr.pop()
			}
			recv := fr.pop()
			v, err := m.dispatchCallMethod(recv, in.Name, args)
			if err != nil {
				return Value{}, err
			}
			fr.push(v)

		case in.Op == compiler.POP:
			fr.pop()

		case in.Op == compiler.DUP:
			fr.push(fr.stack[fr.sp-1])

		case in.Op == compiler.NOP:
			// no-op

		case in.Op == compiler.HALT:
			return Void(), nil

		default:
			return Value{}, fmt.Errorf("machine: unhandled opcode %s in %s", in.Op, fr.fn.Name)
		}
	}
}

// dispatchCall resolves a plain CALL by name: a compiled function first,
// then the syscall table. The compiler never emits a SYSCALL opcode
// directly; builtins like print are ordinary named calls that fall
// through to syscalls here.
func (m *machine) dispatchCall(name string, args []Value) (Value, error) {
	if fn := m.prog.Func(name); fn != nil {
		return m.call(fn, args)
	}
	if m.th.Sandbox && sandboxedSyscalls[name] {
		return Value{}, fmt.Errorf("machine: syscall %q is disabled by the sandbox", name)
	}
	if h, ok := syscalls.Get(name); ok {
		return h(m.th, args)
	}
	return Value{}, fmt.Errorf("machine: unsupported syscall: %s", name)
}

// dispatchCallMethod resolves name against recv's struct and its ancestor
// chain, mirroring lang/ir's own findMethod walk at build time.
func (m *machine) dispatchCallMethod(recv Value, name string, args []Value) (Value, error) {
	if recv.St == nil {
		return Value{}, fmt.Errorf("machine: method call %q on null receiver", name)
	}
	for cur := recv.St.Struct; cur != ""; cur = m.parent[cur] {
		if fn := m.prog.Func(cur + "." + name); fn != nil {
			return m.call(fn, append([]Value{recv}, args...))
		}
	}
	return Value{}, fmt.Errorf("machine: no method %q on struct %s", name, recv.St.Struct)
}

// newInstance builds a struct value with every inherited field
// initialized: the ancestor chain's fields come first (root ancestor
// first), matching the positional order `new Type(args...)` call sites
// must supply them in.
func (m *machine) newInstance(structName string, args []Value) (*Instance, error) {
	names := m.fieldOrder(structName)
	if len(args) != len(names) {
		return nil, fmt.Errorf("machine: new %s expects %d field values, got %d", structName, len(names), len(args))
	}
	fields := make(map[string]Value, len(names))
	for i, n := range names {
		fields[n] = args[i]
	}
	return &Instance{Struct: structName, Fields: fields}, nil
}

func (m *machine) fieldOrder(structName string) []string {
	var chain []*compiler.Struct
	for cur := structName; cur != ""; cur = m.parent[cur] {
		if s := m.layout[cur]; s != nil {
			chain = append(chain, s)
		} else {
			break
		}
	}
	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		names = append(names, chain[i].FieldNames...)
	}
	return names
}

func isConstOpcode(op compiler.Opcode) bool {
	switch op {
	case compiler.B_CONST, compiler.S_CONST, compiler.I_CONST, compiler.L_CONST,
		compiler.F_CONST, compiler.D_CONST, compiler.STR_CONST, compiler.BOOL_CONST:
		return true
	default:
		return false
	}
}

func isArithOpcode(op compiler.Opcode) bool {
	return op >= compiler.B_ADD && op <= compiler.D_NEG
}

func isCompareOpcode(op compiler.Opcode) bool {
	return op >= compiler.CMP_EQ && op <= compiler.CMP_GE
}

// arithFamily recovers the (width, operationKind) pair an opcode in the
// B_ADD..D_NEG block encodes, the inverse of lang/compiler's
// B_ADD+width*6+kind construction: width is 0..5 for byte..double, kind is
// 0=add 1=sub 2=mul 3=div 4=mod 5=neg.
func arithFamily(op compiler.Opcode) (width, kind int) {
	rel := int(op - compiler.B_ADD)
	return rel / 6, rel % 6
}

func evalBinaryArith(width, kind int, a, b Value) (Value, error) {
	if width >= 4 {
		af, bf := a.AsFloat(), b.AsFloat()
		var r float64
		switch kind {
		case 0:
			r = af + bf
		case 1:
			r = af - bf
		case 2:
			r = af * bf
		case 3:
			if bf == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			r = af / bf
		case 4:
			if bf == 0 {
				return Value{}, fmt.Errorf("modulo by zero")
			}
			r = math.Mod(af, bf)
		}
		return makeNumeric(width, r, 0), nil
	}

	ai, bi := a.I, b.I
	var r int64
	switch kind {
	case 0:
		r = ai + bi
	case 1:
		r = ai - bi
	case 2:
		r = ai * bi
	case 3:
		if bi == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		r = ai / bi
	case 4:
		if bi == 0 {
			return Value{}, fmt.Errorf("modulo by zero")
		}
		r = ai % bi
	}
	return makeNumeric(width, 0, r), nil
}

func evalUnaryArith(width int, a Value) Value {
	if width >= 4 {
		return makeNumeric(width, -a.AsFloat(), 0)
	}
	return makeNumeric(width, 0, -a.I)
}

func evalCompare(op compiler.Opcode, a, b Value) (Value, error) {
	if op == compiler.CMP_EQ {
		return Bool(Equal(a, b)), nil
	}
	if op == compiler.CMP_NE {
		return Bool(!Equal(a, b)), nil
	}
	c, err := Compare(a, b)
	if err != nil {
		return Value{}, err
	}
	switch op {
	case compiler.CMP_LT:
		return Bool(c < 0), nil
	case compiler.CMP_LE:
		return Bool(c <= 0), nil
	case compiler.CMP_GT:
		return Bool(c > 0), nil
	case compiler.CMP_GE:
		return Bool(c >= 0), nil
	default:
		return Value{}, fmt.Errorf("machine: unreachable comparison opcode %s", op)
	}
}
