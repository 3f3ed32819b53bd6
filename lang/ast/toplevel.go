package ast

type (
	// Param is a single function parameter `name:type`.
	Param struct {
		Name string
		Type *TypeRef
	}

	// Function is `function: name params: ... returns: type body: ... end
	// function`.
	Function struct {
		NodeContext
		Name       string
		Params     []Param
		ReturnType *TypeRef // nil means void
		Body       []Stmt
	}

	// Field is a struct field declaration.
	Field struct {
		Name string
		Type *TypeRef
	}

	// Struct is `struct: name [extends Parent] ... end struct`.
	Struct struct {
		NodeContext
		Name    string
		Parent  string // empty if no `extends`
		Fields  []Field
		Methods []*Function
		Init    *Function // constructor, nil if none declared
	}

	// Import is `import: qualified.name`.
	Import struct {
		NodeContext
		Qualified string
	}

	// Global is a single `globals:` section entry, shaped like a
	// Declaration but scoped module-wide.
	Global struct {
		NodeContext
		Name  string
		Type  *TypeRef
		Init  Expr
		Const bool
	}

	// Module is `module: name ... end module`.
	Module struct {
		NodeContext
		Name      string
		Imports   []*Import
		Globals   []*Global
		Structs   []*Struct
		Functions []*Function
	}
)

func (n *Function) Context() NodeContext { return n.NodeContext }
func (n *Function) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}
func (n *Function) topLevelNode() {}

func (n *Struct) Context() NodeContext { return n.NodeContext }
func (n *Struct) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *Struct) topLevelNode() {}

func (n *Import) Context() NodeContext { return n.NodeContext }
func (n *Import) Walk(_ Visitor)       {}
func (n *Import) topLevelNode()        {}

func (n *Module) Context() NodeContext { return n.NodeContext }
func (n *Module) Walk(v Visitor) {
	for _, i := range n.Imports {
		Walk(v, i)
	}
	for _, s := range n.Structs {
		Walk(v, s)
	}
	for _, f := range n.Functions {
		Walk(v, f)
	}
}
func (n *Module) topLevelNode() {}
