// Package resolver implements Snow's semantic analyzer: a two-pass walk
// that builds per-module symbol tables, checks type compatibility, and
// annotates the AST with resolved types and symbols in side tables rather
// than by mutating nodes.
package resolver

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// ModuleInfo is the registry entry produced per module: its exported
// functions, structs and globals, keyed by name. The maps use swiss.Map
// because every expression/call/identifier resolved in the body pass does
// a lookup here, making it the hottest lookup path in the analyzer.
type ModuleInfo struct {
	Name      string
	Functions *swiss.Map[string, types.FuncType]
	Structs   *swiss.Map[string, *types.StructType]
	Globals   *swiss.Map[string, types.Type]
}

func newModuleInfo(name string) *ModuleInfo {
	return &ModuleInfo{
		Name:      name,
		Functions: swiss.NewMap[string, types.FuncType](8),
		Structs:   swiss.NewMap[string, *types.StructType](8),
		Globals:   swiss.NewMap[string, types.Type](8),
	}
}

// Error is a single accumulated semantic diagnostic.
type Error struct {
	Node    ast.Node
	Message string
}

func (e *Error) Error() string { return e.Message }

// Info is the output of a successful (or partially successful, error-laden)
// resolve pass: per-node type/symbol annotations plus the module registry.
type Info struct {
	Modules map[string]*ModuleInfo

	// Types maps an expression node to its resolved Type.
	Types map[ast.Node]types.Type
	// Symbols maps an identifier or assignment node to the local Symbol it
	// resolved to.
	Symbols map[ast.Node]*types.Symbol

	Errors []*Error
}

func newInfo() *Info {
	return &Info{
		Modules: make(map[string]*ModuleInfo),
		Types:   make(map[ast.Node]types.Type),
		Symbols: make(map[ast.Node]*types.Symbol),
	}
}

func (info *Info) errorf(n ast.Node, format string, args ...any) {
	info.Errors = append(info.Errors, &Error{Node: n, Message: fmt.Sprintf(format, args...)})
}
