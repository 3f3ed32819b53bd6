package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/scanner"
)

func parseSrc(t *testing.T, src string) ([]ast.TopLevel, []*Error) {
	t.Helper()
	toks, errs := scanner.ScanAll("t.snow", []byte(src))
	require.Empty(t, errs)
	return ParseFile("t.snow", toks)
}

func TestParseModuleFunction(t *testing.T) {
	src := `module: M
function: main
params:
returns: int
body:
declare x:int = 2+3*4
return x
end body
end function
end module
`
	top, errs := parseSrc(t, src)
	require.Empty(t, errs)
	require.Len(t, top, 1)
	mod, ok := top[0].(*ast.Module)
	require.True(t, ok)
	require.Equal(t, "M", mod.Name)
	require.Len(t, mod.Functions, 1)
	fn := mod.Functions[0]
	require.Equal(t, "main", fn.Name)
	require.Len(t, fn.Body, 2)
	decl, ok := fn.Body[0].(*ast.Declaration)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)
	bin, ok := decl.Init.(*ast.Binary)
	require.True(t, ok)
	_ = bin
}

func TestParseLoopAndBreak(t *testing.T) {
	src := `function: f
body:
declare s:int = 0
loop
init: declare i:int = 1
cond: i <= 10
step: i = i+1
body:
s = s+i
end body
end loop
return s
end body
end function
`
	top, errs := parseSrc(t, src)
	require.Empty(t, errs)
	fn := top[0].(*ast.Function)
	loop, ok := fn.Body[1].(*ast.Loop)
	require.True(t, ok)
	require.NotNil(t, loop.Init)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Step)
	require.Len(t, loop.Body, 1)
}

func TestParseCallIndexMemberPrecedence(t *testing.T) {
	src := `function: f
body:
declare a:int = foo(1,2).bar[0]
end body
end function
`
	top, _ := parseSrc(t, src)
	fn := top[0].(*ast.Function)
	decl := fn.Body[0].(*ast.Declaration)
	idx, ok := decl.Init.(*ast.Index)
	require.True(t, ok)
	mem, ok := idx.Array.(*ast.Member)
	require.True(t, ok)
	require.Equal(t, "bar", mem.Name)
	call, ok := mem.Object.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}
