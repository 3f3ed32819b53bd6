package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/parser"
	"github.com/jcnc-org/Snow-sub005/lang/scanner"
)

func resolveSrc(t *testing.T, src string) *Info {
	t.Helper()
	toks, errs := scanner.ScanAll("t.snow", []byte(src))
	require.Empty(t, errs)
	tops, perrs := parser.ParseFile("t.snow", toks)
	require.Empty(t, perrs)
	return ResolveModules(tops)
}

func TestResolveArithmeticDeclaration(t *testing.T) {
	src := `function: main
returns: int
body:
declare x:int = 2+3*4
return x
end body
end function
`
	info := resolveSrc(t, src)
	require.Empty(t, info.Errors)
}

func TestResolveConstReassignmentIsError(t *testing.T) {
	src := `function: main
body:
declare const x:int = 1
x = 2
end body
end function
`
	info := resolveSrc(t, src)
	require.NotEmpty(t, info.Errors)
}

func TestResolveBreakOutsideLoopIsError(t *testing.T) {
	src := `function: main
body:
break
end body
end function
`
	info := resolveSrc(t, src)
	require.NotEmpty(t, info.Errors)
}

func TestResolveLoopSum(t *testing.T) {
	src := `function: sum
returns: int
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
	info := resolveSrc(t, src)
	require.Empty(t, info.Errors)
}

func TestResolveUndeclaredIdentifierIsError(t *testing.T) {
	src := `function: f
returns: int
body:
return y
end body
end function
`
	info := resolveSrc(t, src)
	require.NotEmpty(t, info.Errors)
}

func TestResolveStructFieldAndMethod(t *testing.T) {
	src := `struct: Counter
declare n:int
method: inc
params:
returns: void
body:
self.n = self.n+1
end body
end method
end struct

function: main
body:
declare c:Counter = new Counter()
c.inc()
end body
end function
`
	info := resolveSrc(t, src)
	require.Empty(t, info.Errors)
}

func TestResolveBuiltinCallResolves(t *testing.T) {
	src := `function: main
body:
println("Hello" + " " + "World!")
declare h:long = fs_open("out.txt", "w")
fs_close(h)
end body
end function
`
	info := resolveSrc(t, src)
	require.Empty(t, info.Errors)
}

func TestResolveBuiltinCallWrongArgCountIsError(t *testing.T) {
	src := `function: main
body:
println()
end body
end function
`
	info := resolveSrc(t, src)
	require.NotEmpty(t, info.Errors)
}

func TestResolveUserFunctionShadowsBuiltin(t *testing.T) {
	src := `function: print
params: msg:string
returns: void
body:
end body
end function

function: main
body:
print("hi")
end body
end function
`
	info := resolveSrc(t, src)
	require.Empty(t, info.Errors)
}
