package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders p as readable pseudo-assembly, grouped into sections:
// a header line, then a globals block, a structs block and one block per
// function. This is a write-only view for diagnostics and golden-file
// tests; Snow has no on-disk bytecode format and nothing reads this text
// back; lang/machine runs a compiler.Program directly from memory.
func Disassemble(p *Program) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "program entry=%s\n", p.Entry)

	if len(p.Globals) > 0 {
		sb.WriteString("globals:\n")
		for _, g := range p.Globals {
			fmt.Fprintf(&sb, "  %s: %s", g.Name, g.Typ)
			if g.Init != nil {
				fmt.Fprintf(&sb, " = %s", g.Init)
			}
			sb.WriteByte('\n')
		}
	}

	if len(p.Structs) > 0 {
		sb.WriteString("structs:\n")
		for _, s := range p.Structs {
			fmt.Fprintf(&sb, "  %s", s.Name)
			if s.Parent != "" {
				fmt.Fprintf(&sb, " extends %s", s.Parent)
			}
			sb.WriteByte('\n')
			for i, name := range s.FieldNames {
				fmt.Fprintf(&sb, "    %s: %s\n", name, s.FieldTypes[i])
			}
		}
	}

	for _, fn := range p.Funcs {
		fmt.Fprintf(&sb, "function: %s params=%d slots=%d", fn.Name, fn.NumParams, fn.NumSlots)
		if fn.IsMethod {
			sb.WriteString(" method")
		}
		sb.WriteByte('\n')
		sb.WriteString("code:\n")
		for addr, in := range fn.Code {
			fmt.Fprintf(&sb, "  %4d  %s\n", addr, in)
		}
	}

	return sb.String()
}
