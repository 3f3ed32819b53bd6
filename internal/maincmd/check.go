package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/lang/resolver"
)

func (c *Cmd) Check(_ context.Context, stdio mainer.Stdio, args []string) error {
	return CheckFiles(stdio, args...)
}

// CheckFiles runs files through the full C1-C3 pipeline and prints one
// "module <name>: ok" line per module in the resolved registry (sorted by
// name, "(script)" for loose top-level code), or every accumulated semantic
// error if the program does not pass analysis.
func CheckFiles(stdio mainer.Stdio, files ...string) error {
	tops, err := parseSources(files)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	info := resolver.ResolveModules(tops)

	if len(info.Errors) > 0 {
		for _, e := range info.Errors {
			fmt.Fprintln(stdio.Stderr, e.Error())
		}
		return fmt.Errorf("check: %d semantic error(s)", len(info.Errors))
	}

	names := make([]string, 0, len(info.Modules))
	for name := range info.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(script)"
		}
		fmt.Fprintf(stdio.Stdout, "module %s: ok\n", label)
	}
	return nil
}
