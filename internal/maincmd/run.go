package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/lang/machine"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, c.Config, args...)
}

// RunFiles compiles files through the full C1-C6 pipeline and executes the
// result on a fresh VM thread, applying the tuning knobs found at
// configPath (or the built-in defaults if configPath is empty).
func RunFiles(ctx context.Context, stdio mainer.Stdio, configPath string, files ...string) error {
	compiled, err := compileFiles(files)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	cfg, err := loadToolchainConfig(configPath)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	th := &machine.Thread{
		Stdout:            stdio.Stdout,
		Stderr:            stdio.Stderr,
		Stdin:             stdio.Stdin,
		MaxSteps:          cfg.MaxSteps,
		MaxCallStackDepth: cfg.MaxCallStackDepth,
		Sandbox:           cfg.SandboxSyscalls,
	}
	if _, err := machine.RunProgram(ctx, th, compiled); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
