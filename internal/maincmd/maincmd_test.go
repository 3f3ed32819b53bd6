package maincmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func writeSrc(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.snow")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const sumProgram = `function: main
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
println(s)
end body
end function
`

func TestCheckFilesOK(t *testing.T) {
	path := writeSrc(t, sumProgram)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := CheckFiles(stdio, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "(script): ok")
}

func TestCheckFilesReportsSemanticErrors(t *testing.T) {
	path := writeSrc(t, `function: main
body:
return y
end body
end function
`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := CheckFiles(stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

func TestBuildFilesDisassembles(t *testing.T) {
	path := writeSrc(t, sumProgram)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := BuildFiles(stdio, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "program entry=main")
	require.Contains(t, out.String(), "function: main")
}

func TestRunFilesExecutesProgram(t *testing.T) {
	path := writeSrc(t, sumProgram)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := RunFiles(context.Background(), stdio, "", path)
	require.NoError(t, err)
	require.Equal(t, "55\n", out.String())
}

func TestRunFilesAppliesYAMLConfig(t *testing.T) {
	path := writeSrc(t, sumProgram)
	cfgPath := filepath.Join(t.TempDir(), "snow.toolchain.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_steps: 5\n"), 0o644))

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := RunFiles(context.Background(), stdio, cfgPath, path)
	require.Error(t, err)
}

func TestRunFilesSandboxRejectsFilesystemSyscalls(t *testing.T) {
	path := writeSrc(t, `function: main
body:
declare h:long = fs_open("/tmp/does-not-matter", "r")
end body
end function
`)
	cfgPath := filepath.Join(t.TempDir(), "snow.toolchain.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sandbox_syscalls: true\n"), 0o644))

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := RunFiles(context.Background(), stdio, cfgPath, path)
	require.Error(t, err)
	require.Contains(t, errOut.String(), "sandbox")
}

func TestTokenizeFilesPrintsTokens(t *testing.T) {
	path := writeSrc(t, "declare x:int = 1")
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := TokenizeFiles(stdio, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "declare")
}

func TestParseFilesPrintsAST(t *testing.T) {
	path := writeSrc(t, sumProgram)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := ParseFiles(stdio, path)
	require.NoError(t, err)
	require.NotEmpty(t, out.String())
}

func TestValidateRequiresFileArgs(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"check"})
	c.SetFlags(map[string]bool{})
	require.Error(t, c.Validate())
}

func TestValidateRejectsConfigForNonBuildRun(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"check", "t.snow"})
	c.SetFlags(map[string]bool{"config": true})
	require.Error(t, c.Validate())
}

func TestValidateAcceptsConfigForRun(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"run", "t.snow"})
	c.SetFlags(map[string]bool{"config": true})
	require.NoError(t, c.Validate())
}

func TestLoadToolchainConfigDefaults(t *testing.T) {
	cfg, err := loadToolchainConfig("")
	require.NoError(t, err)
	require.Equal(t, 10_000_000, cfg.MaxSteps)
	require.Equal(t, 1024, cfg.MaxCallStackDepth)
}

func TestLoadToolchainConfigYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snow.toolchain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_steps: 42\nmax_call_stack_depth: 8\n"), 0o644))
	cfg, err := loadToolchainConfig(path)
	require.NoError(t, err)
	require.Equal(t, 42, cfg.MaxSteps)
	require.Equal(t, 8, cfg.MaxCallStackDepth)
}

func TestLoadToolchainConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := loadToolchainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, defaultToolchainConfig(), cfg)
}
