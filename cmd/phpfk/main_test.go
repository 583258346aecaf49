package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"phpfk/encoder-go/pkg/interpreter"
	"phpfk/encoder-go/pkg/profile"
	"phpfk/encoder-go/pkg/runtime"
	"phpfk/encoder-go/pkg/solver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	verbose = false
	encodeOutDir = ""
	encodeJobs = 2
	stringFile = ""
	basisFunctions = ""
	basisPHP = ""
	basisFormat = "text"
	basisMaxSeeds = solver.MaxSeeds

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func evalOutput(t *testing.T, out string) runtime.Value {
	t.Helper()
	val, err := interpreter.New(interpreter.Options{}).EvalString(strings.TrimSpace(out))
	require.NoError(t, err)
	return val
}

func TestIntCommand(t *testing.T) {
	out, err := execute(t, "", "int", "1024")
	require.NoError(t, err)
	require.Equal(t, runtime.IntegerValue{Val: 1024}, evalOutput(t, out))

	_, err = execute(t, "", "int", "-5")
	require.Error(t, err)
	_, err = execute(t, "", "int", "ten")
	require.Error(t, err)
}

func TestStringCommand(t *testing.T) {
	out, err := execute(t, "", "string", "Hi!")
	require.NoError(t, err)
	require.Equal(t, runtime.StringValue{Val: "Hi!"}, evalOutput(t, out))

	path := filepath.Join(t.TempDir(), "text")
	require.NoError(t, os.WriteFile(path, []byte("line\n"), 0o644))
	out, err = execute(t, "", "string", "--file", path)
	require.NoError(t, err)
	require.Equal(t, runtime.StringValue{Val: "line\n"}, evalOutput(t, out))

	_, err = execute(t, "", "string", "x", "--file", path)
	require.Error(t, err)
}

func TestEncodeStdin(t *testing.T) {
	out, err := execute(t, `echo "Hello World";`, "encode")
	require.NoError(t, err)
	require.Regexp(t, `^[9().^]+\n$`, out)
}

func TestEncodeBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	var inputs []string
	for _, name := range []string{"a.php", "b.php", "c.php"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(`echo "`+name+`";`), 0o644))
		inputs = append(inputs, path)
	}
	_, err := execute(t, "", append([]string{"encode", "-o", outDir}, inputs...)...)
	require.NoError(t, err)
	for _, name := range []string{"a.fk", "b.fk", "c.fk"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		require.Regexp(t, `^[9().^]+$`, string(data))
	}

	_, err = execute(t, "", append([]string{"encode"}, inputs...)...)
	require.ErrorContains(t, err, "requires -o")
}

func TestEncodeRejectsInvalidSource(t *testing.T) {
	_, err := execute(t, "", "encode")
	require.ErrorContains(t, err, "empty source")
	_, err = execute(t, "\xff", "encode")
	require.ErrorContains(t, err, "UTF-8")
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, `print "Hello World";`, "check")
	require.NoError(t, err)
	require.Contains(t, out, "ok: 20 bytes encoded as")
}

func TestBasisCommand(t *testing.T) {
	out, err := execute(t, "", "basis", "0123456789INF")
	require.NoError(t, err)
	require.Contains(t, out, `'r' => "('F'^'4')",`)
	require.Contains(t, out, "== found functions ==\n")
	require.Contains(t, out, "\nCHr\n")
	require.True(t, strings.HasSuffix(out, "== done ==\n"))

	path := filepath.Join(t.TempDir(), "functions.txt")
	require.NoError(t, os.WriteFile(path, []byte("strlen\narray_map\n"), 0o644))
	out, err = execute(t, "", "basis", "0123456789INF", "--functions", path, "--format", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "seeds: 0123456789INF")
	require.Contains(t, out, "- strLEN")
	require.NotContains(t, out, "array_map")

	_, err = execute(t, "", "basis", "0123456789INF", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")
}

func TestBasisDefaultsToProfileSeeds(t *testing.T) {
	out, err := execute(t, "", "basis", "--format", "yaml")
	require.NoError(t, err)
	p, err := profile.Default()
	require.NoError(t, err)
	require.Contains(t, out, "seeds: "+p.Seeds)
	require.Contains(t, out, "- CHr")
}

func TestBasisMaxSeeds(t *testing.T) {
	_, err := execute(t, "", "basis", "ABCDEFGHIJKLMNOPQRSTUVWXYZ01234")
	require.ErrorIs(t, err, solver.ErrTooManySeeds)

	_, err = execute(t, "", "basis", "01234", "--max-seeds", "4")
	require.ErrorIs(t, err, solver.ErrTooManySeeds)

	out, err := execute(t, "", "basis", "0123456789INF", "--max-seeds", "13")
	require.NoError(t, err)
	require.Contains(t, out, `'r' => "('F'^'4')",`)
}

func TestProfilesCommand(t *testing.T) {
	out, err := execute(t, "", "profiles")
	require.NoError(t, err)
	require.Contains(t, out, "PRIMITIVES")
	require.Regexp(t, `(?m)^\*\s+nine\s+9\(\)\.\^\s+0123456789INF\s+call,xor,concat,numeric-coercion,spread\s`, out)
}

func TestProfileNotSelectableAtRuntime(t *testing.T) {
	_, err := execute(t, "", "--profile", "nine", "int", "1")
	require.ErrorContains(t, err, "unknown flag: --profile")

	t.Setenv("PHPFK_PROFILE", "brackets")
	out, err := execute(t, "", "int", "12")
	require.NoError(t, err)
	require.Equal(t, runtime.IntegerValue{Val: 12}, evalOutput(t, out))
}
