package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI in an empty working directory and returns stdout,
// stderr and the exit code.
func run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("FNCALL_LOG_LEVEL", "error")

	cmd := newRootCommand("test", "abc123", "today")
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), ExitCode(err)
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var row map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &row), "line: %s", line)
		rows = append(rows, row)
	}
	return rows
}

func TestParseCommand(t *testing.T) {
	stdout, stderr, code := run(t, "", "parse", `@myfunc(test, 12a,value=zz10, name=xxx)`)
	require.Equal(t, ExitOK, code, stderr)

	rows := decodeLines(t, stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, "@myfunc", rows[0]["name"])
	assert.Equal(t, []any{"test", "12a"}, rows[0]["args"])
	assert.Equal(t, map[string]any{"name": "xxx", "value": "zz10"}, rows[0]["kwargs"])
}

func TestParseCommandKeepsFloatKind(t *testing.T) {
	stdout, _, code := run(t, "", "parse", "f(2, 2.0, 1.e5)")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, `"args":[2,2.0,100000.0]`)
}

func TestParseCommandStdin(t *testing.T) {
	stdin := "# comment\nf(1)\n\n  g(x)\n"
	stdout, _, code := run(t, stdin, "parse")
	require.Equal(t, ExitOK, code)

	rows := decodeLines(t, stdout)
	require.Len(t, rows, 2)
	assert.Equal(t, "f", rows[0]["name"])
	assert.Equal(t, "g", rows[1]["name"])
}

func TestParseCommandStrictRejects(t *testing.T) {
	stdout, stderr, code := run(t, "", "parse", "--no-auto-quote", "f(xxx)", "g(1)")
	assert.Equal(t, ExitDiagnostics, code)
	assert.Contains(t, stderr, `"code":"E_ARG_SYNTAX"`)

	rows := decodeLines(t, stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, "g", rows[0]["name"])
}

func TestParseCommandYAML(t *testing.T) {
	stdout, _, code := run(t, "", "parse", "-o", "yaml", `f(1, k=[a, b])`)
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "name: f")
	assert.Contains(t, stdout, "- 1")
	assert.Contains(t, stdout, "k:")
	assert.Contains(t, stdout, "- a")
}

func TestCheckCommand(t *testing.T) {
	stdout, _, code := run(t, "", "check", "f(1)")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "[]\n", stdout)

	stdout, _, code = run(t, "", "check", "f(1)", "myfunc(123); import sys")
	assert.Equal(t, ExitDiagnostics, code)
	var diags []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "E_TRAILING", diags[0]["code"])
}

func TestCheckCommandPretty(t *testing.T) {
	stdout, _, code := run(t, "", "check", "--pretty", "myfunc(1); x")
	assert.Equal(t, ExitDiagnostics, code)
	assert.Contains(t, stdout, "error[E_TRAILING]")
	assert.Contains(t, stdout, "| myfunc(1); x")
	assert.Contains(t, stdout, "          ^^^")
	assert.Contains(t, stdout, "hint: only a single call is allowed")

	stdout, _, code = run(t, "", "check", "--pretty", "f()")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "No errors found.")
}

func TestFmtCommand(t *testing.T) {
	stdout, stderr, code := run(t, "", "fmt", "f(b=2, a=xxx)", "g(")
	assert.Equal(t, ExitDiagnostics, code)
	assert.Equal(t, "f(a=\"xxx\", b=2)\n", stdout)
	assert.Contains(t, stderr, "E_UNTERMINATED")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "calls.txt")
	tracePath := filepath.Join(dir, "run.ndjson")

	var lines []string
	for i := 0; i < 20; i++ {
		if i == 7 {
			lines = append(lines, `f(os.system("ls"))`)
			continue
		}
		lines = append(lines, fmt.Sprintf("call%d(%d, tag=t%d)", i, i, i))
	}
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	stdout, _, code := run(t, "", "batch", "--workers", "3", "--trace", tracePath, input)
	assert.Equal(t, ExitDiagnostics, code)

	rows := decodeLines(t, stdout)
	require.Len(t, rows, 20)
	for i, row := range rows {
		assert.Equal(t, float64(i), row["index"])
		if i == 7 {
			assert.Nil(t, row["call"])
			assert.Equal(t, "E_ARG_SYMBOLS", row["error"].(map[string]any)["code"])
			continue
		}
		assert.Equal(t, fmt.Sprintf("call%d", i), row["call"].(map[string]any)["name"])
	}

	stdout, _, code = run(t, "", "trace", tracePath)
	require.Equal(t, ExitOK, code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 20.0, summary["parses"])
	assert.Equal(t, 1.0, summary["failures"])

	stdout, _, code = run(t, "", "trace", "--text", tracePath)
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "Parses: 20")
	assert.Contains(t, stdout, "E_ARG_SYMBOLS: 1")
}

func TestBatchCommandMissingFile(t *testing.T) {
	_, _, code := run(t, "", "batch", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, ExitFailure, code)
}

func TestBatchCommandRejectsBadWorkers(t *testing.T) {
	_, _, code := run(t, "f()\n", "batch", "--workers", "0", "-")
	assert.Equal(t, ExitFailure, code)
}

func TestConfigCommand(t *testing.T) {
	stdout, _, code := run(t, "", "config", "--no-auto-quote", "-o", "yaml")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "auto_quote: false")
	assert.Contains(t, stdout, "output: yaml")
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_quote: false\n"), 0o644))

	_, stderr, code := run(t, "", "parse", "--config", path, "f(xxx)")
	assert.Equal(t, ExitDiagnostics, code)
	assert.Contains(t, stderr, "E_ARG_SYNTAX")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, code := run(t, "", "version")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "fncall test (commit: abc123, built: today)\n", stdout)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(fmt.Errorf("boom")))
	assert.Equal(t, ExitDiagnostics, ExitCode(diagnosticsError(1, 2)))
	assert.Equal(t, ExitDiagnostics, ExitCode(fmt.Errorf("wrapped: %w", diagnosticsError(1, 1))))
}
