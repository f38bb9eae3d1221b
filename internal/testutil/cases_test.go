package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCases(t *testing.T) {
	path := writeFile(t, `
- name: one
  input: f(1)
  expect:
    stdout: {name: f, args: [1]}
- name: two
  cmd: check
  input: f(
  autoQuote: true
  tags: [error]
  expect:
    exitCode: 2
    stderr:
      - code: E_UNTERMINATED
`)
	cases, err := LoadCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "parse", cases[0].Cmd)
	assert.False(t, cases[0].AutoQuote)
	assert.Equal(t, "check", cases[1].Cmd)
	assert.True(t, cases[1].AutoQuote)
	assert.True(t, cases[1].HasTag("error"))
	assert.Equal(t, 2, cases[1].Expect.ExitCode)
	assert.Equal(t, "E_UNTERMINATED", cases[1].Expect.Stderr[0]["code"])
}

func TestLoadCasesRejectsDuplicates(t *testing.T) {
	path := writeFile(t, `
- name: a
  input: f()
- name: a
  input: g()
`)
	_, err := LoadCases(path)
	assert.ErrorContains(t, err, "duplicate case name")
}

func TestLoadCasesRequiresName(t *testing.T) {
	_, err := LoadCases(writeFile(t, "- input: f()\n"))
	assert.ErrorContains(t, err, "has no name")
}

func TestIsSubset(t *testing.T) {
	actual, err := NormalizeJSON(map[string]any{
		"name":   "f",
		"args":   []any{int64(1), "a"},
		"kwargs": map[string]any{"k": nil, "x": true},
	})
	require.NoError(t, err)

	expected, err := NormalizeJSON(map[string]any{"name": "f", "args": []any{1, "a"}})
	require.NoError(t, err)
	assert.True(t, IsSubset(expected, actual))

	expected, err = NormalizeJSON(map[string]any{"kwargs": map[string]any{"k": nil}})
	require.NoError(t, err)
	assert.True(t, IsSubset(expected, actual))

	expected, err = NormalizeJSON(map[string]any{"args": []any{1}})
	require.NoError(t, err)
	assert.False(t, IsSubset(expected, actual))

	assert.False(t, IsSubset(map[string]any{"name": "g"}, actual))
}
