package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/fncall/pkg/diagnostics"
)

var (
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

// emitter writes a stream of values as NDJSON or as YAML documents.
type emitter struct {
	json *json.Encoder
	yaml *yaml.Encoder
}

func newEmitter(w io.Writer, format string, pretty bool) *emitter {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &emitter{yaml: enc}
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &emitter{json: enc}
}

func (e *emitter) Emit(v any) error {
	if e.yaml != nil {
		return e.yaml.Encode(v)
	}
	return e.json.Encode(v)
}

func (e *emitter) Close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}

// readInputs returns the call strings named on the command line, or one per
// line of stdin when there are none. Blank lines and lines starting with '#'
// are skipped.
func readInputs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return readLines(cmd.InOrStdin())
}

func readFileLines(cmd *cobra.Command, path string) ([]string, error) {
	if path == "-" {
		return readLines(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIO, "cannot read file: "+path)
	}
	defer f.Close()
	return readLines(f)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, ErrCodeIO, "error reading input")
	}
	return lines, nil
}

// printDiagnostic writes d for input. Plain output is one JSON object per
// line; pretty output quotes the input and marks the offending span.
func printDiagnostic(w io.Writer, input string, d diagnostics.Diagnostic, pretty bool) {
	if !pretty {
		fmt.Fprintln(w, diagnostics.FormatDiagnostic(d, false))
		return
	}

	fmt.Fprintf(w, "%s: %s\n", red("error["+d.Code+"]"), d.Message)
	fmt.Fprintf(w, "  %s %s\n", gray("|"), input)
	if d.Span != nil && d.Span.StartLine <= 1 && !strings.Contains(input, "\n") {
		start := d.Span.StartCol - 1
		width := d.Span.EndCol - d.Span.StartCol
		if d.Span.EndLine > 1 || width < 1 {
			width = 1
		}
		if start >= 0 && start <= len(input) {
			fmt.Fprintf(w, "  %s %s%s\n", gray("|"), strings.Repeat(" ", start), red(strings.Repeat("^", width)))
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(w, "  %s %s\n", cyan("hint:"), d.Hint)
	}
}
