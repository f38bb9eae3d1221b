package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/parser"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [call...]",
		Short: "Parse call strings into name, args and kwargs",
		Long: `Parse each call string and print {"name", "args", "kwargs"}.

Call strings are taken from the arguments, or one per line from stdin when
none are given. Rejected calls are reported on stderr.`,
		Example: `  # Parse a single call
  fncall parse 'myfunc("test", 123, value=123, name=xxx)'

  # Strict literals only, YAML output
  fncall parse --no-auto-quote -o yaml 'f(1, "a")'

  # Parse calls from a file
  fncall parse < calls.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}
			rt, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			out := newEmitter(cmd.OutOrStdout(), cfg.Output, cfg.Pretty)
			failed := 0
			for _, input := range inputs {
				call, err := rt.Parse(cmd.Context(), input)
				if err != nil {
					pe, ok := parser.AsParseError(err)
					if !ok {
						return err
					}
					failed++
					printDiagnostic(cmd.ErrOrStderr(), input, pe.Diag, cfg.Pretty)
					continue
				}
				if err := out.Emit(call); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if err := out.Close(); err != nil {
				return err
			}

			log.Debug().Int("inputs", len(inputs)).Int("failed", failed).Msg("parse finished")
			if failed > 0 {
				return diagnosticsError(failed, len(inputs))
			}
			return nil
		},
	}
	return cmd
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [call...]",
		Short: "Report diagnostics for call strings",
		Long: `Check each call string without printing the parse result.

Plain output is a JSON array of diagnostics ([] when every call is valid).
With --pretty each rejection is shown with the offending span marked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}
			rt, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			all := []diagnostics.Diagnostic{}
			failed := 0
			w := cmd.OutOrStdout()
			for _, input := range inputs {
				diags, err := rt.Check(cmd.Context(), input)
				if err != nil {
					return err
				}
				if len(diags) == 0 {
					continue
				}
				failed++
				all = append(all, diags...)
				if cfg.Pretty {
					for _, d := range diags {
						printDiagnostic(w, input, d, true)
					}
				}
			}

			if cfg.Pretty {
				if failed == 0 {
					fmt.Fprintln(w, green("No errors found."))
				}
			} else {
				fmt.Fprintln(w, diagnostics.FormatDiagnostics(all, false))
			}

			if failed > 0 {
				return diagnosticsError(failed, len(inputs))
			}
			return nil
		},
	}
	return cmd
}

func newFmtCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [call...]",
		Short: "Print call strings in canonical form",
		Long: `Print each call string in canonical form: every string double-quoted,
keyword arguments sorted by name and floats always written with a '.' or
exponent. The canonical form parses to the same call with or without
auto-quoting.`,
		Example: `  fncall fmt 'f(b=2, a=xxx)'
  # f(a="xxx", b=2)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}
			rt, _, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			failed := 0
			for _, input := range inputs {
				formatted, err := rt.Format(cmd.Context(), input)
				if err != nil {
					pe, ok := parser.AsParseError(err)
					if !ok {
						return err
					}
					failed++
					printDiagnostic(cmd.ErrOrStderr(), input, pe.Diag, cfg.Pretty)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatted)
			}
			if failed > 0 {
				return diagnosticsError(failed, len(inputs))
			}
			return nil
		},
	}
	return cmd
}
