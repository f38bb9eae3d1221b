package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/agilira/go-errors"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/fncall/pkg/runtime"
)

func newTraceCommand() *cobra.Command {
	var textOutput bool

	cmd := &cobra.Command{
		Use:   "trace <file.ndjson>",
		Short: "Summarize a batch trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, ErrCodeIO, "cannot read file: "+args[0])
			}
			defer f.Close()

			summary, err := runtime.SummarizeTrace(f)
			if err != nil {
				return errors.Wrap(err, ErrCodeIO, "cannot read trace: "+args[0])
			}

			if textOutput {
				printTraceSummaryText(cmd.OutOrStdout(), summary)
				return nil
			}
			b, err := json.Marshal(summary)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&textOutput, "text", false, "print a text summary instead of JSON")

	return cmd
}

func printTraceSummaryText(w io.Writer, s *runtime.TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Parses: %d (%d cached)\n", s.Parses, s.CacheHits)
	for _, tier := range sortedKeys(s.ByTier) {
		fmt.Fprintf(w, "  %s: %d\n", tier, s.ByTier[tier])
	}
	fmt.Fprintf(w, "Failures: %d\n", s.Failures)
	for _, code := range sortedKeys(s.ByCode) {
		fmt.Fprintf(w, "  %s: %d\n", code, s.ByCode[code])
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}

func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fncall %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}
