package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/fncall/pkg/runtime"
)

func newBatchCommand() *cobra.Command {
	var (
		workers   int
		tracePath string
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Parse every line of a file concurrently",
		Long: `Parse every non-empty line of a file ("-" for stdin) using a pool of
workers. One result per line is printed in input order:

  {"index": 0, "input": "...", "call": {...}}
  {"index": 1, "input": "...", "error": {"code": "...", ...}}

A run summary and counters are logged when the batch completes.`,
		Example: `  # Parse with 8 workers and record an NDJSON trace
  fncall batch --workers 8 --trace run.ndjson calls.txt

  # Summarize the trace afterwards
  fncall trace run.ndjson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("trace") {
				cfg.Trace = tracePath
			}

			inputs, err := readFileLines(cmd, args[0])
			if err != nil {
				return err
			}

			var opts []runtime.Option
			if cfg.Trace != "" {
				f, err := os.Create(cfg.Trace)
				if err != nil {
					return errors.Wrap(err, ErrCodeIO, "cannot create trace file: "+cfg.Trace)
				}
				defer f.Close()
				opts = append(opts, runtime.WithTrace(runtime.NDJSONTrace(f)))
			}

			rt, m, err := newRuntime(cfg, opts...)
			if err != nil {
				return err
			}

			log.Info().
				Str("run_id", rt.RunID()).
				Str("file", args[0]).
				Int("inputs", len(inputs)).
				Int("workers", cfg.Workers).
				Msg("Starting batch")

			results, err := rt.Batch(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			out := newEmitter(cmd.OutOrStdout(), cfg.Output, cfg.Pretty)
			for _, r := range results {
				if err := out.Emit(r); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if err := out.Close(); err != nil {
				return err
			}

			ev := log.Info().Str("run_id", rt.RunID())
			for k, v := range m.Snapshot() {
				ev = ev.Float64(k, v)
			}
			ev.Msg("Batch metrics")

			summary := runtime.Summarize(results)
			if cfg.Pretty {
				b, _ := json.MarshalIndent(summary, "", "  ")
				fmt.Fprintln(cmd.ErrOrStderr(), string(b))
			}
			if summary.Failed > 0 {
				return diagnosticsError(summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.DefaultWorkers, "number of concurrent parsers")
	cmd.Flags().StringVar(&tracePath, "trace", "", "write NDJSON trace events to this file")

	return cmd
}
