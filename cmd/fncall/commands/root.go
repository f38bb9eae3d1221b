package commands

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/fncall/internal/config"
	"github.com/thomasrohde/fncall/pkg/metrics"
	"github.com/thomasrohde/fncall/pkg/runtime"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitDiagnostics = 2
)

// Error codes for CLI failures.
const (
	ErrCodeUsage       = "FNCALL_USAGE"
	ErrCodeIO          = "FNCALL_IO"
	ErrCodeDiagnostics = "FNCALL_DIAGNOSTICS"
)

var (
	// Global flags
	configPath  string
	noAutoQuote bool
	pretty      bool
	outputFmt   string
	logLevel    string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder errors.ErrorCoder
	if stderrors.As(err, &coder) && string(coder.ErrorCode()) == ErrCodeDiagnostics {
		return ExitDiagnostics
	}
	return ExitFailure
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fncall",
		Short: "Safe function-call string parser",
		Long: `fncall turns strings such as

  myfunc("test", 123, value=123, name=xxx)

into a name, positional arguments and keyword arguments without evaluating
anything. Arguments must be literals; with auto-quoting (the default) plain
tokens like xxx or 12a become strings. Nested calls, operators and trailing
statements are rejected.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&noAutoQuote, "no-auto-quote", false, "reject arguments that are not literals")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newFmtCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newTraceCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}

// loadSettings reads the configuration and applies command-line overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-auto-quote") {
		cfg.AutoQuote = !noAutoQuote
	}
	if flags.Changed("pretty") {
		cfg.Pretty = pretty
	}
	if flags.Changed("output") {
		cfg.Output = outputFmt
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	return cfg, nil
}

// newRuntime builds a runtime from cfg with a private metrics registry.
func newRuntime(cfg *config.Config, extra ...runtime.Option) (*runtime.Runtime, *metrics.Metrics, error) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, nil, err
	}
	opts := []runtime.Option{
		runtime.WithAutoQuote(cfg.AutoQuote),
		runtime.WithCacheSize(cfg.CacheSize),
		runtime.WithWorkers(cfg.Workers),
		runtime.WithLogger(log.Logger),
		runtime.WithMetrics(m),
	}
	return runtime.New(append(opts, extra...)...), m, nil
}

func diagnosticsError(failed, total int) error {
	return errors.New(ErrCodeDiagnostics, fmt.Sprintf("%d of %d call(s) rejected", failed, total))
}
