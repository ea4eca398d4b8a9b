package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsatony/go-aqreport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generateFlags holds the raw flag values of the generate command
type generateFlags struct {
	config      string
	driver      string
	dsn         string
	templates   string
	output      string
	country     string
	codeComb    int
	concurrency int
	strict      bool
	watch       bool
	logLevel    string
}

func newGenerateCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameGenerate,
		Short: HelpGenerateShort,
		Long:  HelpGenerateLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.config, FlagConfig, FlagConfigShort, "", HelpFlagConfig)
	f.StringVar(&flags.driver, FlagDriver, aqreport.DataSourceDriverNameSQLite, HelpFlagDriver)
	f.StringVar(&flags.dsn, FlagDSN, "", HelpFlagDSN)
	f.StringVarP(&flags.templates, FlagTemplates, FlagTemplatesShort, "", HelpFlagTemplates)
	f.StringVarP(&flags.output, FlagOutput, FlagOutputShort, aqreport.DefaultOutputFile, HelpFlagOutput)
	f.StringVar(&flags.country, FlagCountry, aqreport.DefaultCountryCode, HelpFlagCountry)
	f.IntVar(&flags.codeComb, FlagCodeComb, aqreport.DefaultCodeComb, HelpFlagCodeComb)
	f.IntVar(&flags.concurrency, FlagConcurrency, aqreport.DefaultConcurrency, HelpFlagConcurrency)
	f.BoolVar(&flags.strict, FlagStrict, false, HelpFlagStrict)
	f.BoolVar(&flags.watch, FlagWatch, false, HelpFlagWatch)
	f.StringVar(&flags.logLevel, FlagLogLevel, aqreport.LogLevelInfo, HelpFlagLogLevel)
	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	cfg, err := loadGenerateConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return newUsageError(ErrMsgLoggerInit, err)
	}
	defer logger.Sync() //nolint:errcheck

	ds, err := aqreport.OpenDataSource(cfg.DataSource.Driver, cfg.DataSource.DSN, cfg.DataSourceOptions(logger))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgOpenDataSource, err)
	}
	defer ds.Close()

	sink, target, display := outputFor(cfg, cmd.OutOrStdout())
	gen, err := aqreport.NewGenerator(ds, cfg.TemplateStore(), sink, cfg.Options(logger)...)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgGenerateFailed, err)
	}

	generate := func(ctx context.Context) error {
		result, err := gen.Run(ctx, target)
		if err != nil {
			return err
		}
		if target != OutputStdout {
			fmt.Fprintf(cmd.OutOrStdout(), FmtRunSummary, display, result.Bytes,
				result.Authorities, result.Zones, result.Pollutants, result.RunID)
		}
		return nil
	}

	ctx := cmd.Context()
	if err := generate(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgGenerateFailed, err)
	}
	if !flags.watch {
		return nil
	}
	return watchTemplates(ctx, cfg.Templates.Dir, generate, logger)
}

// loadGenerateConfig merges the config file with explicitly set flags
func loadGenerateConfig(cmd *cobra.Command, flags *generateFlags) (*aqreport.Config, error) {
	cfg := aqreport.DefaultConfig()
	if flags.config != "" {
		loaded, err := aqreport.LoadConfig(flags.config)
		if err != nil {
			return nil, newUsageError(ErrMsgInvalidConfig, err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed(FlagDriver) {
		cfg.DataSource.Driver = flags.driver
	}
	if f.Changed(FlagDSN) {
		cfg.DataSource.DSN = flags.dsn
	}
	if f.Changed(FlagTemplates) {
		cfg.Templates.Dir = flags.templates
	}
	if f.Changed(FlagOutput) {
		cfg.Output.Dir = ""
		cfg.Output.File = flags.output
	}
	if f.Changed(FlagCountry) {
		cfg.DataSource.Country = flags.country
	}
	if f.Changed(FlagCodeComb) {
		cfg.DataSource.CodeComb = flags.codeComb
	}
	if f.Changed(FlagConcurrency) {
		cfg.Report.Concurrency = flags.concurrency
	}
	if f.Changed(FlagStrict) {
		cfg.Report.StrictSingleAuthority = flags.strict
	}
	if f.Changed(FlagLogLevel) {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, newUsageError(ErrMsgInvalidConfig, err)
	}
	if flags.watch && cfg.Templates.Dir == "" {
		return nil, newUsageError(ErrMsgWatchNeedsDir, nil)
	}
	return cfg, nil
}

// outputFor picks the sink for the configured output and returns the
// target passed to it plus the path shown to the user
func outputFor(cfg *aqreport.Config, stdout io.Writer) (aqreport.OutputSink, string, string) {
	if cfg.Output.File == OutputStdout {
		return aqreport.NewWriterSink(stdout), OutputStdout, OutputStdout
	}
	sink := aqreport.NewFileSink(cfg.Output.Dir)
	return sink, cfg.Output.File, sink.Path(cfg.Output.File)
}

// watchTemplates regenerates on template changes until interrupted
func watchTemplates(ctx context.Context, dir string, generate aqreport.RegenerateFunc, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := aqreport.NewTemplateWatcher(dir, generate, aqreport.WatcherOptions{Logger: logger})
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWatcherFailed, err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWatcherFailed, err)
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
