package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-aqreport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// usageError marks failures caused by how the CLI was invoked
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(msg string, cause error) error {
	if cause == nil {
		return &usageError{err: errors.New(msg)}
	}
	return &usageError{err: fmt.Errorf("%s: %w", msg, cause)}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         HelpRootShort,
		Long:          HelpRootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		newGenerateCmd(),
		newPlaceholdersCmd(),
		newVersionCmd(),
	)
	return root
}

// exitCodeFor prints err and maps it to an exit code
func exitCodeFor(err error, stderr io.Writer) int {
	fmt.Fprintf(stderr, FmtError, err)
	if similar, ok := aqreport.ErrorMetadata(err, aqreport.MetaKeySuggestions); ok {
		fmt.Fprintf(stderr, FmtSuggestions, strings.ReplaceAll(similar, ",", PlaceholderJoiner))
	}

	var usageErr *usageError
	var configErr *aqreport.ConfigError
	switch {
	case errors.As(err, &usageErr), errors.As(err, &configErr):
		return ExitCodeUsageError
	case strings.HasPrefix(err.Error(), cobraUnknownCommandText):
		return ExitCodeUsageError
	default:
		return ExitCodeError
	}
}

// newLogger builds a console logger writing to w at the given level
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := aqreport.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
