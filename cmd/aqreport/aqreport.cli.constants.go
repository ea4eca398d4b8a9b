package main

// CLI name
const CLIName = "aqreport"

// Command names
const (
	CmdNameGenerate     = "generate"
	CmdNamePlaceholders = "placeholders"
	CmdNameVersion      = "version"
)

// Flag names
const (
	FlagConfig      = "config"
	FlagDriver      = "driver"
	FlagDSN         = "dsn"
	FlagTemplates   = "templates"
	FlagOutput      = "output"
	FlagCountry     = "country"
	FlagCodeComb    = "code-comb"
	FlagConcurrency = "concurrency"
	FlagStrict      = "strict"
	FlagWatch       = "watch"
	FlagLogLevel    = "log-level"
	FlagFormat      = "format"
)

// Flag short forms
const (
	FlagConfigShort    = "c"
	FlagTemplatesShort = "t"
	FlagOutputShort    = "o"
)

// Output targets and formats
const (
	OutputStdout     = "-"
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidConfig     = "invalid configuration"
	ErrMsgOpenDataSource    = "failed to open data source"
	ErrMsgGenerateFailed    = "report generation failed"
	ErrMsgWatchNeedsDir     = "--watch requires a template directory"
	ErrMsgLoadTemplates     = "failed to load templates"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgLoggerInit        = "failed to build logger"
	ErrMsgWatcherFailed     = "template watcher failed"
	cobraUnknownCommandText = "unknown command"
)

// Output format strings
const (
	FmtError          = "Error: %v\n"
	FmtSuggestions    = "Did you mean: %s?\n"
	FmtRunSummary     = "wrote %s (%d bytes, %d authorities, %d zones, %d pollutants, run %s)\n"
	FmtPlaceholders   = "%s: %s\n"
	FmtVersion        = "%s %s (commit %s, %s)\n"
	PlaceholderJoiner = ", "
	VersionUnknown    = "unknown"
)

// Help texts
const (
	HelpRootShort         = "Generate the AQD B zones XML report"
	HelpGenerateShort     = "Query the data source and write the report"
	HelpPlaceholdersShort = "List the placeholders of each template"
	HelpVersionShort      = "Show version information"

	HelpRootLong = `aqreport builds the air-quality zones report (AQD dataset B) from
responsible authority, zone and pollutant rows using four text templates:
header.txt, resp.txt, zones.txt and pollutants.txt.`

	HelpGenerateLong = `Query zones, authorities and pollutants, assemble the document and
write it. Flags override values from the --config file.

Drivers: postgres, sqlite (pure Go), memory (DSN is a YAML fixture file).
Use --output - to write to stdout.`

	HelpFlagConfig      = "YAML config file"
	HelpFlagDriver      = "data source driver (postgres, sqlite, memory)"
	HelpFlagDSN         = "data source connection string"
	HelpFlagTemplates   = "template directory (default: built-in templates)"
	HelpFlagOutput      = "output file, or - for stdout"
	HelpFlagCountry     = "country code filter (nn_code_iso2)"
	HelpFlagCodeComb    = "authority code combination filter (ac_code_comb)"
	HelpFlagConcurrency = "zones rendered in parallel"
	HelpFlagStrict      = "fail when more than one responsible authority row is returned"
	HelpFlagWatch       = "regenerate whenever a template file changes"
	HelpFlagLogLevel    = "log level (debug, info, warn, error)"
	HelpFlagFormat      = "output format (text, json)"
)
