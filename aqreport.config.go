package aqreport

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config error message constants
const (
	ErrMsgConfigReadFailed   = "failed to read config file"
	ErrMsgConfigParseFailed  = "failed to parse config"
	ErrMsgConfigMissingField = "required config field is empty"
	ErrMsgConfigInvalidValue = "invalid config value"
)

// Config field paths used in validation errors
const (
	ConfigFieldDriver      = "datasource.driver"
	ConfigFieldDSN         = "datasource.dsn"
	ConfigFieldCountry     = "datasource.country"
	ConfigFieldCodeComb    = "datasource.code_comb"
	ConfigFieldOutputFile  = "output.file"
	ConfigFieldConcurrency = "report.concurrency"
	ConfigFieldLogLevel    = "log.level"
)

// Log level names
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config is the YAML configuration of a report run.
type Config struct {
	DataSource DataSourceConfig `yaml:"datasource"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Output     OutputConfig     `yaml:"output"`
	Report     ReportConfig     `yaml:"report"`
	Log        LogConfig        `yaml:"log"`
}

// DataSourceConfig selects the data source driver and query parameters.
type DataSourceConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Country  string `yaml:"country"`
	CodeComb int    `yaml:"code_comb"`
}

// TemplatesConfig locates the template files. An empty Dir selects the
// embedded templates.
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig locates the written document.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// ReportConfig holds the assembler settings.
type ReportConfig struct {
	Namespace             string `yaml:"namespace"`
	ZonePrefix            string `yaml:"zone_prefix"`
	Concurrency           int    `yaml:"concurrency"`
	StrictSingleAuthority bool   `yaml:"strict_single_authority"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		DataSource: DataSourceConfig{
			Driver:   DataSourceDriverNameSQLite,
			Country:  DefaultCountryCode,
			CodeComb: DefaultCodeComb,
		},
		Output: OutputConfig{
			Dir:  ".",
			File: DefaultOutputFile,
		},
		Report: ReportConfig{
			Namespace:   DefaultNamespace,
			ZonePrefix:  DefaultZonePrefix,
			Concurrency: DefaultConcurrency,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
	}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: ErrMsgConfigReadFailed, Field: path, Cause: err}
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML on top of DefaultConfig, so omitted keys keep
// their defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Message: ErrMsgConfigParseFailed, Cause: err}
	}
	return cfg, nil
}

// Validate checks the config for values a run cannot start with.
func (c *Config) Validate() error {
	if c.DataSource.Driver == "" {
		return &ConfigError{Message: ErrMsgConfigMissingField, Field: ConfigFieldDriver}
	}
	if c.DataSource.DSN == "" {
		return &ConfigError{Message: ErrMsgConfigMissingField, Field: ConfigFieldDSN}
	}
	if c.DataSource.Country == "" {
		return &ConfigError{Message: ErrMsgConfigMissingField, Field: ConfigFieldCountry}
	}
	if c.DataSource.CodeComb < 0 {
		return &ConfigError{Message: ErrMsgConfigInvalidValue, Field: ConfigFieldCodeComb}
	}
	if c.Output.File == "" {
		return &ConfigError{Message: ErrMsgConfigMissingField, Field: ConfigFieldOutputFile}
	}
	if c.Report.Concurrency < 1 {
		return &ConfigError{Message: ErrMsgInvalidConcurrency, Field: ConfigFieldConcurrency}
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// DataSourceOptions returns the data source options described by the config.
func (c *Config) DataSourceOptions(logger *zap.Logger) DataSourceOptions {
	opts := DefaultDataSourceOptions()
	opts.CountryCode = c.DataSource.Country
	opts.CodeComb = c.DataSource.CodeComb
	opts.Logger = logger
	return opts
}

// Options returns the assembler options described by the config.
func (c *Config) Options(logger *zap.Logger) []Option {
	opts := []Option{
		WithNamespace(c.Report.Namespace),
		WithZonePrefix(c.Report.ZonePrefix),
		WithConcurrency(c.Report.Concurrency),
		WithLogger(logger),
	}
	if c.Report.StrictSingleAuthority {
		opts = append(opts, WithStrictSingleAuthority())
	}
	return opts
}

// TemplateStore returns a filesystem store for Templates.Dir, or the
// embedded templates when it is empty.
func (c *Config) TemplateStore() TemplateStore {
	if c.Templates.Dir == "" {
		return NewEmbeddedTemplateStore()
	}
	return NewFilesystemTemplateStore(c.Templates.Dir)
}

// ParseLogLevel maps a level name to a zap level. Empty means info.
func ParseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case "", LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, &ConfigError{Message: ErrMsgConfigInvalidValue, Field: ConfigFieldLogLevel + "=" + level}
	}
}
