package aqreport

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Assembler and Generator.
type Option func(*assemblerConfig)

// assemblerConfig holds the internal configuration for an Assembler.
type assemblerConfig struct {
	namespace             string
	zonePrefix            string
	concurrency           int
	strictSingleAuthority bool
	logger                *zap.Logger
}

// defaultAssemblerConfig returns the default assembler configuration.
func defaultAssemblerConfig() *assemblerConfig {
	return &assemblerConfig{
		namespace:   DefaultNamespace,
		zonePrefix:  DefaultZonePrefix,
		concurrency: DefaultConcurrency,
		logger:      nil,
	}
}

// WithNamespace sets the namespace used in zone reference lines.
// Default: "HU.OMSZ.AQ"
func WithNamespace(namespace string) Option {
	return func(c *assemblerConfig) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithZonePrefix sets the prefix put in front of zone codes in zone references.
// Default: "ZON-"
func WithZonePrefix(prefix string) Option {
	return func(c *assemblerConfig) {
		c.zonePrefix = prefix
	}
}

// WithConcurrency sets how many zones are rendered at once.
// Output order does not depend on this value.
// Default: 1
func WithConcurrency(n int) Option {
	return func(c *assemblerConfig) {
		c.concurrency = n
	}
}

// WithStrictSingleAuthority makes more than one responsible authority row an
// error instead of a logged warning.
func WithStrictSingleAuthority() Option {
	return func(c *assemblerConfig) {
		c.strictSingleAuthority = true
	}
}

// WithLogger sets the logger.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *assemblerConfig) {
		c.logger = logger
	}
}
