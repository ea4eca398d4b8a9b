package aqreport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator error message constants
const (
	ErrMsgNilDataSource    = "data source is nil"
	ErrMsgNilTemplateStore = "template store is nil"
	ErrMsgNilOutputSink    = "output sink is nil"
)

// RunResult describes one completed report run.
type RunResult struct {
	RunID       string
	Target      string
	Authorities int
	Zones       int
	Pollutants  int
	Bytes       int
	Duration    time.Duration
}

// Generator wires a data source, a template store and an output sink to the
// Assembler. Each Run reloads templates and rows, so nothing is kept between runs.
type Generator struct {
	source DataSource
	store  TemplateStore
	sink   OutputSink
	config *assemblerConfig
	logger *zap.Logger
}

// NewGenerator creates a Generator. Options are passed through to the Assembler.
func NewGenerator(source DataSource, store TemplateStore, sink OutputSink, opts ...Option) (*Generator, error) {
	if source == nil {
		return nil, &ConfigError{Message: ErrMsgNilDataSource}
	}
	if store == nil {
		return nil, &ConfigError{Message: ErrMsgNilTemplateStore}
	}
	if sink == nil {
		return nil, &ConfigError{Message: ErrMsgNilOutputSink}
	}

	config := defaultAssemblerConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.concurrency < 1 {
		return nil, &ConfigError{Message: ErrMsgInvalidConcurrency}
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		source: source,
		store:  store,
		sink:   sink,
		config: config,
		logger: logger,
	}, nil
}

// Render loads templates and rows and assembles the document without writing it.
func (g *Generator) Render(ctx context.Context) (string, *RunResult, error) {
	result := &RunResult{RunID: uuid.NewString()}
	logger := g.logger.With(zap.String(LogFieldRunID, result.RunID))
	doc, err := g.render(ctx, result, logger)
	if err != nil {
		return "", nil, err
	}
	return doc, result, nil
}

// Run renders the document and hands it to the sink under target.
// Any failure aborts the run before the sink is called.
func (g *Generator) Run(ctx context.Context, target string) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{RunID: uuid.NewString(), Target: target}
	logger := g.logger.With(zap.String(LogFieldRunID, result.RunID))
	logger.Info(LogMsgRunStart, zap.String(LogFieldTarget, target))

	doc, err := g.render(ctx, result, logger)
	if err != nil {
		logger.Error(LogMsgRunFailed, zap.Error(err))
		return nil, err
	}

	if err := g.sink.Write(ctx, target, doc); err != nil {
		if !IsOutputSinkError(err) {
			err = NewOutputSinkError(target, err)
		}
		logger.Error(LogMsgRunFailed, zap.Error(err))
		return nil, err
	}
	logger.Debug(LogMsgDocumentWritten, zap.String(LogFieldTarget, target), zap.Int(LogFieldBytes, len(doc)))

	result.Duration = time.Since(start)
	logger.Info(LogMsgRunEnd,
		zap.Int(LogFieldAuthorities, result.Authorities),
		zap.Int(LogFieldZones, result.Zones),
		zap.Int(LogFieldPollutants, result.Pollutants),
		zap.Int(LogFieldBytes, result.Bytes),
		zap.Duration(LogFieldDuration, result.Duration))
	return result, nil
}

func (g *Generator) render(ctx context.Context, result *RunResult, logger *zap.Logger) (string, error) {
	templates, err := LoadTemplateSet(ctx, g.store, logger)
	if err != nil {
		return "", err
	}

	config := *g.config
	config.logger = logger
	assembler, err := newAssembler(templates, &config)
	if err != nil {
		return "", err
	}

	zones, err := g.source.Zones(ctx)
	if err != nil {
		return "", asDataSourceError(QueryNameZones, err)
	}
	authorities, err := g.source.Authorities(ctx)
	if err != nil {
		return "", asDataSourceError(QueryNameAuthorities, err)
	}

	var pollutants atomic.Int64
	lookup := func(ctx context.Context, zoneCode string) ([]Row, error) {
		rows, err := g.source.Pollutants(ctx, zoneCode)
		if err != nil {
			return nil, err
		}
		pollutants.Add(int64(len(rows)))
		return rows, nil
	}

	doc, err := assembler.Assemble(ctx, authorities, zones, lookup)
	if err != nil {
		return "", err
	}

	result.Authorities = len(authorities)
	result.Zones = len(zones)
	result.Pollutants = int(pollutants.Load())
	result.Bytes = len(doc)
	return doc, nil
}

// asDataSourceError keeps data source errors as they are and wraps anything else
func asDataSourceError(query string, err error) error {
	if IsDataSourceError(err) {
		return err
	}
	return NewDataSourceError(query, err)
}
