package aqreport

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DataSource supplies the relational rows of one report run.
// Rows come back in source order; implementations must be safe for concurrent use.
type DataSource interface {
	// Zones returns every zone row.
	Zones(ctx context.Context) ([]Row, error)

	// Authorities returns the responsible authority rows.
	Authorities(ctx context.Context) ([]Row, error)

	// Pollutants returns the pollutant rows of one zone.
	// A zone without pollutants yields an empty slice, not an error.
	Pollutants(ctx context.Context, zoneCode string) ([]Row, error)

	// Close releases any resources held by the data source.
	Close() error
}

// DataSourceOptions carries the query parameters and tuning shared by drivers.
type DataSourceOptions struct {
	// CountryCode filters rows by nn_code_iso2.
	// Default: "hu"
	CountryCode string

	// CodeComb filters authorities by ac_code_comb.
	// Default: 3
	CodeComb int

	// QueryTimeout bounds each query.
	// Default: 30 seconds
	QueryTimeout time.Duration

	// Logger receives query logs. Default: no logging.
	Logger *zap.Logger
}

// DefaultDataSourceOptions returns options with the report defaults.
func DefaultDataSourceOptions() DataSourceOptions {
	return DataSourceOptions{
		CountryCode:  DefaultCountryCode,
		CodeComb:     DefaultCodeComb,
		QueryTimeout: SQLDefaultQueryTimeout,
	}
}

// withDefaults fills zero values with defaults
func (o DataSourceOptions) withDefaults() DataSourceOptions {
	if o.CountryCode == "" {
		o.CountryCode = DefaultCountryCode
	}
	if o.CodeComb == 0 {
		o.CodeComb = DefaultCodeComb
	}
	if o.QueryTimeout == 0 {
		o.QueryTimeout = SQLDefaultQueryTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// DataSourceDriver is a factory for data sources.
// Drivers register themselves during init().
type DataSourceDriver interface {
	// Open creates a data source from a driver-specific connection string.
	Open(dsn string, opts DataSourceOptions) (DataSource, error)
}

// Data source driver registry
var (
	dataSourceDriversMu sync.RWMutex
	dataSourceDrivers   = make(map[string]DataSourceDriver)
)

// Data source error message constants
const (
	ErrMsgNilDataSourceDriver      = "data source driver is nil"
	ErrMsgDataSourceDriverExists   = "data source driver already registered"
	ErrMsgDataSourceDriverNotFound = "data source driver not found"
	ErrMsgDataSourceClosed         = "data source is closed"
	ErrMsgEmptyDSN                 = "data source connection string is empty"
	ErrMsgFixtureParseFailed       = "failed to parse data source fixture"
)

// ErrDataSourceClosed is returned for queries on a closed data source.
var ErrDataSourceClosed = errors.New(ErrMsgDataSourceClosed)

// RegisterDataSourceDriver registers a driver by name.
// Panics if the driver is nil or the name is taken.
func RegisterDataSourceDriver(name string, driver DataSourceDriver) {
	dataSourceDriversMu.Lock()
	defer dataSourceDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilDataSourceDriver)
	}
	if _, exists := dataSourceDrivers[name]; exists {
		panic(ErrMsgDataSourceDriverExists + ": " + name)
	}
	dataSourceDrivers[name] = driver
}

// OpenDataSource opens a data source with the named driver.
//
// Example:
//
//	ds, err := aqreport.OpenDataSource("sqlite", "file:aq.db", aqreport.DefaultDataSourceOptions())
//	ds, err := aqreport.OpenDataSource("postgres", "postgres://u:p@host/aq?sslmode=disable", opts)
func OpenDataSource(driverName, dsn string, opts DataSourceOptions) (DataSource, error) {
	dataSourceDriversMu.RLock()
	driver, ok := dataSourceDrivers[driverName]
	dataSourceDriversMu.RUnlock()

	if !ok {
		return nil, &ConfigError{Message: ErrMsgDataSourceDriverNotFound, Field: driverName}
	}

	ds, err := driver.Open(dsn, opts)
	if err != nil {
		return nil, err
	}
	opts.withDefaults().Logger.Debug(LogMsgDataSourceOpened, zap.String(LogFieldDriver, driverName))
	return ds, nil
}

// ListDataSourceDrivers returns the registered driver names, sorted.
func ListDataSourceDrivers() []string {
	dataSourceDriversMu.RLock()
	defer dataSourceDriversMu.RUnlock()

	names := make([]string, 0, len(dataSourceDrivers))
	for name := range dataSourceDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemoryDataSource serves rows held in memory.
// It is primarily intended for testing and for callers that fetch rows themselves.
type MemoryDataSource struct {
	mu          sync.RWMutex
	authorities []Row
	zones       []Row
	pollutants  map[string][]Row // zone code -> pollutant rows
	closed      bool
}

// NewMemoryDataSource creates a data source over fixed rows.
func NewMemoryDataSource(authorities, zones []Row, pollutants map[string][]Row) *MemoryDataSource {
	byZone := make(map[string][]Row, len(pollutants))
	for code, rows := range pollutants {
		byZone[code] = copyRows(rows)
	}
	return &MemoryDataSource{
		authorities: copyRows(authorities),
		zones:       copyRows(zones),
		pollutants:  byZone,
	}
}

// Zones returns the zone rows.
func (s *MemoryDataSource) Zones(ctx context.Context) ([]Row, error) {
	return s.read(ctx, QueryNameZones, func() []Row { return s.zones })
}

// Authorities returns the authority rows.
func (s *MemoryDataSource) Authorities(ctx context.Context) ([]Row, error) {
	return s.read(ctx, QueryNameAuthorities, func() []Row { return s.authorities })
}

// Pollutants returns the pollutant rows of a zone; unknown zones have none.
func (s *MemoryDataSource) Pollutants(ctx context.Context, zoneCode string) ([]Row, error) {
	return s.read(ctx, QueryNamePollutants, func() []Row { return s.pollutants[zoneCode] })
}

// Close marks the data source closed.
func (s *MemoryDataSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryDataSource) read(ctx context.Context, query string, get func() []Row) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewDataSourceError(query, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewDataSourceError(query, ErrDataSourceClosed)
	}
	return copyRows(get()), nil
}

// copyRows returns a shallow copy of the slice; rows themselves are shared read-only.
func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}

// MemoryDataSourceDriver opens a MemoryDataSource from a YAML fixture file.
// The DSN is the file path. The fixture looks like:
//
//	authorities:
//	  - {ps_name: A1, og_name: EnvAgency}
//	zones:
//	  - {zn_code: Z1, zn_name: North}
//	pollutants:
//	  Z1:
//	    - {co_code: PM10, pt_code: "5"}
type MemoryDataSourceDriver struct{}

// memoryFixture is the YAML layout read by MemoryDataSourceDriver
type memoryFixture struct {
	Authorities []Row            `yaml:"authorities"`
	Zones       []Row            `yaml:"zones"`
	Pollutants  map[string][]Row `yaml:"pollutants"`
}

func init() {
	RegisterDataSourceDriver(DataSourceDriverNameMemory, &MemoryDataSourceDriver{})
}

// Open reads the fixture file named by dsn.
func (d *MemoryDataSourceDriver) Open(dsn string, opts DataSourceOptions) (DataSource, error) {
	if dsn == "" {
		return nil, &ConfigError{Message: ErrMsgEmptyDSN, Field: DataSourceDriverNameMemory}
	}
	data, err := os.ReadFile(dsn)
	if err != nil {
		return nil, NewDataSourceError(QueryNameConnect, err)
	}
	return ParseMemoryFixture(data)
}

// ParseMemoryFixture builds a MemoryDataSource from YAML fixture bytes.
func ParseMemoryFixture(data []byte) (*MemoryDataSource, error) {
	var fixture memoryFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, &ConfigError{Message: ErrMsgFixtureParseFailed, Cause: err}
	}
	return NewMemoryDataSource(fixture.Authorities, fixture.Zones, fixture.Pollutants), nil
}
