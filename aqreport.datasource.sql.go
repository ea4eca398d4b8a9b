package aqreport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQL query templates. %[n]s are replaced by the driver's bind variables.
const (
	sqlZonesQuery = `SELECT * FROM AQD_ZONE WHERE nn_code_iso2 = %[1]s`

	sqlAuthoritiesQuery = `SELECT * FROM AQD_responsible_authority ra
		INNER JOIN person p ON p.ps_code = ra.ps_code
		INNER JOIN organization o ON o.og_code = ra.og_code
		WHERE ra.nn_code_iso2 = %[1]s AND ra.ac_code_comb = %[2]s`

	sqlPollutantsQuery = `SELECT * FROM AQD_zone_pollutant WHERE nn_code_iso2 = %[1]s AND zn_code = %[2]s`
)

// SQL data source error message constants
const (
	ErrMsgSQLScanFailed = "failed to scan row"
)

// SQLConfig configures an SQL-backed data source.
type SQLConfig struct {
	// DriverName is the database/sql driver: "postgres" or "sqlite".
	DriverName string

	// DSN is the driver-specific connection string.
	DSN string

	// Options holds the query parameters.
	Options DataSourceOptions

	// MaxOpenConns is the maximum number of open connections.
	// Default: 5
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration
}

// SQLDataSource runs the zone, authority and pollutant queries over database/sql.
type SQLDataSource struct {
	db       *sql.DB
	bindVars bindVarFunc
	opts     DataSourceOptions
	logger   *zap.Logger
	mu       sync.RWMutex
	closed   bool
}

// SQLDataSourceDriver opens SQLDataSource instances for one database/sql driver.
type SQLDataSourceDriver struct {
	driverName string
}

func init() {
	RegisterDataSourceDriver(DataSourceDriverNamePostgres, &SQLDataSourceDriver{driverName: DataSourceDriverNamePostgres})
	RegisterDataSourceDriver(DataSourceDriverNameSQLite, &SQLDataSourceDriver{driverName: DataSourceDriverNameSQLite})
}

// Open creates an SQLDataSource for the driver.
func (d *SQLDataSourceDriver) Open(dsn string, opts DataSourceOptions) (DataSource, error) {
	return NewSQLDataSource(SQLConfig{
		DriverName: d.driverName,
		DSN:        dsn,
		Options:    opts,
	})
}

// NewSQLDataSource opens and pings a database.
func NewSQLDataSource(config SQLConfig) (*SQLDataSource, error) {
	if config.DSN == "" {
		return nil, &ConfigError{Message: ErrMsgEmptyDSN, Field: config.DriverName}
	}

	// Apply defaults for zero values
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = SQLDefaultMaxOpenConns
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = SQLDefaultMaxIdleConns
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = SQLDefaultConnMaxLifetime
	}
	opts := config.Options.withDefaults()

	db, err := sql.Open(config.DriverName, config.DSN)
	if err != nil {
		return nil, NewDataSourceError(QueryNameConnect, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), opts.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewDataSourceError(QueryNameConnect, err)
	}

	return NewSQLDataSourceFromDB(db, config.DriverName, opts), nil
}

// NewSQLDataSourceFromDB wraps an already opened database. The data source
// takes ownership: Close closes db.
func NewSQLDataSourceFromDB(db *sql.DB, driverName string, opts DataSourceOptions) *SQLDataSource {
	opts = opts.withDefaults()
	return &SQLDataSource{
		db:       db,
		bindVars: bindVarsFor(driverName),
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Zones returns the zone rows of the configured country.
func (s *SQLDataSource) Zones(ctx context.Context) ([]Row, error) {
	return s.query(ctx, QueryNameZones, sqlZonesQuery, s.opts.CountryCode)
}

// Authorities returns the responsible authority rows joined with their person
// and organization records.
func (s *SQLDataSource) Authorities(ctx context.Context) ([]Row, error) {
	return s.query(ctx, QueryNameAuthorities, sqlAuthoritiesQuery, s.opts.CountryCode, s.opts.CodeComb)
}

// Pollutants returns the pollutant rows of one zone.
func (s *SQLDataSource) Pollutants(ctx context.Context, zoneCode string) ([]Row, error) {
	rows, err := s.query(ctx, QueryNamePollutants, sqlPollutantsQuery, s.opts.CountryCode, zoneCode)
	if err != nil {
		return nil, withZoneCode(err, zoneCode)
	}
	return rows, nil
}

// Close closes the underlying database.
func (s *SQLDataSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLDataSource) query(ctx context.Context, name, queryTmpl string, args ...any) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewDataSourceError(name, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewDataSourceError(name, ErrDataSourceClosed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.bindVars.format(queryTmpl, len(args)), args...)
	if err != nil {
		return nil, NewDataSourceError(name, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, NewDataSourceError(name, err)
	}

	s.logger.Debug(LogMsgQueryExecuted,
		zap.String(LogFieldQuery, name),
		zap.Int(LogFieldRows, len(result)),
		zap.Duration(LogFieldDuration, time.Since(start)))
	return result, nil
}

// scanRows reads every result row into a Row keyed by lower-cased column name.
// Joined tables may repeat a column; the first non-null value wins.
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgSQLScanFailed, err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			key := strings.ToLower(col)
			if existing, ok := row[key]; ok && existing != nil {
				continue
			}
			if b, ok := values[i].([]byte); ok {
				row[key] = string(b)
				continue
			}
			row[key] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// bindVarFunc returns the n-th (1-based) bind variable of a driver
type bindVarFunc func(n int) string

// format expands a query template with count bind variables
func (f bindVarFunc) format(queryTmpl string, count int) string {
	vars := make([]any, count)
	for i := range vars {
		vars[i] = f(i + 1)
	}
	return fmt.Sprintf(queryTmpl, vars...)
}

// bindVarsFor returns "$n" for postgres and "?" otherwise
func bindVarsFor(driverName string) bindVarFunc {
	if driverName == DataSourceDriverNamePostgres {
		return func(n int) string { return fmt.Sprintf("$%d", n) }
	}
	return func(int) string { return "?" }
}
