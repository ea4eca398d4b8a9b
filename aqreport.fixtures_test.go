package aqreport

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Rows matching the built-in templates, shared by data source and generator tests.

func fixtureAuthorities() []Row {
	return []Row{{
		"ps_code":    "P1",
		"ps_name":    "Kovács Anna",
		"ps_email":   "anna@met.hu",
		"ps_phone":   "+36 1 346 4600",
		"og_code":    "O1",
		"og_name":    "OMSZ",
		"og_address": "Kitaibel Pál u. 1, Budapest",
		"og_url":     "https://www.met.hu",
		"ra_begin":   "2023-01-01T00:00:00Z",
		"ra_end":     "2023-12-31T23:59:59Z",
	}}
}

func fixtureZones() []Row {
	return []Row{
		{
			"zn_code":            "HU0001",
			"zn_name":            "Budapest",
			"zn_type":            "ag",
			"zn_population":      1750000,
			"zn_population_year": 2022,
			"zn_area":            525.14,
		},
		{
			"zn_code":            "HU0002",
			"zn_name":            "Közép-Dunántúl",
			"zn_type":            "nonag",
			"zn_population":      1050000,
			"zn_population_year": 2022,
			"zn_area":            11116.5,
		},
	}
}

func fixturePollutants() map[string][]Row {
	return map[string][]Row{
		"HU0001": {
			{"co_code": "5", "pt_code": "H"},
			{"co_code": "8", "pt_code": "H"},
		},
		"HU0002": {
			{"co_code": "7", "pt_code": "V"},
		},
	}
}

func fixtureMemoryDataSource() *MemoryDataSource {
	return NewMemoryDataSource(fixtureAuthorities(), fixtureZones(), fixturePollutants())
}

// fixtureSchemaSQL creates and fills the report tables. It is valid for
// both SQLite and PostgreSQL. Rows for other countries and code combinations
// check the query filters.
const fixtureSchemaSQL = `
CREATE TABLE AQD_ZONE (
	nn_code_iso2 VARCHAR(2) NOT NULL,
	zn_code VARCHAR(20) NOT NULL,
	zn_name VARCHAR(100),
	zn_type VARCHAR(10),
	zn_population INTEGER,
	zn_population_year INTEGER,
	zn_area DOUBLE PRECISION
);
CREATE TABLE person (
	ps_code VARCHAR(20) NOT NULL,
	ps_name VARCHAR(100),
	ps_email VARCHAR(100),
	ps_phone VARCHAR(40)
);
CREATE TABLE organization (
	og_code VARCHAR(20) NOT NULL,
	og_name VARCHAR(100),
	og_address VARCHAR(200),
	og_url VARCHAR(200)
);
CREATE TABLE AQD_responsible_authority (
	nn_code_iso2 VARCHAR(2) NOT NULL,
	ac_code_comb INTEGER NOT NULL,
	ps_code VARCHAR(20) NOT NULL,
	og_code VARCHAR(20) NOT NULL,
	ra_begin VARCHAR(30),
	ra_end VARCHAR(30)
);
CREATE TABLE AQD_zone_pollutant (
	nn_code_iso2 VARCHAR(2) NOT NULL,
	zn_code VARCHAR(20) NOT NULL,
	co_code VARCHAR(10),
	pt_code VARCHAR(10)
);
INSERT INTO AQD_ZONE VALUES ('hu', 'HU0001', 'Budapest', 'ag', 1750000, 2022, 525.14);
INSERT INTO AQD_ZONE VALUES ('hu', 'HU0002', 'Közép-Dunántúl', 'nonag', 1050000, 2022, 11116.5);
INSERT INTO AQD_ZONE VALUES ('at', 'AT0001', 'Wien', 'ag', 1900000, 2022, 414.87);
INSERT INTO person VALUES ('P1', 'Kovács Anna', 'anna@met.hu', '+36 1 346 4600');
INSERT INTO person VALUES ('P2', 'Max Muster', 'max@uba.at', '+43 1 31304');
INSERT INTO organization VALUES ('O1', 'OMSZ', 'Kitaibel Pál u. 1, Budapest', 'https://www.met.hu');
INSERT INTO organization VALUES ('O2', 'UBA', 'Spittelauer Lände 5, Wien', 'https://www.umweltbundesamt.at');
INSERT INTO AQD_responsible_authority VALUES ('hu', 3, 'P1', 'O1', '2023-01-01T00:00:00Z', '2023-12-31T23:59:59Z');
INSERT INTO AQD_responsible_authority VALUES ('hu', 2, 'P2', 'O1', '2022-01-01T00:00:00Z', '2022-12-31T23:59:59Z');
INSERT INTO AQD_responsible_authority VALUES ('at', 3, 'P2', 'O2', '2023-01-01T00:00:00Z', '2023-12-31T23:59:59Z');
INSERT INTO AQD_zone_pollutant VALUES ('hu', 'HU0001', '5', 'H');
INSERT INTO AQD_zone_pollutant VALUES ('hu', 'HU0001', '8', 'H');
INSERT INTO AQD_zone_pollutant VALUES ('hu', 'HU0002', '7', 'V');
INSERT INTO AQD_zone_pollutant VALUES ('at', 'AT0001', '5', 'H');
`

// seedFixtureSchema runs fixtureSchemaSQL one statement at a time
func seedFixtureSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, stmt := range strings.Split(fixtureSchemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
}
