package aqreport

import (
	"context"
	"fmt"
	"testing"
)

// =============================================================================
// SCANNING BENCHMARKS
// =============================================================================

func BenchmarkParseTemplate_Zone(b *testing.B) {
	set, err := LoadTemplateSet(context.Background(), NewEmbeddedTemplateStore(), nil)
	if err != nil {
		b.Fatal(err)
	}
	source := set.Get(TemplateRoleZone).String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseTemplate(TemplateRoleNameZone, source)
	}
}

// =============================================================================
// SUBSTITUTION BENCHMARKS
// =============================================================================

func BenchmarkSubstitute_Pollutant(b *testing.B) {
	tmpl := MustParseTemplate(TemplateRoleNamePollutant, "<p code=\"{co_code}\" target=\"{pt_code}\"/>")
	names := NewPlaceholderSet("co_code", "pt_code")
	row := Row{"co_code": "5", "pt_code": "H"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Substitute(names, row, tmpl)
	}
}

// =============================================================================
// ASSEMBLY BENCHMARKS
// =============================================================================

// benchmarkZones returns n zones with three pollutants each
func benchmarkZones(n int) ([]Row, PollutantLookup) {
	zones := make([]Row, n)
	for i := range zones {
		zones[i] = Row{
			"zn_code":            fmt.Sprintf("HU%04d", i),
			"zn_name":            fmt.Sprintf("Zone %d", i),
			"zn_type":            "nonag",
			"zn_population":      100000 + i,
			"zn_population_year": 2022,
			"zn_area":            float64(i) + 0.5,
		}
	}
	pollutants := []Row{
		{"co_code": "5", "pt_code": "H"},
		{"co_code": "7", "pt_code": "V"},
		{"co_code": "8", "pt_code": "H"},
	}
	lookup := func(ctx context.Context, zoneCode string) ([]Row, error) {
		return pollutants, nil
	}
	return zones, lookup
}

func benchmarkAssemble(b *testing.B, zoneCount, concurrency int) {
	set, err := LoadTemplateSet(context.Background(), NewEmbeddedTemplateStore(), nil)
	if err != nil {
		b.Fatal(err)
	}
	assembler, err := NewAssembler(set, WithConcurrency(concurrency))
	if err != nil {
		b.Fatal(err)
	}
	authorities := fixtureAuthorities()
	zones, lookup := benchmarkZones(zoneCount)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := assembler.Assemble(ctx, authorities, zones, lookup); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_10Zones(b *testing.B) {
	benchmarkAssemble(b, 10, 1)
}

func BenchmarkAssemble_200Zones(b *testing.B) {
	benchmarkAssemble(b, 200, 1)
}

func BenchmarkAssemble_200Zones_Parallel(b *testing.B) {
	benchmarkAssemble(b, 200, 8)
}
