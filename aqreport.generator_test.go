package aqreport

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	writes int
	doc    string
	err    error
}

func (s *recordingSink) Write(ctx context.Context, target, document string) error {
	s.writes++
	s.doc = document
	return s.err
}

type failingDataSource struct {
	*MemoryDataSource
	zonesErr error
}

func (f *failingDataSource) Zones(ctx context.Context) ([]Row, error) {
	return nil, f.zonesErr
}

func TestNewGenerator_Validation(t *testing.T) {
	ds := fixtureMemoryDataSource()
	store := NewEmbeddedTemplateStore()
	sink := &recordingSink{}

	tests := []struct {
		name string
		fn   func() (*Generator, error)
		msg  string
	}{
		{"nil data source", func() (*Generator, error) { return NewGenerator(nil, store, sink) }, ErrMsgNilDataSource},
		{"nil store", func() (*Generator, error) { return NewGenerator(ds, nil, sink) }, ErrMsgNilTemplateStore},
		{"nil sink", func() (*Generator, error) { return NewGenerator(ds, store, nil) }, ErrMsgNilOutputSink},
		{"bad concurrency", func() (*Generator, error) { return NewGenerator(ds, store, sink, WithConcurrency(-1)) }, ErrMsgInvalidConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := tt.fn()
			assert.Nil(t, gen)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.msg, cfgErr.Message)
		})
	}
}

func TestGenerator_Run(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zap.InfoLevel)
	gen, err := NewGenerator(fixtureMemoryDataSource(), NewEmbeddedTemplateStore(), NewFileSink(dir),
		WithLogger(zap.New(core)))
	require.NoError(t, err)

	result, err := gen.Run(context.Background(), DefaultOutputFile)
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Equal(t, DefaultOutputFile, result.Target)
	assert.Equal(t, 1, result.Authorities)
	assert.Equal(t, 2, result.Zones)
	assert.Equal(t, 3, result.Pollutants)

	data, err := os.ReadFile(filepath.Join(dir, DefaultOutputFile))
	require.NoError(t, err)
	doc := string(data)
	assert.Equal(t, len(doc), result.Bytes)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `<aqd:content xlink:href="HU.OMSZ.AQ/ZON-HU0001"/>`)
	assert.Contains(t, doc, `<aqd:content xlink:href="HU.OMSZ.AQ/ZON-HU0002"/>`)
	assert.Contains(t, doc, `<gn:text>Közép-Dunántúl</gn:text>`)
	assert.Contains(t, doc, `<aqd:area>525.14</aqd:area>`)
	assert.Contains(t, doc, `pollutant/5"/>`)
	assert.Contains(t, doc, `protectiontarget/V"/>`)
	assert.Equal(t, 2, strings.Count(doc, "<aqd:AQD_Zone "))
	assert.NotContains(t, doc, "{")

	for _, msg := range []string{LogMsgRunStart, LogMsgRunEnd} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, result.RunID, entries[0].ContextMap()[LogFieldRunID])
	}
}

func TestGenerator_RunIDsDiffer(t *testing.T) {
	gen, err := NewGenerator(fixtureMemoryDataSource(), NewEmbeddedTemplateStore(), &recordingSink{})
	require.NoError(t, err)

	first, err := gen.Run(context.Background(), "a.xml")
	require.NoError(t, err)
	second, err := gen.Run(context.Background(), "b.xml")
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestGenerator_NoPartialWrite(t *testing.T) {
	cause := errors.New("zones table missing")

	tests := []struct {
		name   string
		source DataSource
		store  TemplateStore
		check  func(t *testing.T, err error)
	}{
		{
			name:   "data source failure",
			source: &failingDataSource{MemoryDataSource: fixtureMemoryDataSource(), zonesErr: cause},
			store:  NewEmbeddedTemplateStore(),
			check: func(t *testing.T, err error) {
				assert.True(t, IsDataSourceError(err))
				assert.True(t, errors.Is(err, cause))
			},
		},
		{
			name:   "no authorities",
			source: NewMemoryDataSource(nil, fixtureZones(), fixturePollutants()),
			store:  NewEmbeddedTemplateStore(),
			check: func(t *testing.T, err error) {
				assert.Equal(t, ErrKindMissingAuthority, ErrorKind(err))
			},
		},
		{
			name:   "malformed template",
			source: fixtureMemoryDataSource(),
			store: NewMemoryTemplateStore(map[TemplateRole]string{
				TemplateRoleHeader:      "{responsible_xml_part}{zones_xml_part}",
				TemplateRoleResponsible: "{resp.ps_code",
				TemplateRoleZone:        "{zone.zn_code}",
				TemplateRolePollutant:   "{co_code}",
			}),
			check: func(t *testing.T, err error) {
				assert.True(t, IsMalformedTemplateError(err))
			},
		},
		{
			name:   "unknown pollutant field",
			source: NewMemoryDataSource(fixtureAuthorities(), fixtureZones(), map[string][]Row{"HU0002": {{"pt_code": "V"}}}),
			store:  NewEmbeddedTemplateStore(),
			check: func(t *testing.T, err error) {
				assert.True(t, IsUnknownFieldError(err))
				code, _ := ErrorMetadata(err, MetaKeyZoneCode)
				assert.Equal(t, "HU0002", code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			gen, err := NewGenerator(tt.source, tt.store, sink)
			require.NoError(t, err)

			result, err := gen.Run(context.Background(), DefaultOutputFile)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, 0, sink.writes)
			tt.check(t, err)
		})
	}
}

func TestGenerator_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("read-only filesystem")}
	gen, err := NewGenerator(fixtureMemoryDataSource(), NewEmbeddedTemplateStore(), sink)
	require.NoError(t, err)

	_, err = gen.Run(context.Background(), "B.xml")
	require.Error(t, err)
	assert.True(t, IsOutputSinkError(err))
	target, _ := ErrorMetadata(err, MetaKeyTarget)
	assert.Equal(t, "B.xml", target)
}

func TestGenerator_RenderToWriter(t *testing.T) {
	var buf bytes.Buffer
	gen, err := NewGenerator(fixtureMemoryDataSource(), NewEmbeddedTemplateStore(), NewWriterSink(&buf),
		WithConcurrency(4), WithNamespace("HU.TEST.AQ"))
	require.NoError(t, err)

	doc, result, err := gen.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len(), "render does not write")
	assert.Equal(t, len(doc), result.Bytes)
	assert.Contains(t, doc, `xlink:href="HU.TEST.AQ/ZON-HU0001"`)

	_, err = gen.Run(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, doc, buf.String())
}
