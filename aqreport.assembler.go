package aqreport

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PollutantLookup returns the pollutant rows measured in one zone, in source order.
type PollutantLookup func(ctx context.Context, zoneCode string) ([]Row, error)

// Assembler composes the three hierarchy levels into the final document:
// pollutants into zones, zone references into authority blocks, and both
// composites into the header.
//
// An Assembler is immutable after construction and safe for concurrent use.
type Assembler struct {
	templates *TemplateSet
	zoneRef   *Template

	respNames      PlaceholderSet // resp.* in the responsible template
	zoneRespNames  PlaceholderSet // resp.* in the zone template
	zoneNames      PlaceholderSet // zone.* in the zone template
	pollutantNames PlaceholderSet // everything in the pollutant template

	config *assemblerConfig
	logger *zap.Logger
}

// NewAssembler creates an Assembler over a parsed template set.
func NewAssembler(templates *TemplateSet, opts ...Option) (*Assembler, error) {
	config := defaultAssemblerConfig()
	for _, opt := range opts {
		opt(config)
	}
	return newAssembler(templates, config)
}

func newAssembler(templates *TemplateSet, config *assemblerConfig) (*Assembler, error) {
	if templates == nil {
		return nil, NewMalformedTemplateError("", errNilTemplate)
	}
	for _, role := range TemplateRoles() {
		if templates.Get(role) == nil {
			return nil, NewMalformedTemplateError(role.String(), errNilTemplate)
		}
	}
	if config.concurrency < 1 {
		return nil, &ConfigError{Message: ErrMsgInvalidConcurrency}
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	zoneRef, err := ParseTemplate(TemplateRoleNameZoneRef, ZoneReferenceLine)
	if err != nil {
		return nil, err
	}

	resp := namespacePrefix(NamespaceResponsible)
	return &Assembler{
		templates:      templates,
		zoneRef:        zoneRef.Splice(PlaceholderNamespace, config.namespace),
		respNames:      Extract(templates.Responsible, resp),
		zoneRespNames:  Extract(templates.Zone, resp),
		zoneNames:      Extract(templates.Zone, namespacePrefix(NamespaceZone)),
		pollutantNames: Extract(templates.Pollutant, ""),
		config:         config,
		logger:         logger,
	}, nil
}

// Assemble builds the document.
//
// Every authority row gets its own responsible block, each listing all zones.
// Zone blocks take their authority context from the first authority row only;
// with more than one authority this is logged, or rejected under
// WithStrictSingleAuthority.
func (a *Assembler) Assemble(ctx context.Context, authorities, zones []Row, lookup PollutantLookup) (string, error) {
	start := time.Now()
	if lookup == nil {
		return "", NewNilLookupError()
	}
	if len(authorities) == 0 {
		return "", NewMissingAuthorityError()
	}
	if len(authorities) > 1 {
		if a.config.strictSingleAuthority {
			return "", NewMultipleAuthoritiesError(len(authorities))
		}
		a.logger.Warn(LogMsgMultipleAuthorities, zap.Int(LogFieldAuthorities, len(authorities)))
	}
	a.logger.Debug(LogMsgAssembleStart,
		zap.Int(LogFieldAuthorities, len(authorities)),
		zap.Int(LogFieldZones, len(zones)))

	zoneList, err := a.ZoneList(zones)
	if err != nil {
		return "", err
	}

	responsible, err := a.RenderResponsible(authorities, zoneList)
	if err != nil {
		return "", err
	}

	zonesPart, err := a.RenderZones(ctx, authorities[0], zones, lookup)
	if err != nil {
		return "", err
	}

	doc := a.templates.Header.bindValues(map[string]string{
		PlaceholderResponsiblePart: responsible,
		PlaceholderZonesPart:       zonesPart,
	}).String()

	a.logger.Debug(LogMsgAssembleEnd,
		zap.Int(LogFieldBytes, len(doc)),
		zap.Duration(LogFieldDuration, time.Since(start)))
	return doc, nil
}

// ZoneList renders one reference line per zone row,
// e.g. <aqd:content xlink:href="HU.OMSZ.AQ/ZON-Z1"/>.
func (a *Assembler) ZoneList(zones []Row) (string, error) {
	refs := make([]Row, 0, len(zones))
	for i, zone := range zones {
		code, ok := zone.Text(FieldZoneCode)
		if !ok {
			return "", withRowIndex(NewUnknownFieldError(TemplateRoleNameZoneRef, PlaceholderZoneName, FieldZoneCode), i)
		}
		refs = append(refs, Row{PlaceholderZoneName: a.config.zonePrefix + code})
	}
	block, err := ComposeBlock(refs, NewPlaceholderSet(PlaceholderZoneName), a.zoneRef, nil)
	if err != nil {
		return "", err
	}
	a.logBlock(TemplateRoleNameZoneRef, len(zones), block)
	return block, nil
}

// RenderResponsible renders one responsible block per authority row, each
// with the zone list spliced in at {zone_list}.
func (a *Assembler) RenderResponsible(authorities []Row, zoneList string) (string, error) {
	withZones := a.templates.Responsible.Splice(PlaceholderZoneList, zoneList)
	block, err := ComposeBlock(authorities, a.respNames, withZones, nil)
	if err != nil {
		return "", err
	}
	a.logBlock(TemplateRoleNameResponsible, len(authorities), block)
	return block, nil
}

// RenderPollutants renders the pollutant block of one zone.
func (a *Assembler) RenderPollutants(pollutants []Row) (string, error) {
	block, err := ComposeBlock(pollutants, a.pollutantNames, a.templates.Pollutant, nil)
	if err != nil {
		return "", err
	}
	a.logBlock(TemplateRoleNamePollutant, len(pollutants), block)
	return block, nil
}

// RenderZones renders every zone block, in zone row order, with the given
// authority as context. With concurrency above 1 zones render in parallel;
// the output is identical to the sequential result.
func (a *Assembler) RenderZones(ctx context.Context, authority Row, zones []Row, lookup PollutantLookup) (string, error) {
	if a.config.concurrency <= 1 || len(zones) <= 1 {
		block, err := ComposeBlock(zones, a.zoneNames, nil, a.zonePreprocess(ctx, authority, lookup))
		if err != nil {
			return "", err
		}
		a.logBlock(TemplateRoleNameZone, len(zones), block)
		return block, nil
	}

	parts := make([]string, len(zones))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.concurrency)
	preprocess := a.zonePreprocess(gctx, authority, lookup)
	for i, zone := range zones {
		i, zone := i, zone
		g.Go(func() error {
			tmpl, err := preprocess(zone)
			if err != nil {
				return withRowIndex(err, i)
			}
			text, err := Substitute(a.zoneNames, zone, tmpl)
			if err != nil {
				return withRowIndex(err, i)
			}
			parts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	block := joinBlock(parts)
	a.logBlock(TemplateRoleNameZone, len(zones), block)
	return block, nil
}

// zonePreprocess returns the per-zone template derivation: authority fields
// bound, pollutant block fetched, rendered and spliced. Zone fields are left
// for the row substitution.
func (a *Assembler) zonePreprocess(ctx context.Context, authority Row, lookup PollutantLookup) PreprocessFunc {
	return func(zone Row) (*Template, error) {
		code, ok := zone.Text(FieldZoneCode)
		if !ok {
			return nil, NewUnknownFieldError(TemplateRoleNameZone, namespacePrefix(NamespaceZone)+FieldZoneCode, FieldZoneCode)
		}

		withAuthority, err := a.templates.Zone.Bind(a.zoneRespNames, authority)
		if err != nil {
			return nil, err
		}

		pollutants, err := lookup(ctx, code)
		if err != nil {
			if IsDataSourceError(err) {
				return nil, err
			}
			return nil, NewPollutantQueryError(code, err)
		}

		block, err := a.RenderPollutants(pollutants)
		if err != nil {
			return nil, withZoneCode(err, code)
		}

		a.logger.Debug(LogMsgZoneRendered,
			zap.String(LogFieldZoneCode, code),
			zap.Int(LogFieldPollutants, len(pollutants)))
		return withAuthority.Splice(PlaceholderPollutantsList, block), nil
	}
}

func (a *Assembler) logBlock(role string, rows int, block string) {
	a.logger.Debug(LogMsgBlockComposed,
		zap.String(LogFieldTemplate, role),
		zap.Int(LogFieldRows, rows),
		zap.Int(LogFieldBytes, len(block)))
}
