package aqreport

import "time"

// Reserved composite placeholder names
const (
	PlaceholderResponsiblePart = "responsible_xml_part" // header: rendered authority blocks
	PlaceholderZonesPart       = "zones_xml_part"       // header: rendered zone blocks
	PlaceholderZoneList        = "zone_list"            // responsible template: zone references
	PlaceholderPollutantsList  = "pollutants_list"      // zone template: rendered pollutant block
	PlaceholderZoneName        = "zone_name"            // zone reference line
)

// Namespace qualifiers used to scope placeholders to an entity level
const (
	NamespaceResponsible = "resp"
	NamespaceZone        = "zone"
	NamespaceSeparator   = "."
)

// Row field names the assembler reads directly
const (
	FieldZoneCode = "zn_code"
)

// Report defaults
const (
	DefaultNamespace   = "HU.OMSZ.AQ"
	DefaultZonePrefix  = "ZON-"
	DefaultConcurrency = 1
	DefaultOutputFile  = "B.xml"
	DefaultCountryCode = "hu"
	DefaultCodeComb    = 3
)

// ZoneReferenceLine is the fixed shape of one entry in the zone list composite.
// {namespace} and {zone_name} are bound by the assembler.
const ZoneReferenceLine = `<aqd:content xlink:href="{namespace}/{zone_name}"/>`

// PlaceholderNamespace is the namespace placeholder inside ZoneReferenceLine
const PlaceholderNamespace = "namespace"

// Block composition constants
const (
	BlockSeparator = "\n"
)

// Template role names
const (
	TemplateRoleNameHeader      = "header"
	TemplateRoleNameResponsible = "responsible"
	TemplateRoleNameZone        = "zone"
	TemplateRoleNamePollutant   = "pollutant"
	TemplateRoleNameZoneRef     = "zone_reference"
)

// Template file names used by the filesystem and embedded stores
const (
	TemplateFileHeader      = "header.txt"
	TemplateFileResponsible = "resp.txt"
	TemplateFileZone        = "zones.txt"
	TemplateFilePollutant   = "pollutants.txt"
)

// Data source driver names
const (
	DataSourceDriverNamePostgres = "postgres"
	DataSourceDriverNameSQLite   = "sqlite"
	DataSourceDriverNameMemory   = "memory"
)

// SQL data source defaults
const (
	SQLDefaultMaxOpenConns    = 5
	SQLDefaultMaxIdleConns    = 2
	SQLDefaultConnMaxLifetime = 5 * time.Minute
	SQLDefaultQueryTimeout    = 30 * time.Second
)

// Query names for diagnostics
const (
	QueryNameZones       = "zones"
	QueryNameAuthorities = "authorities"
	QueryNamePollutants  = "pollutants"
	QueryNameConnect     = "connect"
)

// Filesystem permissions
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
)

// Watcher defaults
const (
	WatcherDefaultDebounce = 500 * time.Millisecond
	WatcherTickInterval    = 100 * time.Millisecond
)

// Log message constants
const (
	LogMsgTemplateParsed      = "template parsed"
	LogMsgTemplatesLoaded     = "templates loaded"
	LogMsgBlockComposed       = "block composed"
	LogMsgAssembleStart       = "starting document assembly"
	LogMsgAssembleEnd         = "document assembly complete"
	LogMsgZoneRendered        = "zone rendered"
	LogMsgMultipleAuthorities = "multiple responsible authorities; zone context uses the first row only"
	LogMsgRunStart            = "starting report run"
	LogMsgRunEnd              = "report run complete"
	LogMsgRunFailed           = "report run failed"
	LogMsgQueryExecuted       = "query executed"
	LogMsgDocumentWritten     = "document written"
	LogMsgWatcherStarted      = "template watcher started"
	LogMsgWatcherStopped      = "template watcher stopped"
	LogMsgWatcherEvent        = "template change detected"
	LogMsgWatcherError        = "template watcher error"
	LogMsgWatcherRegenerate   = "regenerating after template change"
	LogMsgDataSourceOpened    = "data source opened"
	LogMsgConfigLoaded        = "configuration loaded"
)

// Log field constants
const (
	LogFieldTemplate     = "template"
	LogFieldRows         = "rows"
	LogFieldBytes        = "bytes"
	LogFieldAuthorities  = "authorities"
	LogFieldZones        = "zones"
	LogFieldPollutants   = "pollutants"
	LogFieldZoneCode     = "zone_code"
	LogFieldRunID        = "run_id"
	LogFieldQuery        = "query"
	LogFieldTarget       = "target"
	LogFieldDuration     = "duration"
	LogFieldDriver       = "driver"
	LogFieldPath         = "path"
	LogFieldConcurrency  = "concurrency"
	LogFieldPlaceholders = "placeholders"
)
