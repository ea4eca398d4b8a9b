package aqreport

import (
	"errors"
	"strconv"
	"strings"

	"github.com/itsatony/go-aqreport/internal"
	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Template errors
	ErrMsgMalformedTemplate = "malformed template"
	ErrMsgUnknownField      = "placeholder references a field missing from the row"
	ErrMsgNilTemplate       = "template is nil"

	// Assembly errors
	ErrMsgMissingAuthority     = "no responsible authority rows to build zone context"
	ErrMsgMultipleAuthorities  = "multiple responsible authority rows are not supported"
	ErrMsgNilPollutantLookup   = "pollutant lookup is nil"
	ErrMsgInvalidConcurrency   = "concurrency must be at least 1"
	ErrMsgBlockCompositionFail = "block composition failed"

	// Boundary errors
	ErrMsgDataSourceFailed    = "data source query failed"
	ErrMsgTemplateStoreFailed = "template store read failed"
	ErrMsgOutputSinkFailed    = "output sink write failed"
)

var errNilTemplate = errors.New(ErrMsgNilTemplate)

// Error code constants for categorization
const (
	ErrCodeTemplate   = "AQREPORT_TEMPLATE"
	ErrCodeSubstitute = "AQREPORT_SUBSTITUTE"
	ErrCodeAssemble   = "AQREPORT_ASSEMBLE"
	ErrCodeDataSource = "AQREPORT_DATASOURCE"
	ErrCodeStore      = "AQREPORT_STORE"
	ErrCodeOutputSink = "AQREPORT_OUTPUT"
)

// Error kind values stored under MetaKeyErrorKind
const (
	ErrKindMalformedTemplate   = "malformed_template"
	ErrKindUnknownField        = "unknown_field"
	ErrKindMissingAuthority    = "missing_authority"
	ErrKindMultipleAuthorities = "multiple_authorities"
	ErrKindDataSource          = "data_source"
	ErrKindTemplateStore       = "template_store"
	ErrKindOutputSink          = "output_sink"
)

// Metadata key constants
const (
	MetaKeyErrorKind   = "kind"
	MetaKeyTemplate    = "template"
	MetaKeyPlaceholder = "placeholder"
	MetaKeyField       = "field"
	MetaKeyRowIndex    = "row_index"
	MetaKeyLine        = "line"
	MetaKeyColumn      = "column"
	MetaKeyOffset      = "offset"
	MetaKeyReason      = "reason"
	MetaKeyQuery       = "query"
	MetaKeyZoneCode    = "zone_code"
	MetaKeyTarget      = "target"
	MetaKeyRole        = "role"
	MetaKeyCount       = "count"
	MetaKeySuggestions = "suggestions"
)

// NewMalformedTemplateError creates an error for unbalanced or nested placeholder
// delimiters. The scanner error provides position and reason.
func NewMalformedTemplateError(templateName string, cause error) error {
	err := cuserr.WrapStdError(cause, ErrCodeTemplate, ErrMsgMalformedTemplate).
		WithMetadata(MetaKeyErrorKind, ErrKindMalformedTemplate).
		WithMetadata(MetaKeyTemplate, templateName)

	var scanErr *internal.ScanError
	if errors.As(cause, &scanErr) {
		err = err.
			WithMetadata(MetaKeyReason, scanErr.Message).
			WithMetadata(MetaKeyLine, strconv.Itoa(scanErr.Position.Line)).
			WithMetadata(MetaKeyColumn, strconv.Itoa(scanErr.Position.Column)).
			WithMetadata(MetaKeyOffset, strconv.Itoa(scanErr.Position.Offset))
	}
	return err
}

// NewUnknownFieldError creates an error for a placeholder whose effective key
// is not a field of the row being substituted. Names from columns that are
// close to field are attached under MetaKeySuggestions.
func NewUnknownFieldError(templateName, placeholder, field string, columns ...string) error {
	err := cuserr.NewValidationError(ErrCodeSubstitute, ErrMsgUnknownField).
		WithMetadata(MetaKeyErrorKind, ErrKindUnknownField).
		WithMetadata(MetaKeyTemplate, templateName).
		WithMetadata(MetaKeyPlaceholder, placeholder).
		WithMetadata(MetaKeyField, field)
	if similar := internal.SimilarFields(field, columns, internal.MaxFieldSuggestions); len(similar) > 0 {
		err = err.WithMetadata(MetaKeySuggestions, strings.Join(similar, ","))
	}
	return err
}

// NewMissingAuthorityError creates an error for an assembly without authority rows
func NewMissingAuthorityError() error {
	return cuserr.NewValidationError(ErrCodeAssemble, ErrMsgMissingAuthority).
		WithMetadata(MetaKeyErrorKind, ErrKindMissingAuthority)
}

// NewMultipleAuthoritiesError creates an error raised in strict single-authority mode
func NewMultipleAuthoritiesError(count int) error {
	return cuserr.NewValidationError(ErrCodeAssemble, ErrMsgMultipleAuthorities).
		WithMetadata(MetaKeyErrorKind, ErrKindMultipleAuthorities).
		WithMetadata(MetaKeyCount, strconv.Itoa(count))
}

// NewNilLookupError creates an error for an assembly without a pollutant lookup
func NewNilLookupError() error {
	return cuserr.NewValidationError(ErrCodeAssemble, ErrMsgNilPollutantLookup)
}

// NewDataSourceError wraps a failure of the relational data source
func NewDataSourceError(query string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeDataSource, ErrMsgDataSourceFailed).
		WithMetadata(MetaKeyErrorKind, ErrKindDataSource).
		WithMetadata(MetaKeyQuery, query)
}

// NewPollutantQueryError wraps a failure while fetching the pollutants of one zone
func NewPollutantQueryError(zoneCode string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeDataSource, ErrMsgDataSourceFailed).
		WithMetadata(MetaKeyErrorKind, ErrKindDataSource).
		WithMetadata(MetaKeyQuery, QueryNamePollutants).
		WithMetadata(MetaKeyZoneCode, zoneCode)
}

// NewTemplateStoreError wraps a failure reading a template's raw text
func NewTemplateStoreError(role TemplateRole, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeStore, ErrMsgTemplateStoreFailed).
		WithMetadata(MetaKeyErrorKind, ErrKindTemplateStore).
		WithMetadata(MetaKeyRole, role.String())
}

// NewOutputSinkError wraps a failure persisting the final document
func NewOutputSinkError(target string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeOutputSink, ErrMsgOutputSinkFailed).
		WithMetadata(MetaKeyErrorKind, ErrKindOutputSink).
		WithMetadata(MetaKeyTarget, target)
}

// withRowIndex annotates a row-level failure with the index of the failing row.
// The innermost index wins: an error already carrying one keeps it.
func withRowIndex(err error, index int) error {
	return withMetadataOnce(err, MetaKeyRowIndex, strconv.Itoa(index))
}

// withZoneCode annotates a failure inside a zone with the zone's code.
func withZoneCode(err error, code string) error {
	return withMetadataOnce(err, MetaKeyZoneCode, code)
}

// withMetadataOnce sets key on err unless it is already present anywhere in
// the chain. Only a bare CustomError is annotated in place; anything else is
// wrapped, so outer messages stay part of the error text.
func withMetadataOnce(err error, key, value string) error {
	if _, ok := ErrorMetadata(err, key); ok {
		return err
	}
	if customErr, ok := err.(*cuserr.CustomError); ok {
		return customErr.WithMetadata(key, value)
	}
	return cuserr.WrapStdError(err, ErrCodeAssemble, ErrMsgBlockCompositionFail).
		WithMetadata(key, value)
}

// ErrorKind returns the kind recorded on an aqreport error, or "" if none.
func ErrorKind(err error) string {
	kind, _ := ErrorMetadata(err, MetaKeyErrorKind)
	return kind
}

// ErrorMetadata returns a metadata value recorded on an aqreport error.
// Every CustomError in the chain is searched, outermost first.
func ErrorMetadata(err error, key string) (string, bool) {
	for err != nil {
		var customErr *cuserr.CustomError
		if !errors.As(err, &customErr) {
			return "", false
		}
		if value, ok := customErr.GetMetadata(key); ok {
			return value, true
		}
		err = customErr.Unwrap()
	}
	return "", false
}

// IsMalformedTemplateError reports whether err is a MalformedTemplateError
func IsMalformedTemplateError(err error) bool {
	return ErrorKind(err) == ErrKindMalformedTemplate
}

// IsUnknownFieldError reports whether err is an UnknownFieldError
func IsUnknownFieldError(err error) bool {
	return ErrorKind(err) == ErrKindUnknownField
}

// IsDataSourceError reports whether err is a DataSourceError
func IsDataSourceError(err error) bool {
	return ErrorKind(err) == ErrKindDataSource
}

// IsTemplateStoreError reports whether err is a TemplateStoreError
func IsTemplateStoreError(err error) bool {
	return ErrorKind(err) == ErrKindTemplateStore
}

// IsOutputSinkError reports whether err is an OutputSinkError
func IsOutputSinkError(err error) bool {
	return ErrorKind(err) == ErrKindOutputSink
}

// ConfigError represents a configuration loading or validation error.
type ConfigError struct {
	Message string
	Field   string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
