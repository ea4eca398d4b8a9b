package internal

// SegmentType identifies the kind of a scanned template segment
type SegmentType int

// Segment type constants
const (
	SegmentTypeText SegmentType = iota
	SegmentTypePlaceholder
)

// Segment type string names for debugging
const (
	SegmentTypeNameText        = "TEXT"
	SegmentTypeNamePlaceholder = "PLACEHOLDER"
)

// String returns the string representation of the segment type
func (t SegmentType) String() string {
	switch t {
	case SegmentTypePlaceholder:
		return SegmentTypeNamePlaceholder
	default:
		return SegmentTypeNameText
	}
}

// Character constants
const (
	CharOpenBrace  = '{'
	CharCloseBrace = '}'
	CharNewline    = '\n'
	CharDot        = '.'
)

// String forms of the placeholder delimiters
const (
	StrOpenDelim  = "{"
	StrCloseDelim = "}"
)

// Error message constants for the scanner
const (
	ErrMsgUnclosedPlaceholder = "placeholder is not closed"
	ErrMsgNestedPlaceholder   = "placeholder opened inside another placeholder"
	ErrMsgEmptyPlaceholder    = "placeholder name cannot be empty"
)

// Log message constants
const (
	LogMsgScannerCreated = "scanner created"
	LogMsgScanStart      = "starting template scan"
	LogMsgScanEnd        = "template scan complete"
)

// Log field constants
const (
	LogFieldSource       = "source_length"
	LogFieldSegments     = "segment_count"
	LogFieldPlaceholders = "placeholder_count"
)
