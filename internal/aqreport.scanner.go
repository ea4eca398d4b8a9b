package internal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Segment is one piece of a scanned template: either literal text or a
// placeholder name (without its braces).
type Segment struct {
	Type     SegmentType
	Value    string
	Position Position
}

// String returns a human-readable representation of the segment
func (s Segment) String() string {
	return fmt.Sprintf("Segment{%s: %q @ %s}", s.Type, s.Value, s.Position)
}

// IsPlaceholder returns true if this segment is an unresolved placeholder
func (s Segment) IsPlaceholder() bool {
	return s.Type == SegmentTypePlaceholder
}

// NewTextSegment creates a literal text segment
func NewTextSegment(value string, pos Position) Segment {
	return Segment{Type: SegmentTypeText, Value: value, Position: pos}
}

// NewPlaceholderSegment creates a placeholder segment
func NewPlaceholderSegment(name string, pos Position) Segment {
	return Segment{Type: SegmentTypePlaceholder, Value: name, Position: pos}
}

// Scanner splits template source into text and placeholder segments.
// A placeholder is "{", one or more characters other than braces, "}".
// A lone "}" outside a placeholder is literal text.
type Scanner struct {
	source string
	pos    int
	line   int
	column int
	logger *zap.Logger
}

// NewScanner creates a scanner for the given source
func NewScanner(source string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgScannerCreated, zap.Int(LogFieldSource, len(source)))
	return &Scanner{
		source: source,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Scan processes the whole source and returns its segments in order.
// Adjacent literal text is merged into a single segment.
func (s *Scanner) Scan() ([]Segment, error) {
	s.logger.Debug(LogMsgScanStart)
	var segments []Segment
	placeholders := 0

	for !s.isAtEnd() {
		if s.peek() == CharOpenBrace {
			seg, err := s.scanPlaceholder()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			placeholders++
			continue
		}
		segments = append(segments, s.scanText())
	}

	s.logger.Debug(LogMsgScanEnd,
		zap.Int(LogFieldSegments, len(segments)),
		zap.Int(LogFieldPlaceholders, placeholders))
	return segments, nil
}

// scanText scans literal text until the next opening brace
func (s *Scanner) scanText() Segment {
	startPos := s.currentPosition()
	var sb strings.Builder
	for !s.isAtEnd() && s.peek() != CharOpenBrace {
		sb.WriteByte(s.advance())
	}
	return NewTextSegment(sb.String(), startPos)
}

// scanPlaceholder scans "{name}" starting at the opening brace
func (s *Scanner) scanPlaceholder() (Segment, error) {
	startPos := s.currentPosition()
	s.advance() // consume {

	var sb strings.Builder
	for !s.isAtEnd() {
		ch := s.peek()
		switch ch {
		case CharCloseBrace:
			s.advance()
			if sb.Len() == 0 {
				return Segment{}, &ScanError{Message: ErrMsgEmptyPlaceholder, Position: startPos}
			}
			return NewPlaceholderSegment(sb.String(), startPos), nil
		case CharOpenBrace:
			return Segment{}, &ScanError{Message: ErrMsgNestedPlaceholder, Position: s.currentPosition()}
		}
		sb.WriteByte(s.advance())
	}

	return Segment{}, &ScanError{Message: ErrMsgUnclosedPlaceholder, Position: startPos}
}

// currentPosition returns the current position
func (s *Scanner) currentPosition() Position {
	return Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (s *Scanner) isAtEnd() bool {
	return s.pos >= len(s.source)
}

// peek returns the current character without advancing
func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.pos]
}

// advance consumes and returns the current character
func (s *Scanner) advance() byte {
	if s.isAtEnd() {
		return 0
	}
	ch := s.source[s.pos]
	s.pos++
	if ch == CharNewline {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return ch
}

// ScanError represents a scanner error with position
type ScanError struct {
	Message  string
	Position Position
}

func (e *ScanError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// EffectiveKey returns the part of a placeholder name after its last dot.
// Names without a namespace are returned unchanged.
func EffectiveKey(name string) string {
	if idx := strings.LastIndexByte(name, CharDot); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
