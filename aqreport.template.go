package aqreport

import (
	"strings"

	"github.com/itsatony/go-aqreport/internal"
	"go.uber.org/zap"
)

// Template is an immutable, pre-scanned template text.
// Placeholders are tokens of the form {name} or {namespace.field}.
//
// Binding a placeholder never edits the template in place: Bind and Splice
// return a new Template in which the bound placeholders became literal text.
// Literal text is never rescanned, so values containing braces are inert.
type Template struct {
	name     string
	segments []internal.Segment
}

// ParseTemplate scans source into a Template. name identifies the template
// (usually its role) in errors and logs.
// Returns a MalformedTemplateError if a "{" is not closed before the end of
// the text or before another "{", or if a placeholder name is empty.
func ParseTemplate(name, source string) (*Template, error) {
	return parseTemplate(name, source, nil)
}

// MustParseTemplate parses a template and panics on error.
func MustParseTemplate(name, source string) *Template {
	tmpl, err := ParseTemplate(name, source)
	if err != nil {
		panic(err)
	}
	return tmpl
}

func parseTemplate(name, source string, logger *zap.Logger) (*Template, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	segments, err := internal.NewScanner(source, logger).Scan()
	if err != nil {
		return nil, NewMalformedTemplateError(name, err)
	}
	tmpl := &Template{name: name, segments: segments}
	logger.Debug(LogMsgTemplateParsed,
		zap.String(LogFieldTemplate, name),
		zap.Int(LogFieldPlaceholders, tmpl.Placeholders().Len()))
	return tmpl, nil
}

// Name returns the template's name.
func (t *Template) Name() string {
	return t.name
}

// String renders the template. Unresolved placeholders are written back
// verbatim as {name}.
func (t *Template) String() string {
	var sb strings.Builder
	for _, seg := range t.segments {
		if seg.IsPlaceholder() {
			sb.WriteString(internal.StrOpenDelim)
			sb.WriteString(seg.Value)
			sb.WriteString(internal.StrCloseDelim)
			continue
		}
		sb.WriteString(seg.Value)
	}
	return sb.String()
}

// Placeholders returns the set of distinct unresolved placeholder names.
func (t *Template) Placeholders() PlaceholderSet {
	set := make(PlaceholderSet)
	for _, seg := range t.segments {
		if seg.IsPlaceholder() {
			set[seg.Value] = struct{}{}
		}
	}
	return set
}

// IsResolved returns true when no placeholders remain.
func (t *Template) IsResolved() bool {
	for _, seg := range t.segments {
		if seg.IsPlaceholder() {
			return false
		}
	}
	return true
}

// Bind replaces every placeholder whose full name is in names with the row's
// value for the placeholder's effective key (the part after the last dot).
// Placeholders outside names are left untouched.
// Every name must resolve to a row field, whether or not it occurs in the
// template; the first missing one in name order yields an UnknownFieldError.
func (t *Template) Bind(names PlaceholderSet, row Row) (*Template, error) {
	values := make(map[string]string, len(names))
	for _, name := range names.Names() {
		key := internal.EffectiveKey(name)
		text, ok := row.Text(key)
		if !ok {
			return nil, NewUnknownFieldError(t.name, name, key, row.Keys()...)
		}
		values[name] = text
	}
	return t.bindValues(values), nil
}

// Splice binds a composite placeholder to pre-rendered text.
// The text is inserted as a literal value; placeholders inside it are not resolved.
func (t *Template) Splice(name, text string) *Template {
	return t.bindValues(map[string]string{name: text})
}

// bindValues returns a copy of t with the given placeholders turned into text
func (t *Template) bindValues(values map[string]string) *Template {
	segments := make([]internal.Segment, len(t.segments))
	for i, seg := range t.segments {
		if seg.IsPlaceholder() {
			if text, ok := values[seg.Value]; ok {
				seg = internal.NewTextSegment(text, seg.Position)
			}
		}
		segments[i] = seg
	}
	return &Template{name: t.name, segments: segments}
}

// Substitute renders template with every placeholder in names replaced by the
// row's corresponding field value. The template is not modified.
func Substitute(names PlaceholderSet, row Row, tmpl *Template) (string, error) {
	if tmpl == nil {
		return "", NewMalformedTemplateError("", errNilTemplate)
	}
	bound, err := tmpl.Bind(names, row)
	if err != nil {
		return "", err
	}
	return bound.String(), nil
}
