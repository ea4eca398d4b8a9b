package aqreport

import (
	"sort"
	"strings"

	"github.com/itsatony/go-aqreport/internal"
	"github.com/samber/lo"
)

// PlaceholderSet is a set of distinct placeholder names.
// Iteration order is irrelevant; use Names for a stable ordering.
type PlaceholderSet map[string]struct{}

// NewPlaceholderSet creates a set from the given names. Duplicates collapse.
func NewPlaceholderSet(names ...string) PlaceholderSet {
	set := make(PlaceholderSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set.
func (s PlaceholderSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s PlaceholderSet) Len() int {
	return len(s)
}

// Names returns the names in lexical order.
func (s PlaceholderSet) Names() []string {
	names := lo.Keys(map[string]struct{}(s))
	sort.Strings(names)
	return names
}

// WithPrefix returns the subset of names whose literal text starts with prefix.
// An empty prefix returns a copy of the whole set.
func (s PlaceholderSet) WithPrefix(prefix string) PlaceholderSet {
	return PlaceholderSet(lo.PickBy(s, func(name string, _ struct{}) bool {
		return strings.HasPrefix(name, prefix)
	}))
}

// Without returns the set minus the given names.
func (s PlaceholderSet) Without(names ...string) PlaceholderSet {
	return PlaceholderSet(lo.OmitByKeys(s, names))
}

// Extract returns the distinct placeholder names of tmpl that start with prefix.
// "resp" matches "resp.person_name" but not "zone.code".
func Extract(tmpl *Template, prefix string) PlaceholderSet {
	if tmpl == nil {
		return make(PlaceholderSet)
	}
	return tmpl.Placeholders().WithPrefix(prefix)
}

// ExtractPlaceholders scans raw template text and extracts its placeholder
// names filtered by prefix. Returns a MalformedTemplateError for bad delimiters.
func ExtractPlaceholders(source, prefix string) (PlaceholderSet, error) {
	tmpl, err := ParseTemplate("", source)
	if err != nil {
		return nil, err
	}
	return Extract(tmpl, prefix), nil
}

// EffectiveKey returns the row field a placeholder name resolves to:
// the substring after the last dot, or the whole name without a namespace.
func EffectiveKey(name string) string {
	return internal.EffectiveKey(name)
}

// namespacePrefix returns the literal prefix selecting a namespace's placeholders
func namespacePrefix(namespace string) string {
	return namespace + NamespaceSeparator
}
