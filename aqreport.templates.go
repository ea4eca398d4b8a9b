package aqreport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
)

// TemplateRole identifies which part of the report a template renders.
type TemplateRole int

const (
	// TemplateRoleHeader is the document skeleton holding the two top-level composites
	TemplateRoleHeader TemplateRole = iota
	// TemplateRoleResponsible renders one responsible authority
	TemplateRoleResponsible
	// TemplateRoleZone renders one zone
	TemplateRoleZone
	// TemplateRolePollutant renders one pollutant of a zone
	TemplateRolePollutant
)

// TemplateRoles returns all roles in load order.
func TemplateRoles() []TemplateRole {
	return []TemplateRole{
		TemplateRoleHeader,
		TemplateRoleResponsible,
		TemplateRoleZone,
		TemplateRolePollutant,
	}
}

// String returns the role name
func (r TemplateRole) String() string {
	switch r {
	case TemplateRoleHeader:
		return TemplateRoleNameHeader
	case TemplateRoleResponsible:
		return TemplateRoleNameResponsible
	case TemplateRoleZone:
		return TemplateRoleNameZone
	case TemplateRolePollutant:
		return TemplateRoleNamePollutant
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// FileName returns the fixed file name a role is stored under.
func (r TemplateRole) FileName() string {
	switch r {
	case TemplateRoleHeader:
		return TemplateFileHeader
	case TemplateRoleResponsible:
		return TemplateFileResponsible
	case TemplateRoleZone:
		return TemplateFileZone
	case TemplateRolePollutant:
		return TemplateFilePollutant
	default:
		return ""
	}
}

// ErrTemplateRoleNotFound is returned by stores that hold no text for a role.
var ErrTemplateRoleNotFound = errors.New("no template stored for role")

// TemplateStore reads raw template text by role.
type TemplateStore interface {
	Read(ctx context.Context, role TemplateRole) (string, error)
}

// FSTemplateStore reads templates from an fs.FS using the fixed per-role file names.
type FSTemplateStore struct {
	fsys fs.FS
}

//go:embed templates/*.txt
var embeddedTemplates embed.FS

// embeddedTemplatesDir is the directory inside embeddedTemplates
const embeddedTemplatesDir = "templates"

// NewFSTemplateStore creates a store over any fs.FS.
func NewFSTemplateStore(fsys fs.FS) *FSTemplateStore {
	return &FSTemplateStore{fsys: fsys}
}

// NewFilesystemTemplateStore creates a store reading from a directory.
func NewFilesystemTemplateStore(dir string) *FSTemplateStore {
	return NewFSTemplateStore(os.DirFS(dir))
}

// NewEmbeddedTemplateStore returns the built-in AQD zone templates.
func NewEmbeddedTemplateStore() *FSTemplateStore {
	sub, err := fs.Sub(embeddedTemplates, embeddedTemplatesDir)
	if err != nil {
		// embeddedTemplatesDir is a compile-time constant matching the embed pattern
		panic(err)
	}
	return NewFSTemplateStore(sub)
}

// Read returns the raw text of the role's template file.
func (s *FSTemplateStore) Read(ctx context.Context, role TemplateRole) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := role.FileName()
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrTemplateRoleNotFound, role)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MemoryTemplateStore holds template text in memory.
// It is primarily intended for tests and embedding callers.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[TemplateRole]string
}

// NewMemoryTemplateStore creates a store pre-filled with the given templates.
func NewMemoryTemplateStore(templates map[TemplateRole]string) *MemoryTemplateStore {
	s := &MemoryTemplateStore{templates: make(map[TemplateRole]string, len(templates))}
	for role, text := range templates {
		s.templates[role] = text
	}
	return s
}

// Set stores the text for a role, replacing any previous text.
func (s *MemoryTemplateStore) Set(role TemplateRole, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[role] = text
}

// Read returns the text stored for role.
func (s *MemoryTemplateStore) Read(ctx context.Context, role TemplateRole) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.templates[role]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateRoleNotFound, role)
	}
	return text, nil
}

// TemplateSet holds the four parsed templates of one report run.
type TemplateSet struct {
	Header      *Template
	Responsible *Template
	Zone        *Template
	Pollutant   *Template
}

// NewTemplateSet parses the four template texts.
func NewTemplateSet(header, responsible, zone, pollutant string) (*TemplateSet, error) {
	return newTemplateSet(map[TemplateRole]string{
		TemplateRoleHeader:      header,
		TemplateRoleResponsible: responsible,
		TemplateRoleZone:        zone,
		TemplateRolePollutant:   pollutant,
	}, nil)
}

// MustNewTemplateSet parses the four template texts and panics on error.
func MustNewTemplateSet(header, responsible, zone, pollutant string) *TemplateSet {
	set, err := NewTemplateSet(header, responsible, zone, pollutant)
	if err != nil {
		panic(err)
	}
	return set
}

// LoadTemplateSet reads every role from store and parses it. Templates are
// all parsed before any rendering starts, so a malformed template aborts the
// run up front.
func LoadTemplateSet(ctx context.Context, store TemplateStore, logger *zap.Logger) (*TemplateSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sources := make(map[TemplateRole]string, len(TemplateRoles()))
	for _, role := range TemplateRoles() {
		text, err := store.Read(ctx, role)
		if err != nil {
			return nil, NewTemplateStoreError(role, err)
		}
		sources[role] = text
	}
	set, err := newTemplateSet(sources, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug(LogMsgTemplatesLoaded, zap.Int(LogFieldRows, len(sources)))
	return set, nil
}

func newTemplateSet(sources map[TemplateRole]string, logger *zap.Logger) (*TemplateSet, error) {
	parsed := make(map[TemplateRole]*Template, len(sources))
	for _, role := range TemplateRoles() {
		tmpl, err := parseTemplate(role.String(), sources[role], logger)
		if err != nil {
			return nil, err
		}
		parsed[role] = tmpl
	}
	return &TemplateSet{
		Header:      parsed[TemplateRoleHeader],
		Responsible: parsed[TemplateRoleResponsible],
		Zone:        parsed[TemplateRoleZone],
		Pollutant:   parsed[TemplateRolePollutant],
	}, nil
}

// Get returns the template for a role, or nil for an unknown role.
func (s *TemplateSet) Get(role TemplateRole) *Template {
	switch role {
	case TemplateRoleHeader:
		return s.Header
	case TemplateRoleResponsible:
		return s.Responsible
	case TemplateRoleZone:
		return s.Zone
	case TemplateRolePollutant:
		return s.Pollutant
	default:
		return nil
	}
}
