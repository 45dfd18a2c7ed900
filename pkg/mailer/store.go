package mailer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateExt is the file extension of sendable templates.
const TemplateExt = ".html"

// TemplateInfo describes a template available in a store.
type TemplateInfo struct {
	Name  string `json:"value"`
	Label string `json:"label"`
}

// TemplateStore resolves template names to HTML bodies. Stores are read-only.
type TemplateStore interface {
	// Load returns the template body. Missing templates yield ErrTemplateNotFound.
	Load(ctx context.Context, name string) (string, error)
	// List returns every template with the .html extension, sorted by name.
	List(ctx context.Context) ([]TemplateInfo, error)
}

// FSStore serves templates from an fs.FS.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore creates a store over fsys. Templates are looked up at the root.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// NewDirStore creates a store over a directory on disk.
func NewDirStore(dir string) *FSStore {
	return NewFSStore(os.DirFS(dir))
}

func (s *FSStore) Load(_ context.Context, name string) (string, error) {
	if err := ValidateTemplateName(name); err != nil {
		return "", err
	}
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", errors.Join(ErrTemplateStore, err)
	}
	return string(b), nil
}

func (s *FSStore) List(_ context.Context) ([]TemplateInfo, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, errors.Join(ErrTemplateStore, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != TemplateExt {
			continue
		}
		names = append(names, e.Name())
	}
	return Infos(names), nil
}

// Infos builds sorted TemplateInfo values for the given file names.
func Infos(names []string) []TemplateInfo {
	sort.Strings(names)
	out := make([]TemplateInfo, 0, len(names))
	for _, n := range names {
		out = append(out, TemplateInfo{Name: n, Label: TemplateLabel(n)})
	}
	return out
}

// TemplateLabel turns "been_a_while.html" into "Been A While".
func TemplateLabel(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	return titleWords(strings.ReplaceAll(base, "_", " "))
}

// ValidateTemplateName rejects empty names and anything that is not a single
// path element.
func ValidateTemplateName(name string) error {
	if name == "" || name != path.Base(name) || name == "." || name == ".." || strings.ContainsRune(name, '\\') {
		return fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
	}
	return nil
}

// titleWords upper-cases the first letter of every word and leaves the rest
// untouched, so "re engagement" becomes "Re Engagement".
func titleWords(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}
