package mailer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SubjectPolicy computes the subject line for a template sent to a contact.
// The boolean is false when the policy has no subject for the template.
type SubjectPolicy interface {
	Subject(template, firstName string) (string, bool)
}

// DerivedSubjects builds subjects from the template name:
// "motorhome_followup.html" for Ada becomes
// "Motorhome Followup - Great to connect with you Ada".
type DerivedSubjects struct{}

func (DerivedSubjects) Subject(template, firstName string) (string, bool) {
	if template == "" {
		return "", false
	}
	return TemplateLabel(template) + " - Great to connect with you " + firstName, true
}

// SubjectMap is a static template to subject mapping, authored by hand.
type SubjectMap map[string]string

func (m SubjectMap) Subject(template, _ string) (string, bool) {
	s, ok := m[template]
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// DefaultSubjects is the built-in subject map for the stock templates.
func DefaultSubjects() SubjectMap {
	return SubjectMap{
		"motorhome_followup.html":              "RV Hauling - Great Connecting with You",
		"construction_equipment_followup.html": "Construction Equipment Haul - Great Connecting with You",
		"agriculture_equipment_followup.html":  "Agricultural Hauling - Great Connecting with You",
		"heavy_haulers.html":                   "Construction Equipment Haul - Great Connecting with You",
		"been_a_while.html":                    "Been a While - Let’s Reconnect",
		"general_followup.html":                "Quick Follow-Up - Let’s Connect",
		"re_engagement.html":                   "Hey, just resurfacing in case you lost my contact info",
		"final_check.html":                     "Happy to reconnect later if needed",
	}
}

// ParseSubjects decodes a YAML document of template: subject pairs.
func ParseSubjects(data []byte) (SubjectMap, error) {
	var m SubjectMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubjectsFile, err)
	}
	for name := range m {
		if path.Ext(name) != TemplateExt {
			return nil, fmt.Errorf("%w: key %q is not an %s template", ErrSubjectsFile, name, TemplateExt)
		}
	}
	if m == nil {
		m = SubjectMap{}
	}
	return m, nil
}

// LoadSubjects reads a subjects file from fsys. A missing file yields
// DefaultSubjects.
func LoadSubjects(fsys fs.FS, name string) (SubjectMap, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSubjects(), nil
		}
		return nil, errors.Join(ErrSubjectsFile, err)
	}
	return ParseSubjects(data)
}

// LoadSubjectsFile is LoadSubjects for a path on disk. An empty path yields
// DefaultSubjects.
func LoadSubjectsFile(p string) (SubjectMap, error) {
	if p == "" {
		return DefaultSubjects(), nil
	}
	return LoadSubjects(os.DirFS(filepath.Dir(p)), filepath.Base(p))
}
