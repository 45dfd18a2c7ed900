package mailer

import (
	"regexp"
	"slices"
	"strings"
)

// Standard placeholder names every outreach template may reference.
const (
	FieldFirstName    = "firstName"
	FieldSenderName   = "senderName"
	FieldSenderEmail  = "senderEmail"
	FieldPersonalNote = "personalNote"
)

// StandardFields lists the placeholders that render as "" when unbound.
var StandardFields = []string{FieldFirstName, FieldSenderName, FieldSenderEmail, FieldPersonalNote}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)

// Fields maps placeholder names to their values.
type Fields map[string]string

// Render substitutes {{ name }} placeholders in body.
//
// A name bound in fields is replaced with its value. A standard name missing
// from fields is replaced with "". Any other token is left verbatim.
// Substituted values are not scanned again.
func Render(body string, fields Fields) string {
	if !strings.Contains(body, "{{") {
		return body
	}
	return placeholderRe.ReplaceAllStringFunc(body, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		if v, ok := fields[name]; ok {
			return v
		}
		if slices.Contains(StandardFields, name) {
			return ""
		}
		return token
	})
}

// Placeholders returns the distinct placeholder names referenced by body,
// in order of first appearance.
func Placeholders(body string) []string {
	matches := placeholderRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
