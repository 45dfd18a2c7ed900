package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy   *bluemonday.Policy
	fragmentPolicy *bluemonday.Policy
	initOnce       sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Inline formatting only: the fragment is dropped into an existing
		// email body, so block layout and links stay with the template.
		fragmentPolicy = bluemonday.NewPolicy()
		fragmentPolicy.AllowElements("p", "br", "strong", "b", "em", "i")
	})
}

// Text strips all markup and returns plain text with entities decoded and
// whitespace collapsed. Use for header values such as subjects.
func Text(s string) string {
	initPolicies()
	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy.Sanitize(s))), " ")
}

// Fragment keeps basic inline formatting and escapes everything else, so the
// result is safe to splice into an HTML email body.
func Fragment(s string) string {
	initPolicies()
	return strings.TrimSpace(fragmentPolicy.Sanitize(s))
}
