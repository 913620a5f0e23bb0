package mail

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// StripHTML reduces an HTML body to plain text: tags removed, entities
// decoded, whitespace collapsed.
func StripHTML(body string) string {
	text := stripPolicy.Sanitize(html.UnescapeString(body))
	return CollapseWhitespace(html.UnescapeString(text))
}

// CollapseWhitespace squeezes runs of whitespace into single spaces.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
