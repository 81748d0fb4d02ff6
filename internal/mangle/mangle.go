// Package mangle implements the header-name mangling rule row stores use to
// turn arbitrary source header text into safe column identifiers.
//
// Grounded on ambry_sources' mpf.py header_mangler:
//
//	re.sub('_+', '_', re.sub('[^\w_]', '_', name).lower()).rstrip('_')
package mangle

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonWord   = regexp.MustCompile(`[^0-9A-Za-z_]`)
	runsOfUnd = regexp.MustCompile(`_+`)
	lower     = cases.Lower(language.Und)
)

// Name collapses name to [a-z0-9_]+ with no leading/trailing underscore:
// non-word characters become '_', runs of '_' collapse to one, the result
// is lowercased, and leading/trailing '_' is trimmed. It is idempotent:
// Name(Name(x)) == Name(x).
func Name(name string) string {
	s := nonWord.ReplaceAllString(name, "_")
	s = runsOfUnd.ReplaceAllString(s, "_")
	s = lower.String(s)
	return strings.Trim(s, "_")
}
