package index

import (
	"regexp"
	"strings"
)

const (
	DefaultPrefix    = "cr"
	DefaultExtension = ".html"
)

// Pattern describes transcript filenames: a literal prefix, at least one more
// character, and a literal extension. Matching is case-sensitive.
type Pattern struct {
	Prefix    string
	Extension string
}

// DefaultPattern matches names like cr2-01.html.
func DefaultPattern() Pattern {
	return Pattern{
		Prefix:    DefaultPrefix,
		Extension: DefaultExtension,
	}
}

// Regexp returns the anchored expression equivalent to the pattern.
func (p Pattern) Regexp() *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(p.Prefix) + ".+" + regexp.QuoteMeta(p.Extension) + "$")
}

// Match reports whether name is a transcript filename.
func (p Pattern) Match(name string) bool {
	return p.Regexp().MatchString(name)
}

// Glob returns the shell pattern used to find transcripts in a local directory.
// Unlike Match it also accepts an empty middle (e.g. "cr.html").
func (p Pattern) Glob() string {
	return globEscape(p.Prefix) + "*" + globEscape(p.Extension)
}

func globEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`).Replace(s)
}
