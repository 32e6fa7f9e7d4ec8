// Package index discovers transcript filenames in the series' directory listing.
package index

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"cr-transcripts/pkg/domain"
)

const (
	mainRegionTag = "main"
	linkTag       = "a"
	linkAttr      = "href"
)

// Extract scans an index document and returns the distinct link targets inside
// the <main> region that match p.
//
// The region flag is a plain boolean: nested or repeated <main> elements are not
// depth-tracked, so the flag reflects whichever open or close tag came last.
// Links without an href never match.
func Extract(r io.Reader, p Pattern) domain.FileSet {
	re := p.Regexp()
	files := make(domain.FileSet)
	insideMain := false

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return files
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case tok.Data == mainRegionTag:
				// <main/> opens and closes in one token.
				insideMain = tt == html.StartTagToken
			case tok.Data == linkTag && insideMain:
				if href, ok := attr(tok, linkAttr); ok && re.MatchString(href) {
					files.Add(href)
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == mainRegionTag {
				insideMain = false
			}
		}
	}
}

// ExtractString is Extract over an in-memory document.
func ExtractString(doc string, p Pattern) domain.FileSet {
	return Extract(strings.NewReader(doc), p)
}

func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
