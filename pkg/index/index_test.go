package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cr-transcripts/pkg/domain"
)

const listing = `<!doctype html>
<html><head><link rel="stylesheet" href="cr-style.html"></head>
<body>
<nav><a href="cr1-01.html">Episode 1 (nav)</a><a href="crnav-only.html">Nav only</a></nav>
<main>
  <h1>Transcripts</h1>
  <ul>
    <li><a href="cr1-01.html">C1E1</a></li>
    <li><a href="cr1-02.html">C1E2</a></li>
    <li><a href="cr1-02.html">C1E2 again</a></li>
    <li><a href="CR1-03.html">Upper case</a></li>
    <li><a href="cr1-04.htm">Wrong extension</a></li>
    <li><a href="cr.html">Empty middle</a></li>
    <li><a href="https://example.com/cr1-05.html">Absolute</a></li>
    <li><a name="anchor">No href</a></li>
    <li><a href>Valueless href</a></li>
  </ul>
</main>
<footer><a href="cr9-99.html">Footer</a></footer>
</body></html>`

func TestExtract_Listing(t *testing.T) {
	got := ExtractString(listing, DefaultPattern())

	assert.Equal(t, domain.NewFileSet("cr1-01.html", "cr1-02.html"), got)
}

func TestExtract_OnlyLinksInsideMainCount(t *testing.T) {
	doc := `<a href="crX.html">outside</a><main><a href="crX.html">inside</a></main><a href="crY.html">after</a>`

	got := ExtractString(doc, DefaultPattern())

	assert.Equal(t, []string{"crX.html"}, got.Sorted())
}

func TestExtract_NoMainRegion(t *testing.T) {
	got := ExtractString(`<body><a href="cr1-01.html">x</a></body>`, DefaultPattern())

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtract_RepeatedMainIsLastWriterWins(t *testing.T) {
	doc := `<main><main></main><a href="cr-after-inner-close.html">x</a></main>
<main><a href="cr-second.html">y</a></main>`

	got := ExtractString(doc, DefaultPattern())

	assert.Equal(t, []string{"cr-second.html"}, got.Sorted())
}

func TestExtract_SelfClosingMainOpensNothing(t *testing.T) {
	got := ExtractString(`<main/><a href="cr1.html">x</a>`, DefaultPattern())

	assert.Empty(t, got)
}

func TestExtract_CustomPattern(t *testing.T) {
	doc := `<main><a href="ep-1.txt">1</a><a href="ep-2.html">2</a><a href="cr1.html">3</a></main>`

	got := ExtractString(doc, Pattern{Prefix: "ep-", Extension: ".txt"})

	assert.Equal(t, []string{"ep-1.txt"}, got.Sorted())
}

func TestPattern_Match(t *testing.T) {
	p := DefaultPattern()

	tests := []struct {
		name string
		want bool
	}{
		{"cr1-01.html", true},
		{"cr.html", false},
		{"crx.html.bak", false},
		{"xcr1.html", false},
		{"Cr1.html", false},
		{"cr1.html\n", false},
		{"cr1xhtml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Match(tt.name))
		})
	}
}

func TestPattern_Glob(t *testing.T) {
	assert.Equal(t, "cr*.html", DefaultPattern().Glob())
	assert.Equal(t, `ep\[1]*.txt`, Pattern{Prefix: "ep[1]", Extension: ".txt"}.Glob())
}
