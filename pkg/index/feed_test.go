package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFeed_RSS(t *testing.T) {
	rssXML := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Transcripts</title>
		<link>https://example.com/crsearch/html/</link>
		<item>
			<title>C2E1</title>
			<link>https://example.com/crsearch/html/cr2-01.html</link>
		</item>
		<item>
			<title>C2E2</title>
			<link>https://example.com/crsearch/html/cr2-02.html?src=rss#top</link>
		</item>
		<item>
			<title>Index</title>
			<link>https://example.com/crsearch/html/index.html</link>
		</item>
	</channel>
</rss>`

	got, err := ExtractFeed(strings.NewReader(rssXML), DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr2-01.html", "cr2-02.html"}, got.Sorted())
}

func TestExtractFeed_Atom(t *testing.T) {
	atomXML := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Transcripts</title>
	<entry>
		<title>C3E1</title>
		<link href="https://example.com/crsearch/html/cr3-01.html"/>
	</entry>
</feed>`

	got, err := ExtractFeed(strings.NewReader(atomXML), DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr3-01.html"}, got.Sorted())
}

func TestExtractFeed_Invalid(t *testing.T) {
	_, err := ExtractFeed(strings.NewReader("not a feed"), DefaultPattern())
	assert.Error(t, err)
}
