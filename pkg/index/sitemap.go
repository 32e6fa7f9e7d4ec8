package index

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"cr-transcripts/pkg/domain"
)

// ErrSitemapIndex is returned for a <sitemapindex> document, which lists other
// sitemaps rather than pages.
var ErrSitemapIndex = errors.New("sitemap index documents are not supported")

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// ExtractSitemap reads an XML sitemap and returns the base names of <loc>
// entries that match p.
func ExtractSitemap(r io.Reader, p Pattern) (domain.FileSet, error) {
	decoder := xml.NewDecoder(r)

	root, err := rootElement(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}
	switch root.Name.Local {
	case "urlset":
	case "sitemapindex":
		return nil, ErrSitemapIndex
	default:
		return nil, fmt.Errorf("failed to decode sitemap XML: unexpected root element <%s>", root.Name.Local)
	}

	var set urlSet
	if err := decoder.DecodeElement(&set, &root); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	re := p.Regexp()
	files := make(domain.FileSet)
	for _, entry := range set.URLs {
		if entry.Location == "" {
			continue
		}
		if name := linkBaseName(entry.Location); re.MatchString(name) {
			files.Add(name)
		}
	}
	return files, nil
}

// rootElement advances decoder to the first start element.
func rootElement(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}
