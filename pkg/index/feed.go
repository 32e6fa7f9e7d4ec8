package index

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"

	"cr-transcripts/pkg/domain"
)

// ExtractFeed reads an RSS or Atom listing and returns the base names of item
// links that match p. Unlike the HTML listing, a feed that cannot be parsed is
// an error.
func ExtractFeed(r io.Reader, p Pattern) (domain.FileSet, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	re := p.Regexp()
	files := make(domain.FileSet)
	for _, item := range feed.Items {
		for _, link := range itemLinks(item) {
			if name := linkBaseName(link); re.MatchString(name) {
				files.Add(name)
			}
		}
	}
	return files, nil
}

func itemLinks(item *gofeed.Item) []string {
	links := make([]string, 0, len(item.Links)+1)
	if item.Link != "" {
		links = append(links, item.Link)
	}
	for _, l := range item.Links {
		if l != "" && l != item.Link {
			links = append(links, l)
		}
	}
	return links
}

// linkBaseName returns the last path element of a link, ignoring query and fragment.
func linkBaseName(link string) string {
	link = strings.TrimSpace(link)
	parsed, err := url.Parse(link)
	if err != nil {
		return path.Base(link)
	}
	return path.Base(parsed.Path)
}
