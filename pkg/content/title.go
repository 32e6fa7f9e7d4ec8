package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var errTitleNotFound = errors.New("title not found in HTML")

// ExtractTitle extracts the page title from HTML content with fallback mechanisms.
// Readability is tried first; goquery covers pages readability gives up on.
func ExtractTitle(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", errTitleNotFound
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	if title, exists := doc.Find("meta[name='title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", errTitleNotFound
}
