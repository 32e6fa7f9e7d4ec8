// Package transcript reconstructs speaker/utterance records from transcript pages
// and renders them as simplified Markdown.
package transcript

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"cr-transcripts/pkg/domain"
)

// Markup that identifies the parts of a transcript page we care about.
const (
	linesContainerTag = "div"
	linesContainerKey = "id"
	linesContainerID  = "lines"
	speakerTag        = "strong"
	dialogueTag       = "dd"
)

// field is the record field the next text-data event is routed to.
type field int

const (
	fieldNone field = iota
	fieldName
	fieldText
)

// parser holds the state of a single extraction pass. It is owned by one Extract
// call and never shared.
type parser struct {
	insideLines bool
	pending     field

	// current indexes the record accepting text; -1 until the first speaker.
	current int
	lines   []domain.TranscriptLine
}

func newParser() *parser {
	return &parser{
		current: -1,
		lines:   make([]domain.TranscriptLine, 0),
	}
}

// Extract scans a transcript document and returns its lines in narrative order.
//
// Dialogue split across several markup nodes for the same speaker is merged into
// one record, space-joined. Extraction is best-effort: odd or truncated markup
// yields whatever was recovered before the tokenizer stopped, never an error.
func Extract(r io.Reader) []domain.TranscriptLine {
	p := newParser()
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read failure; either way the pass is over.
			return p.lines
		case html.StartTagToken, html.SelfClosingTagToken:
			p.handleStartTag(z.Token())
		case html.TextToken:
			p.handleData(string(z.Text()))
		}
	}
}

// ExtractString is Extract over an in-memory document.
func ExtractString(doc string) []domain.TranscriptLine {
	return Extract(strings.NewReader(doc))
}

func (p *parser) handleStartTag(tok html.Token) {
	switch {
	case tok.Data == linesContainerTag && hasAttr(tok, linesContainerKey, linesContainerID):
		p.insideLines = true
	case tok.Data == speakerTag && p.insideLines:
		p.pending = fieldName
	case tok.Data == dialogueTag && p.insideLines:
		p.pending = fieldText
	}
}

func (p *parser) handleData(data string) {
	switch p.pending {
	case fieldName:
		p.lines = append(p.lines, domain.NewSpeakerLine(strings.TrimSpace(data)))
		p.current = len(p.lines) - 1
	case fieldText:
		p.appendText(strings.TrimSpace(data))
	}
	p.pending = fieldNone
}

// appendText attaches text to the current record. Without a speaker there is
// nothing to attach to and the text is dropped.
func (p *parser) appendText(text string) {
	if p.current < 0 {
		return
	}

	line := &p.lines[p.current]
	if line.Text == nil {
		line.Text = &text
		return
	}

	merged := *line.Text + " " + text
	line.Text = &merged
}

func hasAttr(tok html.Token, key, val string) bool {
	for _, a := range tok.Attr {
		if a.Key == key && a.Val == val {
			return true
		}
	}
	return false
}
