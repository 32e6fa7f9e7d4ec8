package domain

import "time"

// TranscriptLine represents one emitted line of dialogue.
//
// Both fields are optional: a nil Speaker or Text means the field was never set,
// while a pointer to "" means the markup carried the field but it was blank.
// A record with a Speaker and no Text is a speaker-name-only marker.
type TranscriptLine struct {
	Speaker *string `bson:"speaker,omitempty" json:"speaker,omitempty"`
	Text    *string `bson:"text,omitempty" json:"text,omitempty"`
}

// NewSpeakerLine creates a record holding only a speaker name.
func NewSpeakerLine(speaker string) TranscriptLine {
	return TranscriptLine{Speaker: &speaker}
}

// NewLine creates a record with both a speaker and an utterance.
func NewLine(speaker, text string) TranscriptLine {
	return TranscriptLine{Speaker: &speaker, Text: &text}
}

// HasSpeaker reports whether the speaker field is set.
func (l TranscriptLine) HasSpeaker() bool {
	return l.Speaker != nil
}

// HasText reports whether the text field is set.
func (l TranscriptLine) HasText() bool {
	return l.Text != nil
}

// SpeakerOrEmpty returns the speaker name, or "" when unset.
func (l TranscriptLine) SpeakerOrEmpty() string {
	if l.Speaker == nil {
		return ""
	}
	return *l.Speaker
}

// TextOrEmpty returns the utterance, or "" when unset.
func (l TranscriptLine) TextOrEmpty() string {
	if l.Text == nil {
		return ""
	}
	return *l.Text
}

// TranscriptDocument is the catalog record stored for each processed transcript file.
type TranscriptDocument struct {
	// Filename is the base name of the downloaded transcript (e.g. cr2-01.html). Unique key.
	Filename string `bson:"filename" json:"filename"`

	// SourceURL is where the transcript was (or would be) downloaded from.
	SourceURL string `bson:"source_url,omitempty" json:"source_url,omitempty"`

	// Title is the page title, when one could be extracted.
	Title string `bson:"title" json:"title"`

	Lines     []TranscriptLine `bson:"lines" json:"lines"`
	LineCount int              `bson:"line_count" json:"line_count"`

	// Rendered is the exact text written to the output file.
	Rendered string `bson:"rendered" json:"rendered"`

	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
}
