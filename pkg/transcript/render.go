package transcript

import (
	"bufio"
	"io"
	"strings"

	"cr-transcripts/pkg/domain"
)

// Render writes lines as simplified Markdown.
//
// A record with a speaker emits "**<speaker>**: " when includeNames is set, and a
// record with text emits the text plus a newline. A speaker-only record therefore
// leaves the cursor on the same line for whatever the next record writes.
func Render(w io.Writer, lines []domain.TranscriptLine, includeNames bool) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if includeNames && line.HasSpeaker() {
			bw.WriteString("**")
			bw.WriteString(line.SpeakerOrEmpty())
			bw.WriteString("**: ")
		}
		if line.HasText() {
			bw.WriteString(line.TextOrEmpty())
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// RenderString returns the rendering of lines as a string.
func RenderString(lines []domain.TranscriptLine, includeNames bool) string {
	var sb strings.Builder
	// strings.Builder never fails a write.
	_ = Render(&sb, lines, includeNames)
	return sb.String()
}
