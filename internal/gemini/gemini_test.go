package gemini

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/trenddraft/internal/news"
)

func TestSanitizePitch_RemovesLabelAndMarkdown(t *testing.T) {
	in := "**Post:** Robots in the kitchen are no longer *science fiction*.\n\nThis changes food service."
	assert.Equal(t, "Robots in the kitchen are no longer science fiction. This changes food service.", sanitizePitch(in))
}

func TestSanitizePitch_RemovesNoteLine(t *testing.T) {
	in := "Great moment for the industry.\nNote: This text was generated automatically."
	assert.Equal(t, "Great moment for the industry.", sanitizePitch(in))
}

func TestSanitizePitch_RemovesBracketedNote(t *testing.T) {
	in := "[Note: AI generated] Teams should watch this closely."
	assert.Equal(t, "Teams should watch this closely.", sanitizePitch(in))
}

func TestSanitizePitch_StripsQuotes(t *testing.T) {
	assert.Equal(t, "Big shift ahead.", sanitizePitch(`"Big shift ahead."`))
	assert.Equal(t, "", sanitizePitch("  \n "))
}

func TestSanitizePitch_CapsLength(t *testing.T) {
	in := strings.Repeat("This is one sentence about trends. ", 40)
	out := sanitizePitch(in)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), maxPitchRunes)
	assert.True(t, strings.HasSuffix(out, "."))
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(news.Candidate{Title: "Robots cook", Description: news.Text("Pasta bots"), Source: news.Text("Lab")})
	assert.Contains(t, p, "Title: Robots cook")
	assert.Contains(t, p, "Summary: Pasta bots")
	assert.Contains(t, p, "Source: Lab")

	p = buildPrompt(news.Candidate{Title: "Bare"})
	assert.NotContains(t, p, "Summary:")
	assert.NotContains(t, p, "Source:")
}
