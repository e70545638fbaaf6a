// Package gemini writes the optional AI pitch paragraph of a draft.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/trenddraft/internal/news"
)

const maxPitchRunes = 600

var errEmptyPitch = errors.New("empty pitch from Gemini")

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Pitch asks the model for a short promotional paragraph about the candidate.
func (c *Client) Pitch(ctx context.Context, candidate news.Candidate) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(256)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(candidate)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	pitch := sanitizePitch(b.String())
	if pitch == "" {
		return "", errEmptyPitch
	}
	return pitch, nil
}

func buildPrompt(c news.Candidate) string {
	var b strings.Builder
	b.WriteString("Write a short LinkedIn post paragraph (at most 3 sentences) reacting to this article.\n")
	b.WriteString("Sound like an industry professional sharing an insight. No hashtags, no emoji, no markdown, no quotes.\n")
	b.WriteString("Reply with the paragraph only.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	if d := c.Description.OrEmpty(); d != "" {
		fmt.Fprintf(&b, "Summary: %s\n", d)
	}
	if s := c.Source.OrEmpty(); s != "" {
		fmt.Fprintf(&b, "Source: %s\n", s)
	}
	return b.String()
}

var (
	labelPrefix    = regexp.MustCompile(`(?i)^\s*(paragraph|post|linkedin post|answer)\s*:\s*`)
	noteLine       = regexp.MustCompile(`(?im)^\s*\(?note:.*$`)
	bracketedNote  = regexp.MustCompile(`(?i)[\[(]\s*note:[^\])]*[\])]`)
	markdownMarker = regexp.MustCompile("[*_`#]+")
)

// sanitizePitch strips labels, disclaimers and markdown the model sometimes adds.
func sanitizePitch(raw string) string {
	s := strings.ReplaceAll(raw, "\r", "")
	s = bracketedNote.ReplaceAllString(s, " ")
	s = noteLine.ReplaceAllString(s, "")
	s = markdownMarker.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = labelPrefix.ReplaceAllString(s, "")
	s = strings.Trim(s, "\"“” ")

	if utf8.RuneCountInString(s) > maxPitchRunes {
		runes := []rune(s)
		trimmed := string(runes[:maxPitchRunes])
		if idx := strings.LastIndex(trimmed, ". "); idx > maxPitchRunes/3 {
			trimmed = trimmed[:idx+1]
		}
		s = trimmed
	}
	return s
}
