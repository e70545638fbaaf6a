// Package draft renders the social-media post draft delivered by email.
package draft

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/deusflow/trenddraft/internal/news"
)

const (
	SubjectPrefix = "Daily LinkedIn Draft: "
	DefaultPitch  = "This is a massive shift for the industry. I've been tracking this trend..."

	maxDescriptionRunes = 280
)

const bodyTemplate = `TOPIC: {{.Title}}
LINK: {{.URL}}
{{- if .Source}}
SOURCE: {{.Source}}
{{- end}}

--- DRAFT ---
🚀 {{.Title}}
{{if .Description}}
{{.Description}}
{{end}}
{{.Pitch}}

(Paste this into your scheduler!)
`

var body = template.Must(template.New("draft").Parse(bodyTemplate))

// Draft is the rendered email subject and body.
type Draft struct {
	Subject string
	Body    string
}

type bodyData struct {
	Title       string
	URL         string
	Source      string
	Description string
	Pitch       string
}

// Render builds the draft with the default pitch.
func Render(c news.Candidate) (Draft, error) {
	return RenderWithPitch(c, DefaultPitch)
}

// RenderWithPitch builds the draft with a custom promotional paragraph. A blank
// pitch falls back to DefaultPitch.
func RenderWithPitch(c news.Candidate, pitch string) (Draft, error) {
	return render(body, c, pitch)
}

func render(tmpl *template.Template, c news.Candidate, pitch string) (Draft, error) {
	title := oneLine(c.Title)
	pitch = strings.TrimSpace(pitch)
	if pitch == "" {
		pitch = DefaultPitch
	}

	data := bodyData{
		Title:       title,
		URL:         strings.TrimSpace(c.URL),
		Source:      oneLine(c.Source.OrEmpty()),
		Description: truncate(oneLine(c.Description.OrEmpty()), maxDescriptionRunes),
		Pitch:       pitch,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Draft{}, fmt.Errorf("render draft body: %w", err)
	}

	return Draft{
		Subject: SubjectPrefix + title,
		Body:    buf.String(),
	}, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts text to max runes, preferring the last word boundary.
func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
