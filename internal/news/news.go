// Package news holds the candidate article model shared by sources, filters and the draft renderer.
package news

import "strings"

// OptionalText is a text field that upstream sources may omit.
type OptionalText struct {
	Value string
	Valid bool
}

// Text wraps s, treating blank input as absent.
func Text(s string) OptionalText {
	s = strings.TrimSpace(s)
	return OptionalText{Value: s, Valid: s != ""}
}

// OrEmpty returns the value or "" when absent.
func (t OptionalText) OrEmpty() string {
	return t.Or("")
}

// Or returns the value or def when absent.
func (t OptionalText) Or(def string) string {
	if !t.Valid {
		return def
	}
	return t.Value
}

// Candidate is one article eligible for selection during a single run.
type Candidate struct {
	Title       string
	Description OptionalText
	URL         string
	Source      OptionalText
}

// Text is the title and description joined by a space, the text content filters inspect.
func (c Candidate) Text() string {
	return c.Title + " " + c.Description.OrEmpty()
}
