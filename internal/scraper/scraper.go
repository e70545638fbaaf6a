// Package scraper reduces the HTML found in feed entries to plain text.
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors are elements whose boundaries separate words.
const blockSelectors = "br, p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, figcaption"

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}

	doc.Find("script, style, noscript, iframe").Remove()
	doc.Find(blockSelectors).Each(func(i int, s *goquery.Selection) {
		s.BeforeHtml(" ")
	})

	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
