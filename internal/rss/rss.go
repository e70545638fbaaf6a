// Package rss fetches feed items as draft candidates.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/trenddraft/internal/news"
	"github.com/deusflow/trenddraft/internal/scraper"
)

const userAgent = "trenddraft/1.0"

// Feed reads candidates from a single syndication feed.
type Feed struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewFeed creates a feed source. A nil client falls back to http.DefaultClient.
func NewFeed(url string, client *http.Client, logger *slog.Logger) *Feed {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{url: url, client: client, logger: logger}
}

// Fetch downloads and parses the feed. Failures are logged and yield no candidates.
func (f *Feed) Fetch(ctx context.Context) []news.Candidate {
	candidates, err := f.fetch(ctx)
	if err != nil {
		f.logger.Error("feed fetch failed", "url", f.url, "error", err)
		return nil
	}
	f.logger.Info("feed loaded", "url", f.url, "candidates", len(candidates))
	return candidates
}

func (f *Feed) fetch(ctx context.Context) ([]news.Candidate, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	return toCandidates(feed, f.logger), nil
}

func toCandidates(feed *gofeed.Feed, logger *slog.Logger) []news.Candidate {
	source := news.Text(feed.Title)
	out := make([]news.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := strings.Join(strings.Fields(item.Title), " ")
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			logger.Debug("skip feed item without title or link", "title", title, "link", link)
			continue
		}

		description := scraper.PlainText(item.Description)
		if description == "" {
			description = scraper.PlainText(item.Content)
		}

		out = append(out, news.Candidate{
			Title:       title,
			Description: news.Text(description),
			URL:         link,
			Source:      source,
		})
	}
	return out
}
