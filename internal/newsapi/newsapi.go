// Package newsapi searches a NewsAPI-compatible endpoint for the day's most popular articles.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/trenddraft/internal/news"
)

// MaxPageSize is the largest page the client asks for.
const MaxPageSize = 20

const removedPlaceholder = "[Removed]"

// ErrStatus reports a response whose status field is not "ok".
var ErrStatus = errors.New("news api returned non-ok status")

// Config describes one search.
type Config struct {
	Endpoint string
	APIKey   string
	Query    string
	Language string
	PageSize int
	Window   time.Duration // lower bound of the search is now - Window
}

type searchResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
}

// Client is a candidate source backed by the search API.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a search source. A nil client falls back to http.DefaultClient.
func NewClient(cfg Config, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &Client{cfg: cfg, client: client, logger: logger, now: time.Now}
}

// Fetch runs the search. Failures are logged and yield no candidates.
func (c *Client) Fetch(ctx context.Context) []news.Candidate {
	candidates, err := c.search(ctx)
	if err != nil {
		c.logger.Error("news search failed", "query", c.cfg.Query, "error", err)
		return nil
	}
	c.logger.Info("news search done", "query", c.cfg.Query, "candidates", len(candidates))
	return candidates
}

func (c *Client) search(ctx context.Context) ([]news.Candidate, error) {
	endpoint, err := c.buildURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("news api error: %s", resp.Status)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("%w: status=%q code=%q message=%q", ErrStatus, payload.Status, payload.Code, payload.Message)
	}

	return toCandidates(payload.Articles), nil
}

func (c *Client) buildURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	from := c.now().Add(-c.cfg.Window).UTC().Format(time.RFC3339)

	q := u.Query()
	q.Set("q", c.cfg.Query)
	q.Set("from", from)
	q.Set("sortBy", "popularity")
	q.Set("language", c.cfg.Language)
	q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	q.Set("apiKey", c.cfg.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func toCandidates(articles []article) []news.Candidate {
	out := make([]news.Candidate, 0, len(articles))
	for _, a := range articles {
		title := strings.Join(strings.Fields(a.Title), " ")
		link := strings.TrimSpace(a.URL)
		if title == "" || link == "" || title == removedPlaceholder {
			continue
		}

		var description news.OptionalText
		if a.Description != nil {
			description = news.Text(*a.Description)
		}

		out = append(out, news.Candidate{
			Title:       title,
			Description: description,
			URL:         link,
			Source:      news.Text(a.Source.Name),
		})
	}
	return out
}
