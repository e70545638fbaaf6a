// Package app wires one run of the pipeline: fetch, select, render, deliver.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/trenddraft/internal/config"
	"github.com/deusflow/trenddraft/internal/draft"
	"github.com/deusflow/trenddraft/internal/filter"
	"github.com/deusflow/trenddraft/internal/gemini"
	"github.com/deusflow/trenddraft/internal/mailer"
	"github.com/deusflow/trenddraft/internal/metrics"
	"github.com/deusflow/trenddraft/internal/news"
	"github.com/deusflow/trenddraft/internal/newsapi"
	"github.com/deusflow/trenddraft/internal/rss"
)

// Source yields the run's candidates in upstream order. Failures yield none.
type Source interface {
	Fetch(ctx context.Context) []news.Candidate
}

// Sender delivers the rendered draft.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Pitcher writes the promotional paragraph of the draft.
type Pitcher interface {
	Pitch(ctx context.Context, c news.Candidate) (string, error)
}

// Outcome is how a run ended.
type Outcome int

const (
	OutcomeNoCandidate Outcome = iota
	OutcomeDelivered
	OutcomeDeliveryFailed
	OutcomeDryRun
	OutcomeRenderFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoCandidate:
		return "no_candidate"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeDryRun:
		return "dry_run"
	case OutcomeRenderFailed:
		return "render_failed"
	default:
		return "unknown"
	}
}

// Options are the command-line switches that are not part of the environment config.
type Options struct {
	DryRun     bool
	HTTPClient *http.Client
}

// PipelineDeps wires the run's collaborators.
type PipelineDeps struct {
	Source  Source
	Chain   *filter.Chain
	Pitcher Pitcher // optional
	Sender  Sender
	Logger  *slog.Logger
	DryRun  bool
	Now     func() time.Time
}

// Pipeline is one linear pass: fetch, select, render, deliver.
type Pipeline struct {
	source  Source
	chain   *filter.Chain
	pitcher Pitcher
	sender  Sender
	logger  *slog.Logger
	dryRun  bool
	now     func() time.Time
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	chain := deps.Chain
	if chain == nil {
		chain = filter.NewChain()
	}
	return &Pipeline{
		source:  deps.Source,
		chain:   chain,
		pitcher: deps.Pitcher,
		sender:  deps.Sender,
		logger:  logger,
		dryRun:  deps.DryRun,
		now:     now,
	}
}

// Run executes the pipeline once. Every failure past startup is logged, never returned.
func (p *Pipeline) Run(ctx context.Context) Outcome {
	stats := metrics.NewRun(p.now())
	stats.DryRun = p.dryRun
	outcome := p.run(ctx, stats)
	p.logger.Info("run finished", append([]any{"outcome", outcome.String()}, stats.LogArgs(p.now())...)...)
	return outcome
}

func (p *Pipeline) run(ctx context.Context, stats *metrics.Run) Outcome {
	p.logger.Info("fetching candidates")
	candidates := p.source.Fetch(ctx)
	stats.AddFetched(len(candidates))
	p.logger.Info("candidates fetched", "count", len(candidates))

	p.logger.Info("filtering candidates", "filters", p.chain.Names())
	selected, ok := filter.Select(candidates, p.chain, p.logger, stats)
	if !ok {
		p.logger.Info("no suitable article found")
		return OutcomeNoCandidate
	}
	stats.SetSelected()

	d, err := p.render(ctx, selected, stats)
	if err != nil {
		p.logger.Error("failed to render draft", "error", err)
		stats.SetError(err.Error())
		return OutcomeRenderFailed
	}
	p.logger.Info("draft rendered", "subject", d.Subject, "bytes", len(d.Body))

	if p.dryRun {
		p.logger.Info("dry run, email not sent", "body", d.Body)
		return OutcomeDryRun
	}

	p.logger.Info("sending email")
	if err := p.sender.Send(ctx, d.Subject, d.Body); err != nil {
		p.logger.Error("failed to send email", "error", err)
		stats.SetError(err.Error())
		return OutcomeDeliveryFailed
	}
	stats.SetDelivered()
	p.logger.Info("email sent successfully")
	return OutcomeDelivered
}

func (p *Pipeline) render(ctx context.Context, c news.Candidate, stats *metrics.Run) (draft.Draft, error) {
	if p.pitcher == nil {
		return draft.Render(c)
	}
	pitch, err := p.pitcher.Pitch(ctx, c)
	if err != nil {
		p.logger.Warn("ai pitch failed, using default", "error", err)
		return draft.Render(c)
	}
	d, err := draft.RenderWithPitch(c, pitch)
	if err == nil {
		stats.AIPitchUsed = true
	}
	return d, err
}

// BuildChain returns the filters for the configured source: the paywall check only
// applies to search results.
func BuildChain(cfg config.Config) *filter.Chain {
	predicates := []filter.Predicate{filter.NewSensitive(cfg.SensitiveKeywords)}
	if cfg.SourceMode == config.SourceNewsAPI {
		predicates = append(predicates, filter.NewPaywall(cfg.PaywallDomains))
	}
	return filter.NewChain(predicates...)
}

// Run validates credentials, wires the real collaborators and executes one pass.
// Only configuration errors are returned; nothing touches the network before they are checked.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	var source Source
	switch cfg.SourceMode {
	case config.SourceNewsAPI:
		source = newsapi.NewClient(newsapi.Config{
			Endpoint: cfg.NewsAPIEndpoint,
			APIKey:   cfg.Credentials.NewsAPIKey,
			Query:    cfg.NewsAPIQuery,
			Language: cfg.NewsAPILanguage,
			PageSize: cfg.NewsAPIPageSize,
			Window:   cfg.NewsAPIWindow,
		}, httpClient, logger.With("component", "newsapi"))
	default:
		source = rss.NewFeed(cfg.FeedURL, httpClient, logger.With("component", "rss"))
	}

	deps := PipelineDeps{
		Source: source,
		Chain:  BuildChain(cfg),
		Sender: mailer.NewSender(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Credentials.SenderEmail,
			Password: cfg.Credentials.SenderPassword,
			From:     cfg.Credentials.SenderEmail,
			To:       cfg.Credentials.ReceiverEmail,
		}),
		Logger: logger.With("component", "pipeline"),
		DryRun: opts.DryRun,
	}

	if cfg.UseAIDraft() {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini unavailable, using default pitch", "error", err)
		} else {
			defer client.Close()
			deps.Pitcher = client
		}
	}

	logger.Info("starting run", "source", cfg.SourceMode, "dry_run", opts.DryRun, "ai_pitch", deps.Pitcher != nil)
	NewPipeline(deps).Run(ctx)
	return nil
}
