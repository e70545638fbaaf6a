package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/trenddraft/internal/config"
	"github.com/deusflow/trenddraft/internal/draft"
	"github.com/deusflow/trenddraft/internal/logger"
	"github.com/deusflow/trenddraft/internal/news"
)

type staticSource []news.Candidate

func (s staticSource) Fetch(context.Context) []news.Candidate { return s }

type recordingSender struct {
	err     error
	calls   int
	subject string
	body    string
}

func (r *recordingSender) Send(_ context.Context, subject, body string) error {
	r.calls++
	r.subject = subject
	r.body = body
	return r.err
}

type stubPitcher struct {
	pitch string
	err   error
}

func (p stubPitcher) Pitch(context.Context, news.Candidate) (string, error) {
	return p.pitch, p.err
}

func testConfig(mode string) config.Config {
	cfg := config.Default()
	cfg.SourceMode = mode
	cfg.Credentials = config.Credentials{
		NewsAPIKey:     "key",
		SenderEmail:    "me@example.com",
		SenderPassword: "secret",
		ReceiverEmail:  "you@example.com",
	}
	return cfg
}

func candidate(title, url string) news.Candidate {
	return news.Candidate{Title: title, URL: url}
}

func TestPipelineDeliversFirstSafeCandidate(t *testing.T) {
	sender := &recordingSender{}
	p := NewPipeline(PipelineDeps{
		Source: staticSource{
			candidate("Election fraud claims spread", "https://example.com/election"),
			candidate("Local bakery wins award", "https://example.com/bakery"),
		},
		Chain:  BuildChain(testConfig(config.SourceRSS)),
		Sender: sender,
		Logger: logger.Discard(),
	})

	outcome := p.Run(context.Background())

	assert.Equal(t, OutcomeDelivered, outcome)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "Daily LinkedIn Draft: Local bakery wins award", sender.subject)
	assert.Contains(t, sender.body, "LINK: https://example.com/bakery")
}

func TestPipelineNoCandidates(t *testing.T) {
	sender := &recordingSender{}
	var buf bytes.Buffer
	p := NewPipeline(PipelineDeps{
		Source: staticSource{},
		Chain:  BuildChain(testConfig(config.SourceNewsAPI)),
		Sender: sender,
		Logger: logger.NewWithWriter(&buf, false),
	})

	assert.Equal(t, OutcomeNoCandidate, p.Run(context.Background()))
	assert.Zero(t, sender.calls)
	assert.Contains(t, buf.String(), "no suitable article found")
	assert.Contains(t, buf.String(), "outcome=no_candidate")
}

func TestPipelinePaywallOnlyForSearch(t *testing.T) {
	paywalled := staticSource{candidate("Chip race heats up", "https://www.nytimes.com/tech/x")}

	sender := &recordingSender{}
	p := NewPipeline(PipelineDeps{Source: paywalled, Chain: BuildChain(testConfig(config.SourceNewsAPI)), Sender: sender, Logger: logger.Discard()})
	assert.Equal(t, OutcomeNoCandidate, p.Run(context.Background()))

	p = NewPipeline(PipelineDeps{Source: paywalled, Chain: BuildChain(testConfig(config.SourceRSS)), Sender: sender, Logger: logger.Discard()})
	assert.Equal(t, OutcomeDelivered, p.Run(context.Background()))
}

func TestPipelineDeliveryFailureIsNotFatal(t *testing.T) {
	sender := &recordingSender{err: errors.New("auth: 535 5.7.8 Username and Password not accepted")}
	var buf bytes.Buffer
	p := NewPipeline(PipelineDeps{
		Source: staticSource{candidate("Robots learn to cook", "https://example.com/robots")},
		Chain:  BuildChain(testConfig(config.SourceRSS)),
		Sender: sender,
		Logger: logger.NewWithWriter(&buf, false),
	})

	assert.Equal(t, OutcomeDeliveryFailed, p.Run(context.Background()))
	assert.Equal(t, 1, sender.calls)
	assert.Contains(t, buf.String(), "failed to send email")
}

func TestPipelineDryRunSkipsDelivery(t *testing.T) {
	sender := &recordingSender{}
	p := NewPipeline(PipelineDeps{
		Source: staticSource{candidate("Robots learn to cook", "https://example.com/robots")},
		Sender: sender,
		Logger: logger.Discard(),
		DryRun: true,
	})

	assert.Equal(t, OutcomeDryRun, p.Run(context.Background()))
	assert.Zero(t, sender.calls)
}

func TestPipelineUsesPitch(t *testing.T) {
	c := candidate("Robots learn to cook", "https://example.com/robots")

	sender := &recordingSender{}
	p := NewPipeline(PipelineDeps{
		Source:  staticSource{c},
		Sender:  sender,
		Pitcher: stubPitcher{pitch: "Kitchens are about to change."},
		Logger:  logger.Discard(),
	})
	p.Run(context.Background())
	want, err := draft.RenderWithPitch(c, "Kitchens are about to change.")
	require.NoError(t, err)
	assert.Equal(t, want.Body, sender.body)

	sender = &recordingSender{}
	p = NewPipeline(PipelineDeps{
		Source:  staticSource{c},
		Sender:  sender,
		Pitcher: stubPitcher{err: errors.New("quota exceeded")},
		Logger:  logger.Discard(),
	})
	assert.Equal(t, OutcomeDelivered, p.Run(context.Background()))
	want, err = draft.Render(c)
	require.NoError(t, err)
	assert.Equal(t, want.Body, sender.body)
}

func TestRunMissingCredentialsMakesNoNetworkCall(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	cfg := testConfig(config.SourceRSS)
	cfg.FeedURL = server.URL
	cfg.Credentials.SenderPassword = ""

	err := Run(context.Background(), cfg, logger.Discard(), Options{HTTPClient: server.Client()})
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Zero(t, hits.Load())

	cfg = testConfig(config.SourceNewsAPI)
	cfg.NewsAPIEndpoint = server.URL
	cfg.Credentials.NewsAPIKey = ""

	err = Run(context.Background(), cfg, logger.Discard(), Options{HTTPClient: server.Client()})
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Zero(t, hits.Load())
}

func TestRunSearchFailureEndsQuietly(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "non-ok status", body: `{"status":"error","code":"rateLimited","message":"slow down"}`},
		{name: "zero articles", body: `{"status":"ok","totalResults":0,"articles":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := testConfig(config.SourceNewsAPI)
			cfg.NewsAPIEndpoint = server.URL

			var buf bytes.Buffer
			err := Run(context.Background(), cfg, logger.NewWithWriter(&buf, false), Options{HTTPClient: server.Client()})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "no suitable article found")
		})
	}
}

func TestRunRSSDryRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>Local bakery wins award</title><link>https://example.com/bakery</link></item>
<item><title>Election fraud claims spread</title><link>https://example.com/election</link></item>
</channel></rss>`))
	}))
	defer server.Close()

	cfg := testConfig(config.SourceRSS)
	cfg.FeedURL = server.URL

	var buf bytes.Buffer
	err := Run(context.Background(), cfg, logger.NewWithWriter(&buf, false), Options{DryRun: true, HTTPClient: server.Client()})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Daily LinkedIn Draft: Local bakery wins award")
	assert.Contains(t, buf.String(), "outcome=dry_run")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "delivered", OutcomeDelivered.String())
	assert.Equal(t, "render_failed", OutcomeRenderFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
