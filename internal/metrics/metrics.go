// Package metrics counts what happened during a single run.
package metrics

import (
	"sort"
	"time"
)

// Run collects counters for a single pipeline execution.
type Run struct {
	started time.Time

	CandidatesFetched int
	Rejections        map[string]int
	Selected          bool
	Delivered         bool
	DryRun            bool
	AIPitchUsed       bool
	LastError         string
}

func NewRun(now time.Time) *Run {
	return &Run{started: now, Rejections: make(map[string]int)}
}

func (r *Run) AddFetched(n int) {
	r.CandidatesFetched += n
}

// RecordRejection counts a rejected candidate under the filter that rejected it.
func (r *Run) RecordRejection(filter string) {
	r.Rejections[filter]++
}

func (r *Run) SetSelected() {
	r.Selected = true
}

func (r *Run) SetDelivered() {
	r.Delivered = true
}

func (r *Run) SetError(err string) {
	r.LastError = err
}

// TotalRejected sums rejections across filters.
func (r *Run) TotalRejected() int {
	total := 0
	for _, n := range r.Rejections {
		total += n
	}
	return total
}

// LogArgs returns key/value pairs for a single summary log line, in stable order.
func (r *Run) LogArgs(now time.Time) []any {
	args := []any{
		"fetched", r.CandidatesFetched,
		"rejected", r.TotalRejected(),
	}

	filters := make([]string, 0, len(r.Rejections))
	for f := range r.Rejections {
		filters = append(filters, f)
	}
	sort.Strings(filters)
	for _, f := range filters {
		args = append(args, "rejected_"+f, r.Rejections[f])
	}

	args = append(args,
		"selected", r.Selected,
		"delivered", r.Delivered,
		"dry_run", r.DryRun,
		"ai_pitch", r.AIPitchUsed,
		"duration_ms", now.Sub(r.started).Milliseconds(),
	)
	if r.LastError != "" {
		args = append(args, "last_error", r.LastError)
	}
	return args
}
