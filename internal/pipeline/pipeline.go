// Package pipeline runs the provider-scoped analysis stages in order:
// provider filter, multi-session filter, gap computation, binning,
// classification. Each stage takes the previous stage's table and
// returns a new one; nothing is mutated after handoff.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/skyline-analytics/adgap/internal/bin"
	"github.com/skyline-analytics/adgap/internal/classify"
	"github.com/skyline-analytics/adgap/internal/gap"
	"github.com/skyline-analytics/adgap/internal/session"
)

// Result holds every table a provider run produces. Sessions is the
// provider-filtered input before the multi-session filter, matching
// what gets exported as the provider's data table.
type Result struct {
	Provider    string
	Sessions    []session.Record
	Gaps        []gap.Record
	Frequencies []bin.Record
	Verdicts    []classify.Verdict
}

// Run analyzes one provider's sessions out of the full table. Empty
// stage outputs flow through as empty results; only malformed data
// aborts the run.
func Run(records []session.Record, provider string, params classify.Params, logger *slog.Logger) (*Result, error) {
	res := &Result{Provider: provider}

	res.Sessions = session.FilterByProvider(records, provider)
	logger.Debug("provider filter applied", "provider", provider, "sessions", len(res.Sessions))

	retained := session.FilterMultiSession(res.Sessions)
	logger.Debug("multi-session filter applied", "provider", provider, "sessions", len(retained))

	gaps, err := gap.Compute(retained)
	if err != nil {
		return nil, fmt.Errorf("%s: compute gaps: %w", provider, err)
	}
	res.Gaps = gaps

	freqs, err := bin.Tally(gaps)
	if err != nil {
		return nil, fmt.Errorf("%s: bin gaps: %w", provider, err)
	}
	res.Frequencies = freqs

	res.Verdicts = classify.Classify(freqs, params)
	logger.Debug("classification complete", "provider", provider, "devices", len(res.Verdicts))

	return res, nil
}

// VerdictCounts tallies verdicts by subscription type, for logging and
// run summaries.
func (r *Result) VerdictCounts() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Verdicts {
		counts[v.SubscriptionType]++
	}
	return counts
}
