package models

import (
	"fmt"
	"sort"
	"time"
)

// Well-known metric names delivered by the ingestion layer.
const (
	MetricOpenRank           = "openrank"
	MetricActiveContributors = "active_contributors"
	MetricCommits            = "commits"
	MetricPullRequests       = "pull_requests"
	MetricIssuesOpened       = "issues_opened"
	MetricIssuesClosed       = "issues_closed"
	MetricIssueResponseTime  = "issue_response_time"
	MetricStars              = "stars"
)

// DateLayout is the wire format for series keys.
const DateLayout = "2006-01-02"

// MetricSample is a single timestamped observation for one repository.
type MetricSample struct {
	Date   time.Time `json:"date"`
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
}

// Sample is one day's merged observations. Metrics absent on a given day
// read as zero.
type Sample struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Get returns the value for a metric, or zero when the day has no
// observation for it.
func (s Sample) Get(metric string) float64 {
	return s.Values[metric]
}

// ActivityWindow is an ordered sequence of daily samples bounded by
// [Start, End). It is built once and never mutated afterwards.
type ActivityWindow struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Samples []Sample  `json:"samples"`
}

// NewActivityWindow merges per-metric date-keyed series into date-sorted
// daily samples, keeping only dates in [start, end). Series arrive as
// unordered mappings from ISO-8601 date to value; explicit sorting here is
// the only ordering guarantee downstream scorers rely on.
func NewActivityWindow(start, end time.Time, series map[string]map[string]float64) (ActivityWindow, error) {
	days := make(map[string]Sample)

	for metric, points := range series {
		for date, value := range points {
			d, err := time.Parse(DateLayout, date)
			if err != nil {
				return ActivityWindow{}, fmt.Errorf("series %q: invalid date %q: %w", metric, date, err)
			}
			if d.Before(start) || !d.Before(end) {
				continue
			}
			s, ok := days[date]
			if !ok {
				s = Sample{Date: d, Values: make(map[string]float64)}
			}
			s.Values[metric] = value
			days[date] = s
		}
	}

	samples := make([]Sample, 0, len(days))
	for _, s := range days {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})

	return ActivityWindow{Start: start, End: end, Samples: samples}, nil
}

// Len returns the number of daily samples in the window.
func (w ActivityWindow) Len() int { return len(w.Samples) }

// Empty reports whether the window holds no samples.
func (w ActivityWindow) Empty() bool { return len(w.Samples) == 0 }

// Series extracts one metric as an ordered value slice, zero-filled for
// days without an observation.
func (w ActivityWindow) Series(metric string) []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = s.Get(metric)
	}
	return out
}

// Sum totals one metric across the window.
func (w ActivityWindow) Sum(metric string) float64 {
	var total float64
	for _, s := range w.Samples {
		total += s.Get(metric)
	}
	return total
}
