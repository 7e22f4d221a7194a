// Package churn predicts contributor churn risk from activity decay,
// collaboration-network position, and engagement proxies.
package churn

import (
	"time"

	"github.com/osshealth/pulse/pkg/analyzer/network"
	"github.com/osshealth/pulse/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Composite model weights; they sum to 1.0 and are fixed by design.
const (
	weightBehaviorDecay   = 0.35
	weightMarginalization = 0.30
	weightTemporalAnomaly = 0.25
	weightEngagement      = 0.10
)

const (
	// minSamples is the minimum series length for a meaningful decay split.
	minSamples = 30

	// neutralScore stands in when data is insufficient or absent.
	neutralScore = 0.5

	// absentMarginalization applies when the contributor is missing from a
	// supplied collaboration graph.
	absentMarginalization = 0.8

	// temporalAnomalyFactor scales behavior decay into the declared
	// temporal-anomaly proxy. Not an independent detector.
	temporalAnomalyFactor = 0.8

	// placeholderEngagement is the static engagement score pending a real
	// signal.
	placeholderEngagement = 0.6

	marginalizationDegreeWeight      = 0.6
	marginalizationBetweennessWeight = 0.4
)

// Sub-score thresholds that trigger retention suggestions.
const (
	suggestDecayAbove        = 0.5
	suggestMarginalizedAbove = 0.6
	suggestAnomalyAbove      = 0.6
	suggestEngagementBelow   = 0.4
)

// DefaultWindowDays is the trailing period examined for decay.
const DefaultWindowDays = 90

// Predictor produces churn predictions for individual contributors.
type Predictor struct {
	thresholds models.AlertThresholds
	windowDays int
}

// Option is a functional option for configuring Predictor.
type Option func(*Predictor)

// WithAlertThresholds sets the alert ladder lower bounds.
func WithAlertThresholds(t models.AlertThresholds) Option {
	return func(p *Predictor) {
		p.thresholds = t
	}
}

// WithWindowDays sets the trailing window length in days.
func WithWindowDays(days int) Option {
	return func(p *Predictor) {
		if days > 0 {
			p.windowDays = days
		}
	}
}

// New creates a churn predictor.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		thresholds: models.DefaultAlertThresholds(),
		windowDays: DefaultWindowDays,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WindowDays returns the configured trailing window length.
func (p *Predictor) WindowDays() int { return p.windowDays }

// Predict scores one contributor. The window holds the contributor's
// trailing activity series; net is an optional pre-built collaboration
// analyzer. Missing data always resolves to documented neutral values, so
// the caller receives a well-formed prediction in every case.
func (p *Predictor) Predict(repo, contributor string, window models.ActivityWindow, net *network.Analyzer) models.ChurnPrediction {
	decay := behaviorDecay(window)
	marginalization := networkMarginalization(contributor, net)
	anomaly := decay * temporalAnomalyFactor
	engagement := placeholderEngagement

	probability := weightBehaviorDecay*decay +
		weightMarginalization*marginalization +
		weightTemporalAnomaly*anomaly +
		weightEngagement*(1-engagement)

	return models.ChurnPrediction{
		Contributor:            contributor,
		Repo:                   repo,
		Timestamp:              time.Now().UTC(),
		ChurnProbability:       probability,
		AlertLevel:             models.AlertForProbability(probability, p.thresholds),
		BehaviorDecay:          decay,
		NetworkMarginalization: marginalization,
		TemporalAnomaly:        anomaly,
		CommunityEngagement:    engagement,
		RetentionSuggestions:   retentionSuggestions(decay, marginalization, anomaly, engagement),
	}
}

// behaviorDecay compares the older half of the commit series against the
// recent half. Insufficient data or a silent older period scores neutral.
func behaviorDecay(window models.ActivityWindow) float64 {
	commits := window.Series(models.MetricCommits)
	if len(commits) < minSamples {
		return neutralScore
	}

	mid := len(commits) / 2
	olderAvg := stat.Mean(commits[:mid], nil)
	recentAvg := stat.Mean(commits[mid:], nil)

	if olderAvg == 0 {
		return neutralScore
	}
	return clip01((olderAvg - recentAvg) / olderAvg)
}

// networkMarginalization measures how peripheral the contributor sits in
// the collaboration graph. No graph scores neutral; absence from a
// supplied graph scores 0.8.
func networkMarginalization(contributor string, net *network.Analyzer) float64 {
	if net == nil {
		return neutralScore
	}
	centrality, err := net.Centrality()
	if err != nil {
		// An analyzer without a built network is treated as no graph.
		return neutralScore
	}
	profile, ok := centrality[contributor]
	if !ok {
		return absentMarginalization
	}
	return clip01(1 - (marginalizationDegreeWeight*profile.DegreeCentrality +
		marginalizationBetweennessWeight*profile.Betweenness))
}

// retentionSuggestions emits one suggestion per elevated sub-score, in
// fixed check order, or a single healthy note when none trigger.
func retentionSuggestions(decay, marginalization, anomaly, engagement float64) []string {
	var suggestions []string

	if decay > suggestDecayAbove {
		suggestions = append(suggestions,
			"Contributor activity has declined significantly. Consider reaching out to understand if they're facing blockers.")
	}
	if marginalization > suggestMarginalizedAbove {
		suggestions = append(suggestions,
			"Contributor is becoming isolated in the collaboration network. Encourage pairing with core team members on important features.")
	}
	if anomaly > suggestAnomalyAbove {
		suggestions = append(suggestions,
			"Unusual activity pattern detected. Schedule a 1-on-1 to discuss their continued involvement.")
	}
	if engagement < suggestEngagementBelow {
		suggestions = append(suggestions,
			"Low community engagement. Invite them to participate in discussions, code reviews, or community events.")
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Contributor appears healthy. Continue regular engagement and recognition.")
	}
	return suggestions
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
