// Package health scores repository health over a trailing activity window
// and classifies the project's lifecycle stage.
package health

import (
	"fmt"
	"math"
	"time"

	"github.com/osshealth/pulse/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// weightTolerance is the floating tolerance for the sum-to-1.0 invariant.
const weightTolerance = 1e-6

// DefaultWindowDays is the trailing period one assessment covers.
const DefaultWindowDays = 90

// Activity dimension normalization: a healthy project lands around 100
// commits, 20 PRs, and 30 issues per 90-day window.
const (
	activityCommitCap  = 100
	activityCommitPts  = 40
	activityPRCap      = 20
	activityPRPts      = 30
	activityIssueCap   = 30
	activityIssuePts   = 30
	diversityBaseline  = 10  // healthy active-contributor count
	responseFloorHours = 24  // avg response at or under this scores 100
	responseCeilHours  = 168 // avg response at or over this scores 0
	prRatioHealthyLow  = 0.2
	prRatioHealthyHigh = 0.5
	closureRateHealthy = 0.7
	neutralScore       = 50.0
	neutralPositive    = 70.0
)

// Lifecycle trend thresholds.
const (
	embryonicContributors = 3
	growthActivityRatio   = 1.2
	growthContribRatio    = 1.1
	declineActivityRatio  = 0.7
	recentPeriodSamples   = 30
)

// Weights are the six health dimension weights; they must sum to 1.0.
type Weights struct {
	Activity            float64
	Diversity           float64
	ResponseTime        float64
	CodeQuality         float64
	Documentation       float64
	CommunityAtmosphere float64
}

// DefaultWeights returns the standard dimension weighting.
func DefaultWeights() Weights {
	return Weights{
		Activity:            0.25,
		Diversity:           0.15,
		ResponseTime:        0.15,
		CodeQuality:         0.15,
		Documentation:       0.15,
		CommunityAtmosphere: 0.15,
	}
}

// Sum returns the total of all six weights.
func (w Weights) Sum() float64 {
	return w.Activity + w.Diversity + w.ResponseTime + w.CodeQuality +
		w.Documentation + w.CommunityAtmosphere
}

// Validate rejects weights that do not sum to 1.0.
func (w Weights) Validate() error {
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("health weights must sum to 1.0, got %.6f", sum)
	}
	return nil
}

// Scorer turns a trailing activity window into a HealthScore.
type Scorer struct {
	weights    Weights
	windowDays int
}

// Option is a functional option for configuring Scorer.
type Option func(*Scorer)

// WithWeights sets custom dimension weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithWindowDays sets the trailing window length in days.
func WithWindowDays(days int) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// New creates a health scorer. Invalid weights fail construction.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights:    DefaultWeights(),
		windowDays: DefaultWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WindowDays returns the configured trailing window length.
func (s *Scorer) WindowDays() int { return s.windowDays }

// Assess scores one repository over the supplied window. An empty window
// (or one carrying no observations at all) yields a fully zeroed embryonic
// score; that is an explicit fallback, not an error.
func (s *Scorer) Assess(repo string, at time.Time, window models.ActivityWindow) models.HealthScore {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if window.Empty() || !hasSignal(window) {
		return models.HealthScore{
			Repo:           repo,
			Timestamp:      at,
			LifecycleStage: models.StageEmbryonic,
		}
	}

	score := models.HealthScore{
		Repo:                repo,
		Timestamp:           at,
		ActivityScore:       activityScore(window),
		DiversityScore:      diversityScore(window),
		ResponseTimeScore:   responseTimeScore(window),
		CodeQualityScore:    codeQualityScore(window),
		DocumentationScore:  documentationScore(),
		CommunityAtmosphere: communityAtmosphereScore(window),
	}
	score.OverallScore = s.weights.Activity*score.ActivityScore +
		s.weights.Diversity*score.DiversityScore +
		s.weights.ResponseTime*score.ResponseTimeScore +
		s.weights.CodeQuality*score.CodeQualityScore +
		s.weights.Documentation*score.DocumentationScore +
		s.weights.CommunityAtmosphere*score.CommunityAtmosphere
	score.LifecycleStage = classifyLifecycle(window)

	return score
}

// hasSignal reports whether any observation in the window is non-zero.
func hasSignal(window models.ActivityWindow) bool {
	for _, sample := range window.Samples {
		for _, v := range sample.Values {
			if v != 0 {
				return true
			}
		}
	}
	return false
}

// activityScore combines commit, PR, and issue volume against the healthy
// baselines, capped per component.
func activityScore(window models.ActivityWindow) float64 {
	commits := math.Min(window.Sum(models.MetricCommits)/activityCommitCap, 1) * activityCommitPts
	prs := math.Min(window.Sum(models.MetricPullRequests)/activityPRCap, 1) * activityPRPts
	issues := math.Min(window.Sum(models.MetricIssuesOpened)/activityIssueCap, 1) * activityIssuePts
	return clamp(commits + prs + issues)
}

// diversityScore normalizes the average active-contributor count against
// the healthy baseline.
func diversityScore(window models.ActivityWindow) float64 {
	avg := stat.Mean(window.Series(models.MetricActiveContributors), nil)
	return clamp(math.Min(avg/diversityBaseline, 1) * 100)
}

// responseTimeScore maps average issue response hours onto a piecewise
// line: 100 at or under 24h, 0 at or over 168h. Days with no recorded
// response time do not count; with no data at all the score is neutral.
func responseTimeScore(window models.ActivityWindow) float64 {
	var times []float64
	for _, sample := range window.Samples {
		if v := sample.Get(models.MetricIssueResponseTime); v > 0 {
			times = append(times, v)
		}
	}
	if len(times) == 0 {
		return neutralScore
	}

	avg := stat.Mean(times, nil)
	switch {
	case avg <= responseFloorHours:
		return 100
	case avg >= responseCeilHours:
		return 0
	default:
		return clamp(100 - (avg-responseFloorHours)/(responseCeilHours-responseFloorHours)*100)
	}
}

// codeQualityScore is a PR-to-commit ratio proxy; a real quality signal is
// an explicit non-goal. The healthy band is 20-50% of commits via PR.
func codeQualityScore(window models.ActivityWindow) float64 {
	commits := window.Sum(models.MetricCommits)
	if commits == 0 {
		return neutralScore
	}
	ratio := window.Sum(models.MetricPullRequests) / commits
	switch {
	case ratio >= prRatioHealthyLow && ratio <= prRatioHealthyHigh:
		return 100
	case ratio < prRatioHealthyLow:
		return clamp(ratio / prRatioHealthyLow * 100)
	default:
		return clamp(100 - (ratio-prRatioHealthyHigh)*100)
	}
}

// documentationScore is a static neutral-positive placeholder; no real
// documentation signal is computed.
func documentationScore() float64 {
	return neutralPositive
}

// communityAtmosphereScore uses the issue closure rate as proxy, neutral
// when no issues were opened in the window.
func communityAtmosphereScore(window models.ActivityWindow) float64 {
	opened := window.Sum(models.MetricIssuesOpened)
	if opened == 0 {
		return neutralPositive
	}
	closed := window.Sum(models.MetricIssuesClosed)
	return clamp(math.Min(closed/opened/closureRateHealthy, 1) * 100)
}

// classifyLifecycle walks the precedence ladder: embryonic, growth,
// decline, mature. First match wins, so a tiny recent contributor pool
// classifies embryonic even when activity is growing.
func classifyLifecycle(window models.ActivityWindow) models.LifecycleStage {
	samples := window.Samples
	if len(samples) < 2 {
		return models.StageEmbryonic
	}

	recentStart := len(samples) - recentPeriodSamples
	if recentStart < 0 {
		recentStart = 0
	}
	recent := samples[recentStart:]

	var older []models.Sample
	if len(samples) >= 2*recentPeriodSamples {
		older = samples[:len(samples)-recentPeriodSamples]
	} else {
		older = samples[:len(samples)/2]
	}

	recentActivity := meanOf(recent, models.MetricCommits)
	olderActivity := meanOf(older, models.MetricCommits)
	recentContribs := meanOf(recent, models.MetricActiveContributors)
	olderContribs := meanOf(older, models.MetricActiveContributors)

	switch {
	case recentContribs < embryonicContributors:
		return models.StageEmbryonic
	case recentActivity > olderActivity*growthActivityRatio && recentContribs > olderContribs*growthContribRatio:
		return models.StageGrowth
	case recentActivity < olderActivity*declineActivityRatio:
		return models.StageDecline
	default:
		return models.StageMature
	}
}

func meanOf(samples []models.Sample, metric string) float64 {
	if len(samples) == 0 {
		return 0
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Get(metric)
	}
	return stat.Mean(values, nil)
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
