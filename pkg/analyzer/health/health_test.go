package health

import (
	"math"
	"testing"
	"time"

	"github.com/osshealth/pulse/pkg/models"
)

// buildWindow synthesizes a daily window of the given length. values is
// called with the day index (0 = oldest) and returns that day's metrics.
func buildWindow(t *testing.T, days int, values func(i int) map[string]float64) models.ActivityWindow {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(map[string]map[string]float64)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(models.DateLayout)
		for metric, v := range values(i) {
			if series[metric] == nil {
				series[metric] = make(map[string]float64)
			}
			series[metric][date] = v
		}
	}
	w, err := models.NewActivityWindow(start, start.AddDate(0, 0, days), series)
	if err != nil {
		t.Fatalf("buildWindow: %v", err)
	}
	return w
}

func steadyWindow(t *testing.T, days int) models.ActivityWindow {
	t.Helper()
	return buildWindow(t, days, func(i int) map[string]float64 {
		return map[string]float64{
			models.MetricCommits:            2,
			models.MetricPullRequests:       0.5,
			models.MetricIssuesOpened:       0.5,
			models.MetricIssuesClosed:       0.4,
			models.MetricActiveContributors: 8,
			models.MetricIssueResponseTime:  48,
		}
	})
}

func TestNew_DefaultWeights(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.weights.Activity != 0.25 {
		t.Errorf("default activity weight = %f, want 0.25", s.weights.Activity)
	}
	if s.windowDays != DefaultWindowDays {
		t.Errorf("windowDays = %d, want %d", s.windowDays, DefaultWindowDays)
	}
}

func TestNew_InvalidWeights(t *testing.T) {
	_, err := New(WithWeights(Weights{Activity: 0.9, Diversity: 0.9}))
	if err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestAssess_ScoresInRange(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	score := s.Assess("octocat/hello", time.Now(), steadyWindow(t, 90))

	dims := map[string]float64{
		"activity":      score.ActivityScore,
		"diversity":     score.DiversityScore,
		"response time": score.ResponseTimeScore,
		"code quality":  score.CodeQualityScore,
		"documentation": score.DocumentationScore,
		"atmosphere":    score.CommunityAtmosphere,
		"overall":       score.OverallScore,
	}
	for name, v := range dims {
		if v < 0 || v > 100 {
			t.Errorf("%s score = %f, outside [0, 100]", name, v)
		}
	}
}

func TestAssess_OverallIsWeightedSum(t *testing.T) {
	weights := Weights{
		Activity:            0.4,
		Diversity:           0.2,
		ResponseTime:        0.1,
		CodeQuality:         0.1,
		Documentation:       0.1,
		CommunityAtmosphere: 0.1,
	}
	s, err := New(WithWeights(weights))
	if err != nil {
		t.Fatal(err)
	}
	score := s.Assess("octocat/hello", time.Now(), steadyWindow(t, 90))

	want := weights.Activity*score.ActivityScore +
		weights.Diversity*score.DiversityScore +
		weights.ResponseTime*score.ResponseTimeScore +
		weights.CodeQuality*score.CodeQualityScore +
		weights.Documentation*score.DocumentationScore +
		weights.CommunityAtmosphere*score.CommunityAtmosphere
	if math.Abs(score.OverallScore-want) > 1e-6 {
		t.Errorf("overall = %f, want weighted sum %f", score.OverallScore, want)
	}
}

func TestAssess_FlatZeroWindow(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	window := buildWindow(t, 90, func(i int) map[string]float64 {
		return map[string]float64{
			models.MetricCommits:            0,
			models.MetricActiveContributors: 0,
		}
	})

	score := s.Assess("octocat/ghost", time.Now(), window)
	if score.OverallScore != 0 {
		t.Errorf("overall = %f, want 0 for a fully silent window", score.OverallScore)
	}
	if score.LifecycleStage != models.StageEmbryonic {
		t.Errorf("stage = %s, want embryonic", score.LifecycleStage)
	}
}

func TestAssess_EmptyWindow(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	score := s.Assess("octocat/empty", time.Now(), models.ActivityWindow{})
	if score.OverallScore != 0 || score.LifecycleStage != models.StageEmbryonic {
		t.Errorf("empty window: overall = %f, stage = %s; want 0 and embryonic",
			score.OverallScore, score.LifecycleStage)
	}
}

func TestResponseTimeScore(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  float64
	}{
		{"fast", 12, 100},
		{"floor", 24, 100},
		{"ceiling", 168, 0},
		{"slow", 200, 0},
		{"midpoint", 96, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := buildWindow(t, 10, func(i int) map[string]float64 {
				return map[string]float64{models.MetricIssueResponseTime: tt.hours}
			})
			if got := responseTimeScore(window); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("responseTimeScore(%f) = %f, want %f", tt.hours, got, tt.want)
			}
		})
	}
}

func TestResponseTimeScore_NoData(t *testing.T) {
	window := buildWindow(t, 10, func(i int) map[string]float64 {
		return map[string]float64{models.MetricCommits: 1}
	})
	if got := responseTimeScore(window); got != neutralScore {
		t.Errorf("responseTimeScore with no data = %f, want %f", got, neutralScore)
	}
}

func TestCodeQualityScore_NoCommits(t *testing.T) {
	window := buildWindow(t, 10, func(i int) map[string]float64 {
		return map[string]float64{models.MetricPullRequests: 1}
	})
	if got := codeQualityScore(window); got != neutralScore {
		t.Errorf("codeQualityScore with zero commits = %f, want %f", got, neutralScore)
	}
}

func TestCommunityAtmosphereScore_NoIssues(t *testing.T) {
	window := buildWindow(t, 10, func(i int) map[string]float64 {
		return map[string]float64{models.MetricCommits: 1}
	})
	if got := communityAtmosphereScore(window); got != neutralPositive {
		t.Errorf("atmosphere with no issues = %f, want %f", got, neutralPositive)
	}
}

func TestClassifyLifecycle(t *testing.T) {
	growth := buildWindow(t, 90, func(i int) map[string]float64 {
		commits, contribs := 2.0, 5.0
		if i >= 60 {
			commits, contribs = 6.0, 10.0
		}
		return map[string]float64{
			models.MetricCommits:            commits,
			models.MetricActiveContributors: contribs,
		}
	})
	if got := classifyLifecycle(growth); got != models.StageGrowth {
		t.Errorf("growth window classified %s", got)
	}

	decline := buildWindow(t, 90, func(i int) map[string]float64 {
		commits := 10.0
		if i >= 60 {
			commits = 2.0
		}
		return map[string]float64{
			models.MetricCommits:            commits,
			models.MetricActiveContributors: 6,
		}
	})
	if got := classifyLifecycle(decline); got != models.StageDecline {
		t.Errorf("decline window classified %s", got)
	}

	mature := steadyWindow(t, 90)
	if got := classifyLifecycle(mature); got != models.StageMature {
		t.Errorf("steady window classified %s", got)
	}
}

// A tiny contributor pool wins over a growing activity trend.
func TestClassifyLifecycle_EmbryonicPrecedence(t *testing.T) {
	window := buildWindow(t, 90, func(i int) map[string]float64 {
		commits := 1.0
		if i >= 60 {
			commits = 10.0
		}
		return map[string]float64{
			models.MetricCommits:            commits,
			models.MetricActiveContributors: 2,
		}
	})
	if got := classifyLifecycle(window); got != models.StageEmbryonic {
		t.Errorf("sparse-contributor window classified %s, want embryonic", got)
	}
}

func TestClassifyLifecycle_TooFewSamples(t *testing.T) {
	window := buildWindow(t, 1, func(i int) map[string]float64 {
		return map[string]float64{models.MetricCommits: 5}
	})
	if got := classifyLifecycle(window); got != models.StageEmbryonic {
		t.Errorf("single-sample window classified %s, want embryonic", got)
	}
}
