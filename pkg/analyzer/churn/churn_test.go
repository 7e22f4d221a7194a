package churn

import (
	"testing"
	"time"

	"github.com/osshealth/pulse/pkg/analyzer/network"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitWindow synthesizes a daily commit series. values is called with the
// day index (0 = oldest).
func commitWindow(t *testing.T, days int, values func(i int) float64) models.ActivityWindow {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	commits := make(map[string]float64, days)
	for i := 0; i < days; i++ {
		commits[start.AddDate(0, 0, i).Format(models.DateLayout)] = values(i)
	}
	w, err := models.NewActivityWindow(start, start.AddDate(0, 0, days),
		map[string]map[string]float64{models.MetricCommits: commits})
	require.NoError(t, err)
	return w
}

func builtNetwork(t *testing.T, edges ...models.CollaborationEdge) *network.Analyzer {
	t.Helper()
	a := network.New()
	a.BuildNetwork(edges)
	return a
}

func TestPredict_WellFormed(t *testing.T) {
	p := New()
	window := commitWindow(t, 60, func(i int) float64 { return 3 })

	prediction := p.Predict("octocat/hello", "alice", window, nil)

	assert.Equal(t, "alice", prediction.Contributor)
	assert.Equal(t, "octocat/hello", prediction.Repo)
	assert.False(t, prediction.Timestamp.IsZero())
	assert.GreaterOrEqual(t, prediction.ChurnProbability, 0.0)
	assert.LessOrEqual(t, prediction.ChurnProbability, 1.0)
	assert.NotEmpty(t, prediction.RetentionSuggestions)
}

func TestPredict_ProbabilityIsWeightedSum(t *testing.T) {
	p := New()
	window := commitWindow(t, 60, func(i int) float64 { return 3 })

	prediction := p.Predict("octocat/hello", "alice", window, nil)

	want := weightBehaviorDecay*prediction.BehaviorDecay +
		weightMarginalization*prediction.NetworkMarginalization +
		weightTemporalAnomaly*prediction.TemporalAnomaly +
		weightEngagement*(1-prediction.CommunityEngagement)
	assert.InDelta(t, want, prediction.ChurnProbability, 1e-9)
}

func TestPredict_TemporalAnomalyTracksDecay(t *testing.T) {
	p := New()
	// Activity collapses in the recent half.
	window := commitWindow(t, 60, func(i int) float64 {
		if i < 30 {
			return 10
		}
		return 1
	})

	prediction := p.Predict("octocat/hello", "alice", window, nil)

	assert.InDelta(t, 0.9, prediction.BehaviorDecay, 1e-9)
	assert.InDelta(t, prediction.BehaviorDecay*temporalAnomalyFactor, prediction.TemporalAnomaly, 1e-9)
}

func TestBehaviorDecay_Neutrals(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		window := commitWindow(t, 10, func(i int) float64 { return 5 })
		assert.InDelta(t, neutralScore, behaviorDecay(window), 1e-9)
	})

	t.Run("silent older half", func(t *testing.T) {
		window := commitWindow(t, 60, func(i int) float64 {
			if i < 30 {
				return 0
			}
			return 5
		})
		assert.InDelta(t, neutralScore, behaviorDecay(window), 1e-9)
	})

	t.Run("growth clips to zero", func(t *testing.T) {
		window := commitWindow(t, 60, func(i int) float64 {
			if i < 30 {
				return 2
			}
			return 8
		})
		assert.InDelta(t, 0.0, behaviorDecay(window), 1e-9)
	})
}

func TestNetworkMarginalization(t *testing.T) {
	net := builtNetwork(t,
		models.CollaborationEdge{From: "hub", To: "a", Weight: 1},
		models.CollaborationEdge{From: "hub", To: "b", Weight: 1},
		models.CollaborationEdge{From: "hub", To: "c", Weight: 1},
	)

	t.Run("no graph is neutral", func(t *testing.T) {
		assert.InDelta(t, neutralScore, networkMarginalization("alice", nil), 1e-9)
	})

	t.Run("unbuilt analyzer is neutral", func(t *testing.T) {
		assert.InDelta(t, neutralScore, networkMarginalization("alice", network.New()), 1e-9)
	})

	t.Run("absent contributor is peripheral", func(t *testing.T) {
		assert.InDelta(t, absentMarginalization, networkMarginalization("ghost", net), 1e-9)
	})

	t.Run("central node scores low", func(t *testing.T) {
		hub := networkMarginalization("hub", net)
		leaf := networkMarginalization("a", net)
		assert.Less(t, hub, leaf)
		assert.InDelta(t, 0.0, hub, 1e-9)
	})
}

func TestRetentionSuggestions(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		got := retentionSuggestions(0.1, 0.2, 0.1, 0.6)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "appears healthy")
	})

	t.Run("all triggered in check order", func(t *testing.T) {
		got := retentionSuggestions(0.9, 0.9, 0.9, 0.1)
		require.Len(t, got, 4)
		assert.Contains(t, got[0], "declined significantly")
		assert.Contains(t, got[1], "isolated in the collaboration network")
		assert.Contains(t, got[2], "Unusual activity pattern")
		assert.Contains(t, got[3], "Low community engagement")
	})

	t.Run("thresholds are exclusive", func(t *testing.T) {
		got := retentionSuggestions(suggestDecayAbove, suggestMarginalizedAbove, suggestAnomalyAbove, suggestEngagementBelow)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "appears healthy")
	})
}

func TestPredict_AlertLevels(t *testing.T) {
	p := New()

	// Flat recent collapse with no graph: decay 0.9, marginalization 0.5,
	// anomaly 0.72, engagement 0.6.
	window := commitWindow(t, 60, func(i int) float64 {
		if i < 30 {
			return 10
		}
		return 1
	})
	prediction := p.Predict("octocat/hello", "alice", window, nil)
	assert.InDelta(t, 0.6850, prediction.ChurnProbability, 1e-4)
	assert.Equal(t, models.AlertOrange, prediction.AlertLevel)

	// Custom thresholds shift the same probability into red.
	strict := New(WithAlertThresholds(models.AlertThresholds{Yellow: 0.2, Orange: 0.4, Red: 0.6}))
	prediction = strict.Predict("octocat/hello", "alice", window, nil)
	assert.Equal(t, models.AlertRed, prediction.AlertLevel)
}
