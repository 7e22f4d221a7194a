package models

import "time"

// AlertLevel grades churn risk. Levels are totally ordered:
// green < yellow < orange < red.
type AlertLevel string

const (
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertOrange AlertLevel = "orange"
	AlertRed    AlertLevel = "red"
)

var alertRank = map[AlertLevel]int{
	AlertGreen:  0,
	AlertYellow: 1,
	AlertOrange: 2,
	AlertRed:    3,
}

// Rank returns the ordinal position of the level, green being lowest.
// Unknown levels rank below green.
func (a AlertLevel) Rank() int {
	if r, ok := alertRank[a]; ok {
		return r
	}
	return -1
}

// Cmp compares two levels by severity: -1 if a is less severe than b,
// 0 if equal, +1 if more severe.
func (a AlertLevel) Cmp(b AlertLevel) int {
	switch ra, rb := a.Rank(), b.Rank(); {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// AlertThresholds holds the lower bounds of the alert ladder. Each bound is
// inclusive: probability >= Red maps to red, else >= Orange to orange, else
// >= Yellow to yellow, else green.
type AlertThresholds struct {
	Yellow float64 `json:"yellow"`
	Orange float64 `json:"orange"`
	Red    float64 `json:"red"`
}

// DefaultAlertThresholds returns the standard 0.3/0.5/0.7 ladder.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{Yellow: 0.3, Orange: 0.5, Red: 0.7}
}

// AlertForProbability maps a churn probability onto the ladder.
func AlertForProbability(p float64, t AlertThresholds) AlertLevel {
	switch {
	case p >= t.Red:
		return AlertRed
	case p >= t.Orange:
		return AlertOrange
	case p >= t.Yellow:
		return AlertYellow
	default:
		return AlertGreen
	}
}

// ChurnPrediction is one contributor churn assessment. Sub-scores and the
// overall probability lie in [0, 1]. Instances are created per prediction
// and never mutated.
type ChurnPrediction struct {
	Contributor            string     `json:"contributor"`
	Repo                   string     `json:"repo"`
	Timestamp              time.Time  `json:"timestamp"`
	ChurnProbability       float64    `json:"churn_probability"`
	AlertLevel             AlertLevel `json:"alert_level"`
	BehaviorDecay          float64    `json:"behavior_decay"`
	NetworkMarginalization float64    `json:"network_marginalization"`
	TemporalAnomaly        float64    `json:"temporal_anomaly"`
	CommunityEngagement    float64    `json:"community_engagement"`
	RetentionSuggestions   []string   `json:"retention_suggestions"`
}
