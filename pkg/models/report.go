package models

import "time"

// AnalysisReport aggregates one full repository analysis: health
// assessment, network structure, and churn predictions for the key
// contributors.
type AnalysisReport struct {
	Repo            string            `json:"repo"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Health          *HealthScore      `json:"health,omitempty"`
	Network         *NetworkMetrics   `json:"network,omitempty"`
	KeyContributors []KeyContributor  `json:"key_contributors,omitempty"`
	Communities     *CommunityResult  `json:"communities,omitempty"`
	BusFactor       int               `json:"bus_factor"`
	Predictions     []ChurnPrediction `json:"churn_predictions,omitempty"`
}
