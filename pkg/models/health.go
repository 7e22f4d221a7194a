package models

import "time"

// LifecycleStage classifies a project's activity trajectory.
type LifecycleStage string

const (
	StageEmbryonic LifecycleStage = "embryonic"
	StageGrowth    LifecycleStage = "growth"
	StageMature    LifecycleStage = "mature"
	StageDecline   LifecycleStage = "decline"
	StageRevival   LifecycleStage = "revival"
)

// HealthScore is one repository health assessment. All dimension scores and
// the overall score lie in [0, 100]; the overall score is the weighted sum
// of the six dimensions. Instances are created per assessment and never
// mutated.
type HealthScore struct {
	Repo                string         `json:"repo"`
	Timestamp           time.Time      `json:"timestamp"`
	OverallScore        float64        `json:"overall_score"`
	ActivityScore       float64        `json:"activity_score"`
	DiversityScore      float64        `json:"diversity_score"`
	ResponseTimeScore   float64        `json:"response_time_score"`
	CodeQualityScore    float64        `json:"code_quality_score"`
	DocumentationScore  float64        `json:"documentation_score"`
	CommunityAtmosphere float64        `json:"community_atmosphere_score"`
	LifecycleStage      LifecycleStage `json:"lifecycle_stage"`
}
