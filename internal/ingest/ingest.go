// Package ingest reads materialized analysis inputs from disk: metric
// series and collaboration edge lists, in the shapes the ingestion
// pipeline delivers them. Fetching and storage belong to that pipeline,
// not to this module.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/osshealth/pulse/pkg/models"
)

// SeriesFile is a materialized bundle of date-keyed metric series for one
// repository, optionally scoped to a single contributor.
type SeriesFile struct {
	Repo        string                        `json:"repo"`
	Contributor string                        `json:"contributor,omitempty"`
	Series      map[string]map[string]float64 `json:"series"`
}

// LoadSeries reads a metric series bundle from a JSON file.
func LoadSeries(path string) (*SeriesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeriesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse series file %s: %w", path, err)
	}
	if f.Repo == "" {
		return nil, fmt.Errorf("series file %s: missing repo", path)
	}
	return &f, nil
}

// Window materializes the bundle into an activity window over [start, end).
func (f *SeriesFile) Window(start, end time.Time) (models.ActivityWindow, error) {
	return models.NewActivityWindow(start, end, f.Series)
}

// TrailingWindow materializes the bundle into a window covering the given
// number of days ending at the reference time.
func (f *SeriesFile) TrailingWindow(at time.Time, days int) (models.ActivityWindow, error) {
	return f.Window(at.AddDate(0, 0, -days), at)
}

// LoadEdges reads a collaboration edge list from a JSON file.
func LoadEdges(path string) ([]models.CollaborationEdge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var edges []models.CollaborationEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("parse edge file %s: %w", path, err)
	}
	for i, e := range edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("edge file %s: edge %d has empty endpoint", path, i)
		}
	}
	return edges, nil
}
