package model

import "time"

// Tier thresholds. Membership is score-threshold based and superset-inclusive:
// high ⊆ medium ⊆ all.
const (
	TierHighThreshold   = 0.8
	TierMediumThreshold = 0.6
)

// Tiers partitions standardized pairs by quality score.
type Tiers struct {
	High   []TrainingPair
	Medium []TrainingPair
	All    []TrainingPair
}

// DatasetStats summarizes a dataset build.
type DatasetStats struct {
	OriginalPairs int     `json:"original_qa_pairs"`
	FinalPairs    int     `json:"final_qa_pairs"`
	HighPairs     int     `json:"high_quality_pairs"`
	MediumPairs   int     `json:"medium_quality_pairs"`
	RetentionRate float64 `json:"quality_retention_rate"`
}

// ProcessingInfo records the policy flags a dataset was built with.
type ProcessingInfo struct {
	QualityThreshold float64 `json:"quality_threshold"`
	Deduplication    bool    `json:"deduplication"`
	Standardization  bool    `json:"format_standardization"`
}

// DatasetMeta is the persisted metadata record for one dataset build.
// Immutable once persisted. A failed build carries Success=false and Error;
// the caller never sees a raised error.
type DatasetMeta struct {
	Name       string            `json:"dataset_name"`
	CreatedAt  time.Time         `json:"creation_timestamp"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Stats      DatasetStats      `json:"statistics"`
	Files      map[string]string `json:"dataset_files"` // tier name → file path
	Processing ProcessingInfo    `json:"processing_info"`
}
