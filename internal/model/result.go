package model

// Stage identifies the pipeline phase a failure occurred in.
type Stage string

const (
	StageResourceProcessing Stage = "resource_processing"
	StageQAGeneration       Stage = "qa_generation"
	StageDatasetBuilding    Stage = "dataset_building"
	StageUnknown            Stage = "unknown"
)

// ProcessingStats summarizes a successful run.
type ProcessingStats struct {
	ChunksProcessed  int `json:"chunks_processed"`
	PairsGenerated   int `json:"qa_pairs_generated"`
	FinalDatasetSize int `json:"final_dataset_size"`
}

// RunResult is the envelope every pipeline run returns. The caller always
// receives one of these, never a raw error; Stage pinpoints the failed phase.
type RunResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Stage   Stage  `json:"stage,omitempty"`

	ResourceMeta *ResourceMeta     `json:"resource_metadata,omitempty"`
	Stats        *ProcessingStats  `json:"processing_stats,omitempty"`
	Dataset      *DatasetMeta      `json:"dataset_metadata,omitempty"`
	Files        map[string]string `json:"dataset_files,omitempty"`
}

// Failure builds a failed RunResult for the given stage.
func Failure(stage Stage, msg string) *RunResult {
	return &RunResult{Success: false, Error: msg, Stage: stage}
}
