package model

import "time"

// SourceType classifies where a resource came from. Detection happens once at
// ingestion; every downstream stage trusts the assigned type.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceWeb  SourceType = "web"
	SourceChat SourceType = "chat"

	// SourceAuto asks the ingestor to detect the type itself.
	SourceAuto SourceType = "auto"
)

// Valid reports whether t is a concrete source type (auto excluded).
func (t SourceType) Valid() bool {
	switch t {
	case SourceText, SourceFile, SourceWeb, SourceChat:
		return true
	}
	return false
}

// ProcessingStatus marks whether extraction succeeded for a resource.
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusError   ProcessingStatus = "error"
)

// ResourceMeta carries extraction metadata alongside the content.
type ResourceMeta struct {
	Title         string            `json:"title,omitempty"`
	Author        string            `json:"author,omitempty"`
	SourceDetail  string            `json:"source_detail,omitempty"` // file type, platform, content type
	ContentLength int               `json:"content_length"`
	ChunkCount    int               `json:"chunks_count"`
	ProcessedAt   time.Time         `json:"processed_at"`
	Status        ProcessingStatus  `json:"processing_status"`
	ErrorDetail   string            `json:"error_message,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"` // extractor-specific fields (duration, channel, ...)
}

// Resource is one ingested unit of source content. Immutable after creation;
// owned by the pipeline run that created it.
type Resource struct {
	ID       string       `json:"resource_id"`
	Type     SourceType   `json:"resource_type"`
	Locator  string       `json:"original_resource"`
	Content  string       `json:"content"`
	Metadata ResourceMeta `json:"metadata"`
}

// Failed reports whether extraction ended in an error envelope.
func (r *Resource) Failed() bool {
	return r.Metadata.Status == StatusError
}

// Chunk is a bounded, overlap-aware slice of a Resource's text. Offsets are
// word indices into the parent content. Chunks are never mutated after
// creation.
type Chunk struct {
	ResourceID string       `json:"resource_id"`
	Seq        int          `json:"chunk_id"`
	Content    string       `json:"content"`
	StartWord  int          `json:"chunk_start"`
	EndWord    int          `json:"chunk_end"`
	Metadata   ResourceMeta `json:"metadata"`
}
