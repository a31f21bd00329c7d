package constants

// Stage is a progress stage reported while a document moves through the pipeline.
type Stage string

// Stable values (emitted to subscribers, stored in job status rows).
const (
	StagePreprocessing  Stage = "preprocessing"
	StageOCR            Stage = "ocr"
	StagePostprocessing Stage = "postprocessing"
	StageEmbedding      Stage = "embedding"
	StageCompleted      Stage = "completed"
	StageError          Stage = "error"
)

// JobStatus is the canonical status for a processing job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"    // admitted, waiting for a worker slot
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusCompleted JobStatus = "COMPLETED" // terminal success
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)

// ExtractionMethod records how text was obtained from the source file.
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native" // text layer read directly
	MethodOCR    ExtractionMethod = "ocr"    // recognized from rasterized pages
	MethodHybrid ExtractionMethod = "hybrid" // mix of both across pages
)

// Quality is the coarse confidence/length tier used for downstream triage.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)
