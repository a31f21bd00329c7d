package pipeline

// Options are the per-job processing flags. Immutable once a job is enqueued.
type Options struct {
	EnhanceImage         bool
	DetectLanguage       bool
	ExtractLegalEntities bool
	GenerateChunks       bool
	GenerateEmbeddings   bool
	RetryFailedPages     bool
	MaxRetries           int // per-page retry budget when RetryFailedPages is set
}

// DefaultOptions mirror the common foreground-processing call.
func DefaultOptions() Options {
	return Options{
		DetectLanguage:       true,
		ExtractLegalEntities: true,
		GenerateChunks:       true,
		MaxRetries:           2,
	}
}
