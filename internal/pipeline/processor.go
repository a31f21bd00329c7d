package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/classify"
	"github.com/lexfield/docpipe/internal/common"
	"github.com/lexfield/docpipe/internal/embed"
	"github.com/lexfield/docpipe/internal/extract"
	"github.com/lexfield/docpipe/internal/ocr"
	"github.com/lexfield/docpipe/internal/progress"
	"github.com/lexfield/docpipe/internal/textproc"
)

// nativeTextThreshold is the minimum character count for a PDF text layer to
// be trusted. At or below it the document is treated as scanned and OCR'd.
const nativeTextThreshold = 100

// Request identifies one document to process.
type Request struct {
	DocumentID string
	FilePath   string
	MimeType   string
	Options    Options
}

// Rasterizer renders a paged document into per-page images. The cleanup
// function removes the job's temporary directory and is non-nil whenever
// any output may exist.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) (pages []string, cleanup func(), err error)
}

// ImagePreprocessor adjusts a page image before recognition and returns the
// path to feed the engine. It may return its input unchanged.
type ImagePreprocessor interface {
	Enhance(ctx context.Context, imagePath string) (string, error)
}

type noopPreprocessor struct{}

func (noopPreprocessor) Enhance(_ context.Context, imagePath string) (string, error) {
	return imagePath, nil
}

// Deps are the processor's collaborators. Zero values get sensible defaults
// except Raster and Engines, which the OCR path requires.
type Deps struct {
	PDF         extract.NativeExtractor
	Text        extract.NativeExtractor
	Word        extract.NativeExtractor
	Raster      Rasterizer
	Engines     ocr.Factory
	Classifier  classify.Classifier
	Entities    classify.EntityExtractor
	Embedder    embed.Embedder // nil disables embedding generation
	Enhancer    ImagePreprocessor
	Publisher   *progress.Publisher
	PageTimeout time.Duration // 0 = no per-page deadline
}

// Processor runs one document through extraction, recognition and analysis.
// Safe for concurrent use; each job gets its own OCR engine.
type Processor struct {
	deps   Deps
	logger *slog.Logger
}

func NewProcessor(deps Deps, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.PDF == nil {
		deps.PDF = extract.NewPDFExtractor(logger)
	}
	if deps.Text == nil {
		deps.Text = extract.NewTextExtractor()
	}
	if deps.Word == nil {
		deps.Word = extract.NewWordExtractor(logger)
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.NewKeywordClassifier(nil, logger)
	}
	if deps.Entities == nil {
		deps.Entities = classify.NewRegexEntityExtractor()
	}
	if deps.Enhancer == nil {
		deps.Enhancer = noopPreprocessor{}
	}
	if deps.Publisher == nil {
		deps.Publisher = progress.NewPublisher(logger)
	}
	return &Processor{deps: deps, logger: logger}
}

// Publisher exposes the progress publisher so callers can subscribe before
// submitting work.
func (p *Processor) Publisher() *progress.Publisher {
	return p.deps.Publisher
}

// ProcessDocument is the synchronous entry point for callers that don't need
// the scheduler.
func (p *Processor) ProcessDocument(ctx context.Context, documentID, filePath, mimeType string, opts Options) (*Result, error) {
	return p.Process(ctx, Request{
		DocumentID: documentID,
		FilePath:   filePath,
		MimeType:   mimeType,
		Options:    opts,
	})
}

// Process runs the full pipeline for one document. On success the returned
// Result is complete; page-level problems are recorded in its ProcessingLog.
// On error no Result is returned and a terminal error event has been emitted.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	format := constants.MapMimeToFormat(req.MimeType)
	if format == "" {
		// rejected before any I/O; no progress events for unsupported input
		return nil, fmt.Errorf("mime type %q: %w", req.MimeType, common.ErrUnsupportedFormat)
	}

	ctx = common.WithDocumentID(ctx, req.DocumentID)
	p.deps.Publisher.Reset(req.DocumentID)
	p.emit(req.DocumentID, constants.StagePreprocessing, 0, "processing started", 0, 0)

	res := &Result{DocumentID: req.DocumentID}
	logf := func(format string, args ...any) {
		res.ProcessingLog = append(res.ProcessingLog, fmt.Sprintf(format, args...))
	}
	logf("format detected: %s", format)

	text, confidence, pages, method, err := p.extractText(ctx, req, format, res, logf)
	if err != nil {
		return nil, p.fail(req.DocumentID, err)
	}

	p.emit(req.DocumentID, constants.StagePostprocessing, 85, "analyzing extracted text", 0, pages)

	text = textproc.Normalize(text)
	res.Text = text
	res.Confidence = clampConfidence(confidence)
	res.Pages = pages
	res.Metadata = Metadata{
		DocumentType:     p.deps.Classifier.Classify(text),
		Quality:          classify.Score(res.Confidence, len(text)),
		ExtractionMethod: method,
	}
	logf("classified as %s, quality %s", res.Metadata.DocumentType, res.Metadata.Quality)

	if req.Options.DetectLanguage {
		res.Metadata.Language = detectLanguage(text)
	}
	if req.Options.ExtractLegalEntities {
		ents := p.deps.Entities.Extract(text)
		res.LegalEntities = &ents
	}
	if req.Options.GenerateChunks {
		for i, piece := range textproc.Chunk(text, textproc.DefaultChunkSize, textproc.DefaultChunkOverlap) {
			res.Chunks = append(res.Chunks, Chunk{Index: i, Text: piece})
		}
		logf("generated %d chunks", len(res.Chunks))
	}

	if req.Options.GenerateEmbeddings && len(res.Chunks) > 0 {
		p.emit(req.DocumentID, constants.StageEmbedding, 95, "generating embeddings", 0, pages)
		p.embedChunks(ctx, res, logf)
	}

	res.ProcessingTime = time.Since(start)
	p.emit(req.DocumentID, constants.StageCompleted, 100, "processing completed", 0, pages)
	p.logger.Info("document processed",
		"document_id", req.DocumentID,
		"pages", res.Pages,
		"method", res.Metadata.ExtractionMethod,
		"confidence", res.Confidence,
		"duration", res.ProcessingTime)
	return res, nil
}

// extractText routes the document to native extraction or OCR and returns the
// raw text, aggregate confidence, page count and extraction method.
func (p *Processor) extractText(ctx context.Context, req Request, format constants.Format, res *Result, logf func(string, ...any)) (string, float64, int, constants.ExtractionMethod, error) {
	switch format {
	case constants.TEXT:
		nr, err := p.deps.Text.Extract(ctx, req.FilePath)
		if err != nil {
			return "", 0, 0, "", fmt.Errorf("read text file: %w", err)
		}
		logf("native text read, %d characters", len(nr.Text))
		return nr.Text, 100, atLeastOne(nr.Pages), constants.MethodNative, nil

	case constants.WORD:
		nr, err := p.deps.Word.Extract(ctx, req.FilePath)
		if err != nil {
			return "", 0, 0, "", fmt.Errorf("extract word document: %w", err)
		}
		logf("word document converted, %d characters", len(nr.Text))
		return nr.Text, 99, atLeastOne(nr.Pages), constants.MethodNative, nil

	case constants.PDF:
		nr, err := p.deps.PDF.Extract(ctx, req.FilePath)
		if err == nil && len(strings.TrimSpace(nr.Text)) > nativeTextThreshold {
			logf("pdf text layer accepted, %d characters across %d pages", len(nr.Text), nr.Pages)
			return nr.Text, 99, atLeastOne(nr.Pages), constants.MethodNative, nil
		}
		if err != nil {
			logf("pdf text layer unreadable (%v), falling back to ocr", err)
		} else {
			logf("pdf text layer too short (%d characters), falling back to ocr", len(strings.TrimSpace(nr.Text)))
		}
		if ctx.Err() != nil {
			return "", 0, 0, "", ctx.Err()
		}
		text, conf, pages, err := p.recognizePDF(ctx, req, res, logf)
		if err != nil {
			return "", 0, 0, "", err
		}
		return text, conf, pages, constants.MethodOCR, nil

	case constants.IMAGE:
		sources := []pageSource{{path: req.FilePath}}
		text, conf, pages, err := p.recognizePages(ctx, req, sources, res, logf)
		if err != nil {
			return "", 0, 0, "", err
		}
		return text, conf, pages, constants.MethodOCR, nil
	}
	return "", 0, 0, "", fmt.Errorf("format %q: %w", format, common.ErrUnsupportedFormat)
}

// recognizePDF rasterizes the document and OCRs the resulting page images.
func (p *Processor) recognizePDF(ctx context.Context, req Request, res *Result, logf func(string, ...any)) (string, float64, int, error) {
	if p.deps.Raster == nil {
		return "", 0, 0, fmt.Errorf("no rasterizer configured: %w", common.ErrInternal)
	}
	paths, cleanup, err := p.deps.Raster.Rasterize(ctx, req.FilePath)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("rasterize document: %w", err)
	}
	logf("rasterized into %d page images", len(paths))

	sources := make([]pageSource, len(paths))
	for i, path := range paths {
		sources[i] = pageSource{path: path, temp: true}
	}
	return p.recognizePages(ctx, req, sources, res, logf)
}

func (p *Processor) embedChunks(ctx context.Context, res *Result, logf func(string, ...any)) {
	if p.deps.Embedder == nil {
		logf("embedding generation skipped: no embedder configured")
		return
	}
	embedded := 0
	for i := range res.Chunks {
		vec, err := p.deps.Embedder.Embed(ctx, res.Chunks[i].Text)
		if err != nil {
			// non-fatal for the job
			logf("embedding failed for chunk %d: %v", i, err)
			p.logger.Warn("chunk embedding failed",
				"document_id", res.DocumentID, "chunk", i, "error", err)
			continue
		}
		res.Chunks[i].Embedding = vec
		embedded++
	}
	logf("embedded %d of %d chunks", embedded, len(res.Chunks))
}

// fail emits the terminal error event and passes the error through.
func (p *Processor) fail(documentID string, err error) error {
	msg := err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "cancelled"
	}
	p.emit(documentID, constants.StageError, 0, msg, 0, 0)
	p.logger.Error("document processing failed", "document_id", documentID, "error", err)
	return err
}

func (p *Processor) emit(documentID string, stage constants.Stage, pct int, msg string, page, total int) {
	p.deps.Publisher.Publish(progress.Event{
		DocumentID: documentID,
		Stage:      stage,
		Progress:   pct,
		Message:    msg,
		PageNumber: page,
		TotalPages: total,
	})
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
