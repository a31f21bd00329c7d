package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/common"
	"github.com/lexfield/docpipe/internal/ocr"
)

// pageSource is one page image to recognize. temp marks images the page loop
// owns and deletes after recognition; a direct image upload is the caller's
// file and is left alone.
type pageSource struct {
	path string
	temp bool
}

// recognizePages runs the OCR loop over the page images in order. A failed
// page is logged and skipped; the job fails only when no page yields text.
// Returns joined text, mean confidence over recognized pages, and the total
// page count including failed pages.
func (p *Processor) recognizePages(ctx context.Context, req Request, sources []pageSource, res *Result, logf func(string, ...any)) (string, float64, int, error) {
	if p.deps.Engines == nil {
		return "", 0, 0, fmt.Errorf("no ocr engine factory configured: %w", common.ErrInternal)
	}
	total := len(sources)

	var engine ocr.Engine
	defer func() {
		if engine == nil {
			return
		}
		if err := engine.Close(); err != nil {
			p.logger.Warn("ocr engine close failed", "document_id", req.DocumentID, "error", err)
		}
	}()

	var recognized []pageResult
	for i, src := range sources {
		pageNum := i + 1
		if err := ctx.Err(); err != nil {
			return "", 0, 0, err
		}
		// 10% at the first page, approaching 80% at the last
		pct := 10 + (i*70)/total
		p.emit(req.DocumentID, constants.StageOCR, pct,
			fmt.Sprintf("recognizing page %d of %d", pageNum, total), pageNum, total)

		if engine == nil {
			var err error
			engine, err = p.deps.Engines()
			if err != nil {
				return "", 0, 0, fmt.Errorf("%w: %v", common.ErrWorkerInit, err)
			}
		}

		page, err := p.recognizeOne(ctx, engine, req.Options, src.path)
		if src.temp {
			if rmErr := os.Remove(src.path); rmErr != nil {
				p.logger.Warn("failed to remove page image", "path", src.path, "error", rmErr)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, 0, ctx.Err()
			}
			logf("page %d failed: %v", pageNum, err)
			p.logger.Warn("page recognition failed",
				"document_id", req.DocumentID, "page", pageNum, "error", err)
			continue
		}
		recognized = append(recognized, pageResult{
			PageNumber: pageNum,
			Text:       page.Text,
			Confidence: page.Confidence,
		})
	}

	if len(recognized) == 0 {
		return "", 0, 0, fmt.Errorf("%d pages attempted: %w", total, common.ErrNoTextExtracted)
	}
	if failed := total - len(recognized); failed > 0 {
		logf("%d of %d pages failed recognition", failed, total)
	}

	texts := make([]string, len(recognized))
	sum := 0.0
	for i, pr := range recognized {
		texts[i] = pr.Text
		sum += pr.Confidence
	}
	return strings.Join(texts, "\n\n"), sum / float64(len(recognized)), total, nil
}

// recognizeOne handles a single page image: optional enhancement, optional
// per-page deadline, and the per-page retry budget.
func (p *Processor) recognizeOne(ctx context.Context, engine ocr.Engine, opts Options, imagePath string) (ocr.PageText, error) {
	attempts := 1
	if opts.RetryFailedPages && opts.MaxRetries > 0 {
		attempts += opts.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return ocr.PageText{}, err
		}
		page, err := p.recognizeAttempt(ctx, engine, opts, imagePath)
		if err == nil {
			return page, nil
		}
		lastErr = err
	}
	return ocr.PageText{}, lastErr
}

func (p *Processor) recognizeAttempt(ctx context.Context, engine ocr.Engine, opts Options, imagePath string) (ocr.PageText, error) {
	if p.deps.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deps.PageTimeout)
		defer cancel()
	}

	path := imagePath
	if opts.EnhanceImage {
		enhanced, err := p.deps.Enhancer.Enhance(ctx, imagePath)
		if err != nil {
			return ocr.PageText{}, fmt.Errorf("enhance page image: %w", err)
		}
		path = enhanced
	}

	page, err := engine.Recognize(ctx, path)
	if err != nil {
		return ocr.PageText{}, err
	}
	page.Confidence = clampConfidence(page.Confidence)
	return page, nil
}
