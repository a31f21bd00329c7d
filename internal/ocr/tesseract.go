package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Config holds the fixed per-job recognizer configuration.
type Config struct {
	Languages []string // trained data hints, default ["eng"]
	DPI       int      // resolution hint matching the rasterizer, default 300
}

// TesseractEngine implements Engine using the gosseract client.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine constructs and configures a Tesseract client: automatic
// page segmentation with orientation detection, preserved inter-word spacing,
// and a DPI hint matching the rasterizer output.
func NewTesseractEngine(cfg Config) (*TesseractEngine, error) {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	c := gosseract.NewClient()
	if err := c.SetLanguage(cfg.Languages...); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO_OSD); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetVariable("preserve_interword_spaces", "1"); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set preserve_interword_spaces: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(cfg.DPI)); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set dpi: %w", err)
	}
	return &TesseractEngine{client: c}, nil
}

// Recognize runs OCR on one page image. Confidence is the mean word
// confidence reported by the engine; zero when no words were found.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (PageText, error) {
	select {
	case <-ctx.Done():
		return PageText{}, ctx.Err()
	default:
	}
	if err := e.client.SetImage(imagePath); err != nil {
		return PageText{}, fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return PageText{}, fmt.Errorf("recognize text: %w", err)
	}
	conf := e.meanWordConfidence()
	return PageText{Text: strings.TrimSpace(text), Confidence: conf}, nil
}

func (e *TesseractEngine) meanWordConfidence() float64 {
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

// Close releases the underlying Tesseract client.
func (e *TesseractEngine) Close() error {
	return e.client.Close()
}

// NewFactory returns a Factory producing one TesseractEngine per job.
func NewFactory(cfg Config) Factory {
	return func() (Engine, error) {
		return NewTesseractEngine(cfg)
	}
}
