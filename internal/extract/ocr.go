package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ingesterrors "golang-statement-ingestion-service/pkg/errors"
	"golang-statement-ingestion-service/pkg/logger"

	"github.com/pkg/errors"
)

// Default OCR tuning. The DPI is twice the rasterizer's base resolution,
// which is enough for statement body text without ballooning the images.
const (
	DefaultOCRDPI         = 144
	DefaultOCRConcurrency = 4
)

// DefaultPSMModes are the tesseract page segmentation modes tried per
// page, in order: uniform block, column, full auto, sparse, sparse with
// orientation detection. The longest non-empty result wins.
var DefaultPSMModes = []string{"6", "4", "3", "11", "12"}

// OCRConfig holds configuration for the OCR strategy
type OCRConfig struct {
	// DPI is the rasterization resolution passed to pdftoppm.
	DPI int `json:"dpi"`

	// PSMModes are the tesseract segmentation modes tried per page.
	PSMModes []string `json:"psm_modes"`

	// MaxConcurrency bounds the number of pages processed in parallel.
	MaxConcurrency int `json:"max_concurrency"`

	// EnablePreprocessing retries empty pages through a grayscale and
	// threshold pass when imagemagick is installed.
	EnablePreprocessing bool `json:"enable_preprocessing"`
}

// DefaultOCRConfig returns a default OCR configuration
func DefaultOCRConfig() *OCRConfig {
	return &OCRConfig{
		DPI:                 DefaultOCRDPI,
		PSMModes:            append([]string(nil), DefaultPSMModes...),
		MaxConcurrency:      DefaultOCRConcurrency,
		EnablePreprocessing: true,
	}
}

// Validate validates the OCR configuration
func (c *OCRConfig) Validate() error {
	if c.DPI < 72 {
		return errors.New("dpi must be at least 72")
	}
	if len(c.PSMModes) == 0 {
		return errors.New("at least one PSM mode is required")
	}
	if c.MaxConcurrency < 1 {
		return errors.New("max concurrency must be at least 1")
	}
	return nil
}

// Clone returns a deep copy of the configuration
func (c *OCRConfig) Clone() *OCRConfig {
	clone := *c
	clone.PSMModes = append([]string(nil), c.PSMModes...)
	return &clone
}

// commandRunner abstracts external tool execution so tests can run the
// strategy without poppler and tesseract installed.
type commandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s failed: %s", name, strings.TrimSpace(string(output)))
	}
	return nil
}

// OCRStrategy rasterizes the document with pdftoppm and recognizes each
// page image with tesseract, trying several segmentation modes and
// keeping the longest result. Pages run in parallel but the output
// preserves page order.
type OCRStrategy struct {
	config *OCRConfig
	runner commandRunner
	log    logger.Logger
}

// NewOCRStrategy creates an OCR strategy
func NewOCRStrategy(config *OCRConfig, log logger.Logger) *OCRStrategy {
	if config == nil {
		config = DefaultOCRConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &OCRStrategy{
		config: config,
		runner: execRunner{},
		log:    log.WithComponent("ocr"),
	}
}

// Name implements Strategy
func (s *OCRStrategy) Name() string {
	return "ocr"
}

// Extract implements Strategy
func (s *OCRStrategy) Extract(ctx context.Context, doc []byte) Attempt {
	attempt := Attempt{Strategy: s.Name()}

	if _, err := s.runner.LookPath("pdftoppm"); err != nil {
		attempt.Err = ingesterrors.ExtractionError(ingesterrors.CodeOCRUnavailable, "pdftoppm not found", err)
		return attempt
	}
	if _, err := s.runner.LookPath("tesseract"); err != nil {
		attempt.Err = ingesterrors.ExtractionError(ingesterrors.CodeOCRUnavailable, "tesseract not found", err)
		return attempt
	}

	workDir, err := os.MkdirTemp("", "ingest-ocr-*")
	if err != nil {
		attempt.Err = errors.Wrap(err, "create OCR work directory")
		return attempt
	}
	defer os.RemoveAll(workDir)

	docPath := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(docPath, doc, 0o600); err != nil {
		attempt.Err = errors.Wrap(err, "write OCR work copy")
		return attempt
	}

	images, err := s.rasterize(ctx, workDir, docPath)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	if len(images) == 0 {
		attempt.Err = errors.New("rasterization produced no page images")
		return attempt
	}

	pages := s.recognizePages(ctx, workDir, images)
	attempt.Text = strings.Join(pages, "\n\n")
	return attempt
}

// rasterize renders each document page to a PNG and returns the image
// paths in page order.
func (s *OCRStrategy) rasterize(ctx context.Context, workDir, docPath string) ([]string, error) {
	err := s.runner.Run(ctx, workDir, "pdftoppm",
		"-r", fmt.Sprintf("%d", s.config.DPI), "-png", docPath, "page")
	if err != nil {
		return nil, errors.Wrap(err, "rasterize document")
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, errors.Wrap(err, "list page images")
	}

	var images []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "page") && strings.HasSuffix(name, ".png") {
			images = append(images, filepath.Join(workDir, name))
		}
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(images)
	return images, nil
}

// recognizePages runs OCR over the page images with bounded parallelism.
// Results land in an indexed slice, so output order matches page order
// regardless of completion order.
func (s *OCRStrategy) recognizePages(ctx context.Context, workDir string, images []string) []string {
	pages := make([]string, len(images))
	sem := make(chan struct{}, s.config.MaxConcurrency)

	var wg sync.WaitGroup
	for i, image := range images {
		wg.Add(1)
		go func(i int, image string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pages[i] = s.recognizePage(ctx, workDir, image, i)
		}(i, image)
	}
	wg.Wait()

	return pages
}

// recognizePage tries every configured segmentation mode against the
// page image and keeps the longest non-empty result. When every mode
// comes back empty and preprocessing is enabled, the image is cleaned up
// and retried once.
func (s *OCRStrategy) recognizePage(ctx context.Context, workDir, image string, pageIndex int) string {
	best := ""
	for _, psm := range s.config.PSMModes {
		if ctx.Err() != nil {
			return best
		}

		text, err := s.runTesseract(ctx, workDir, image, psm, pageIndex)
		if err != nil {
			s.log.WithError(err).WithFields(logger.Fields{
				"page": pageIndex + 1,
				"psm":  psm,
			}).Debug("Tesseract pass failed")
			continue
		}
		if len(strings.TrimSpace(text)) > len(strings.TrimSpace(best)) {
			best = text
		}
	}

	if strings.TrimSpace(best) == "" && s.config.EnablePreprocessing {
		best = s.retryPreprocessed(ctx, workDir, image, pageIndex)
	}

	return best
}

// runTesseract recognizes one image with one segmentation mode and
// returns the produced text.
func (s *OCRStrategy) runTesseract(ctx context.Context, workDir, image, psm string, pageIndex int) (string, error) {
	outBase := filepath.Join(workDir, fmt.Sprintf("out-%d-%s", pageIndex, psm))
	err := s.runner.Run(ctx, workDir, "tesseract", image, outBase, "-l", "eng", "--psm", psm)
	if err != nil {
		return "", err
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", errors.Wrap(err, "read tesseract output")
	}
	return string(text), nil
}

// retryPreprocessed converts the image to grayscale with a hard
// threshold and runs one more recognition pass. Scanned statements with
// colored backgrounds often only come through after this.
func (s *OCRStrategy) retryPreprocessed(ctx context.Context, workDir, image string, pageIndex int) string {
	if _, err := s.runner.LookPath("magick"); err != nil {
		return ""
	}

	processed := filepath.Join(workDir, fmt.Sprintf("clean-%d.png", pageIndex))
	err := s.runner.Run(ctx, workDir, "magick", image,
		"-colorspace", "Gray", "-threshold", "50%", processed)
	if err != nil {
		s.log.WithError(err).WithField("page", pageIndex+1).Debug("Image preprocessing failed")
		return ""
	}

	text, err := s.runTesseract(ctx, workDir, processed, s.config.PSMModes[0], pageIndex)
	if err != nil {
		return ""
	}
	return text
}
