// Package ocr shells out to tesseract and poppler's pdftotext to recover
// text from scanned pages. It is a collaborator of the pipeline, not part of
// it: callers decide when a page's native text is too weak to trust.
package ocr

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config locates the external binaries and bounds their runtime.
type Config struct {
	Tesseract string // default "tesseract"
	Pdftotext string // default "pdftotext"
	Language  string // tesseract language pack, default "eng"
	Timeout   time.Duration
}

func (c *Config) defaults() {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Extractor runs OCR tools through a Runner.
type Extractor struct {
	cfg    Config
	runner Runner
}

// New returns an Extractor using the real exec runner.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, runner: execRunner{}}
}

// NewWithRunner returns an Extractor with a custom Runner, for tests.
func NewWithRunner(cfg Config, r Runner) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, runner: r}
}

// ImageToText OCRs a single page image. The image bytes are spooled to a
// temp file because tesseract reads from disk.
func (e *Extractor) ImageToText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}

	tmp, err := os.CreateTemp("", "claimsapi-ocr-*.img")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	// tesseract <img> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, tmp.Name(), "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 256))
	}
	return strings.TrimSpace(string(out)), nil
}

// PageText extracts the text of a single PDF page (1-based) with pdftotext.
// Used as a fallback when content-stream extraction yields too little.
func (e *Extractor) PageText(ctx context.Context, pdfPath string, pageNr int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	nr := strconv.Itoa(pageNr)
	// pdftotext -layout -enc UTF-8 -eol unix -f N -l N <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", nr, "-l", nr, pdfPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext page %d: %w (%s)", pageNr, err, truncate(string(errb), 256))
	}
	return string(out), nil
}
