package pipeline

import (
	"context"
	"log/slog"
	"strings"
)

// labelKeywords associates each document type with its keyword evidence:
// case-insensitive phrases whose presence in the combined document text
// counts one point toward that label. Iterated in DocTypes order.
var labelKeywords = map[DocType][]string{
	DocTypeInvoice:          {"invoice", "total", "amount due", "vat", "subtotal"},
	DocTypeClaimForm:        {"claim", "policy", "claimant", "date of loss"},
	DocTypeInspectionReport: {"inspection", "inspector", "assessed", "odometer", "vehicle"},
	DocTypeReceipt:          {"receipt", "paid", "change", "method of payment"},
}

// fallbackConfidence is assigned when no keyword matched at all and the label
// had to be guessed from page count alone.
const fallbackConfidence = 0.55

// maxConfidence caps classifier output below certainty.
const maxConfidence = 0.98

// ImageOCR recovers text from a page image. Used only when a document has no
// native text at all.
type ImageOCR interface {
	ImageToText(ctx context.Context, image []byte) (string, error)
}

// Classifier assigns a document type by counting keyword evidence. It never
// fails: with zero keyword hits it degrades to a page-count heuristic.
type Classifier struct {
	Logger *slog.Logger
	OCR    ImageOCR // optional; nil disables the no-text OCR fallback
}

// NewClassifier returns a Classifier. The OCR collaborator may be nil.
func NewClassifier(logger *slog.Logger, ocr ImageOCR) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{Logger: logger, OCR: ocr}
}

// Classify scores the combined text of one logical document against every
// label's keyword list and returns the best label with a confidence in
// (0, 0.98]. Ties resolve to the first label in DocTypes order.
func (c *Classifier) Classify(ctx context.Context, images [][]byte, texts []string) (DocType, float64) {
	combined := joinNonEmpty(texts, " ")
	if combined == "" && len(images) > 0 && c.OCR != nil {
		combined = c.ocrImages(ctx, images)
	}
	combinedLow := strings.ToLower(combined)

	scores := make(map[DocType]int, len(DocTypes))
	for _, label := range DocTypes {
		for _, kw := range labelKeywords[label] {
			if strings.Contains(combinedLow, kw) {
				scores[label]++
			}
		}
	}

	best := DocTypes[0]
	totalHits := 0
	for _, label := range DocTypes {
		if scores[label] > scores[best] {
			best = label
		}
		totalHits += scores[label]
	}

	if totalHits == 0 {
		// No evidence at all: multi-page scans are most often inspection
		// reports, single pages claim forms.
		best = DocTypeClaimForm
		if len(images) > 1 {
			best = DocTypeInspectionReport
		}
		return best, fallbackConfidence
	}

	conf := 0.5 + float64(scores[best])/float64(totalHits)
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return best, conf
}

func (c *Classifier) ocrImages(ctx context.Context, images [][]byte) string {
	parts := make([]string, 0, len(images))
	for i, img := range images {
		txt, err := c.OCR.ImageToText(ctx, img)
		if err != nil {
			c.Logger.Warn("classifier.ocr.failed", "image_index", i, "error", err)
			continue
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, "\n")
}

// joinNonEmpty concatenates the non-empty entries of texts with sep.
func joinNonEmpty(texts []string, sep string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}
