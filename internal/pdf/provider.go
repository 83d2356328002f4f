// Package pdf turns raw packet bytes into per-page features for the
// pipeline: cleaned text (with OCR fallback for weak pages), page image
// bytes with a content hash, and a semantic embedding per page.
package pdf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"claimsapi/internal/embed"
	"claimsapi/internal/pipeline"
)

// minNativeTextLen is the threshold below which a page's native text is
// considered too weak and OCR fallbacks kick in.
const minNativeTextLen = 25

// PageOCR is the slice of the OCR collaborator the provider needs.
type PageOCR interface {
	ImageToText(ctx context.Context, image []byte) (string, error)
	PageText(ctx context.Context, pdfPath string, pageNr int) (string, error)
}

// Provider builds pipeline.PageFeature values from packet bytes.
type Provider struct {
	Embedder embed.Embedder
	OCR      PageOCR // optional; nil disables OCR fallbacks
	Logger   *slog.Logger
}

// NewProvider wires a Provider.
func NewProvider(embedder embed.Embedder, pageOCR PageOCR, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{Embedder: embedder, OCR: pageOCR, Logger: logger}
}

// PageFeatures parses the packet and returns one feature per page, in page
// order. A packet that cannot be parsed at all is a fatal error; a page with
// weak or missing text is not.
func (p *Provider) PageFeatures(ctx context.Context, packet []byte) ([]pipeline.PageFeature, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(packet), conf)
	if err != nil {
		return nil, fmt.Errorf("read packet: %w", err)
	}
	if pctx.PageCount == 0 {
		return nil, nil
	}

	// pdftotext needs a file on disk; spool lazily, only if a page falls
	// back to it.
	var spooled string
	defer func() {
		if spooled != "" {
			os.Remove(spooled)
		}
	}()

	features := make([]pipeline.PageFeature, pctx.PageCount)
	texts := make([]string, pctx.PageCount)
	for nr := 1; nr <= pctx.PageCount; nr++ {
		text := cleanText(pageText(pctx, nr))
		image, hash := pageImage(pctx, nr)

		if len(text) < minNativeTextLen && p.OCR != nil {
			if len(image) > 0 {
				if ocrText, err := p.OCR.ImageToText(ctx, image); err == nil {
					if t := cleanText(ocrText); len(t) > len(text) {
						text = t
					}
				} else {
					p.Logger.Warn("provider.ocr.image_failed", "page", nr, "error", err)
				}
			}
			if len(text) < minNativeTextLen {
				if spooled == "" {
					spooled, err = spoolPacket(packet)
					if err != nil {
						p.Logger.Warn("provider.spool_failed", "error", err)
					}
				}
				if spooled != "" {
					if alt, err := p.OCR.PageText(ctx, spooled, nr); err == nil {
						if t := cleanText(alt); len(t) > len(text) {
							text = t
						}
					}
				}
			}
		}

		features[nr-1] = pipeline.PageFeature{
			Index:     nr - 1,
			Text:      text,
			Image:     image,
			ImageHash: hash,
		}
		texts[nr-1] = embed.PrepareText(text)
	}

	vecs, err := p.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed pages: %w", err)
	}
	for i := range features {
		features[i].Embedding = vecs[i]
	}
	return features, nil
}

// pageText extracts a page's text from its content stream. Failures yield
// an empty string; the OCR fallback chain takes over.
func pageText(pctx *pdfmodel.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// pageImage returns the page's first image stream plus a sha256 over all of
// the page's image streams. Two scans of the identical page carry identical
// image data, so equal hashes mark near-duplicate pages for the segmenter.
func pageImage(pctx *pdfmodel.Context, pageNr int) ([]byte, string) {
	if pctx.Optimize == nil {
		return nil, ""
	}
	objNrs := pdfcpu.ImageObjNrs(pctx, pageNr)
	if len(objNrs) == 0 {
		return nil, ""
	}

	var first []byte
	h := sha256.New()
	found := false
	for _, objNr := range objNrs {
		entry, ok := pctx.Table[objNr]
		if !ok || entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || len(sd.Raw) == 0 {
			continue
		}
		if first == nil {
			first = sd.Raw
		}
		h.Write(sd.Raw)
		found = true
	}
	if !found {
		return nil, ""
	}
	return first, hex.EncodeToString(h.Sum(nil))
}

// spoolPacket writes the packet bytes to a temp file for tools that only
// read from disk.
func spoolPacket(packet []byte) (string, error) {
	tmp, err := os.CreateTemp("", "claimsapi-packet-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(packet); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
