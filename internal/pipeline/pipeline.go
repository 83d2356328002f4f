package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"claimsapi/internal/model"
)

// Config holds the caller-tunable knobs of the pipeline.
type Config struct {
	// SimilarityThreshold is the adjacent-page cosine similarity below which
	// a gap counts toward a split. Default 0.60.
	SimilarityThreshold float64

	// ConsecutiveLowPages is how many low-similarity gaps in a row force a
	// document boundary. Default 2.
	ConsecutiveLowPages int

	// MaxParallel bounds concurrent per-document classification/extraction.
	// Default 4.
	MaxParallel int
}

func (c *Config) defaults() {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		c.SimilarityThreshold = 0.60
	}
	if c.ConsecutiveLowPages < 1 {
		c.ConsecutiveLowPages = 2
	}
	if c.MaxParallel < 1 {
		c.MaxParallel = 4
	}
}

// Processor runs the full decision pipeline over one packet's page features:
// segment, then classify and extract each logical document, then validate
// across all extracted records.
type Processor struct {
	Logger     *slog.Logger
	Cfg        Config
	Classifier *Classifier
	Extractor  *Extractor
}

// NewProcessor wires a Processor. The OCR collaborator may be nil; the
// classifier then skips its no-text fallback.
func NewProcessor(logger *slog.Logger, cfg Config, ocr ImageOCR) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.defaults()
	return &Processor{
		Logger:     logger,
		Cfg:        cfg,
		Classifier: NewClassifier(logger, ocr),
		Extractor:  NewExtractor(logger),
	}
}

// Process runs all four stages and assembles the packet result contract.
// Documents are numbered from 1 in page order. Per-document problems (no
// text, unsupported type) surface as structured error entries in that
// document's data; they never abort the packet.
func (p *Processor) Process(ctx context.Context, pages []PageFeature) *model.PacketResult {
	docs := Segment(pages, p.Cfg.SimilarityThreshold, p.Cfg.ConsecutiveLowPages)
	p.Logger.Info("pipeline.segment.ok", "pages", len(pages), "documents", len(docs))

	classified := p.classifyAndExtract(ctx, docs)

	records := make([]ExtractedRecord, len(classified))
	for i, cd := range classified {
		records[i] = ExtractedRecord{
			Number: cd.SequenceNumber,
			Type:   cd.Type,
			Data:   cd.ExtractedData,
		}
	}

	status, flags := Validate(records)
	p.Logger.Info("pipeline.validate.ok", "status", status, "flags", len(flags))

	results := make([]model.DocumentResult, len(records))
	for i, r := range records {
		results[i] = model.DocumentResult{Number: r.Number, Type: string(r.Type), Data: r.Data}
	}
	return &model.PacketResult{
		TotalDocuments: len(results),
		Validation:     model.ValidationResult{Status: status, Flags: flags},
		Documents:      results,
	}
}

// classifyAndExtract runs the two per-document stages. Documents are
// independent, so they run concurrently; each goroutine reads its own slice
// of immutable page data and writes to a private result slot.
func (p *Processor) classifyAndExtract(ctx context.Context, docs []LogicalDocument) []ClassifiedDocument {
	out := make([]ClassifiedDocument, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.MaxParallel)
	for i, doc := range docs {
		g.Go(func() error {
			images := doc.Images()
			texts := doc.Texts()

			docType, confidence := p.Classifier.Classify(gctx, images, texts)
			data := p.Extractor.Extract(docType, texts)

			out[i] = ClassifiedDocument{
				SequenceNumber: i + 1,
				Type:           docType,
				Confidence:     confidence,
				PageRange:      doc.PageRange(),
				Source:         doc,
				ExtractedData:  data,
			}
			p.Logger.Info("pipeline.document.ok",
				"number", i+1,
				"type", docType,
				"confidence", confidence,
				"page_range", doc.PageRange(),
			)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
