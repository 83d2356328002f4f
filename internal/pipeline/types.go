// Package pipeline implements the four-stage decision pipeline for scanned
// claims packets: page segmentation into logical documents, keyword-evidence
// type classification, pattern-based field extraction, and cross-document
// validation. Stages run strictly in order; each consumes the complete output
// of the previous one.
package pipeline

import "fmt"

// DocType labels a logical document. The set is fixed; classification always
// returns one of these values.
type DocType string

const (
	DocTypeInvoice          DocType = "Invoice"
	DocTypeClaimForm        DocType = "ClaimForm"
	DocTypeInspectionReport DocType = "InspectionReport"
	DocTypeReceipt          DocType = "Receipt"
)

// DocTypes lists all labels in their fixed iteration order. Classification
// tie-breaks resolve to the first label reaching the maximum score in this
// order, so the order is part of the contract.
var DocTypes = []DocType{
	DocTypeInvoice,
	DocTypeClaimForm,
	DocTypeInspectionReport,
	DocTypeReceipt,
}

// Validation status values.
const (
	StatusApproved          = "Approved"
	StatusNeedsManualReview = "NeedsManualReview"
)

// PageFeature holds everything the pipeline knows about one physical page.
// Produced once by the page feature provider and immutable afterward.
type PageFeature struct {
	// Index is the zero-based position of the page in the packet.
	Index int

	// Text is the cleaned page text; may be empty.
	Text string

	// Image holds the page's image bytes, used for OCR fallback. May be nil.
	Image []byte

	// Embedding is the page's semantic vector.
	Embedding []float32

	// ImageHash is a hex digest of the page image, or "" when undefined.
	ImageHash string
}

// LogicalDocument is a contiguous run of pages believed to belong to one
// physical document. Ranges across a packet are contiguous, non-overlapping,
// and cover every page exactly once, in original order.
type LogicalDocument struct {
	StartIndex int // first page index, inclusive
	EndIndex   int // last page index, inclusive
	Pages      []PageFeature
}

// Texts returns the per-page texts of the document in page order.
func (d LogicalDocument) Texts() []string {
	out := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Text
	}
	return out
}

// Images returns the per-page image bytes of the document in page order.
func (d LogicalDocument) Images() [][]byte {
	out := make([][]byte, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Image
	}
	return out
}

// PageRange renders the 1-based page span for display, e.g. "Page 3" or
// "Pages 2-4".
func (d LogicalDocument) PageRange() string {
	if d.StartIndex == d.EndIndex {
		return fmt.Sprintf("Page %d", d.StartIndex+1)
	}
	return fmt.Sprintf("Pages %d-%d", d.StartIndex+1, d.EndIndex+1)
}

// ClassifiedDocument couples a logical document with its assigned type.
// ExtractedData is attached by the extraction stage.
type ClassifiedDocument struct {
	SequenceNumber int     // 1-based, in document order
	Type           DocType
	Confidence     float64 // in [0, 1]
	PageRange      string
	Source         LogicalDocument
	ExtractedData  map[string]any
}

// ExtractedRecord is the per-document slice of the packet handed to
// validation: sequence number, type, and the extracted field map.
type ExtractedRecord struct {
	Number int            `json:"number"`
	Type   DocType        `json:"type"`
	Data   map[string]any `json:"data"`
}
