package pipeline

import (
	"claimsapi/internal/embed"
)

// duplicatePageSimilarity is the floor applied to a gap between two pages
// whose image hashes are identical. A re-scanned copy of the same page must
// never become a document boundary, whatever its text embeds to.
const duplicatePageSimilarity = 0.98

// Segment partitions an ordered page sequence into logical documents.
//
// Adjacent-page similarity is the cosine of the two page embeddings, with the
// duplicate-image override applied when both pages carry the same non-empty
// image hash. A boundary is emitted once `consecutiveLow` adjacent gaps in a
// row fall below `threshold`, and is placed at the start of the first page of
// the low-similarity run rather than at the page that tripped the counter.
// The counter resets after each emitted boundary so a new run accumulates
// independently. Empty input yields empty output.
func Segment(pages []PageFeature, threshold float64, consecutiveLow int) []LogicalDocument {
	if len(pages) == 0 {
		return nil
	}
	if consecutiveLow < 1 {
		consecutiveLow = 1
	}

	sims := adjacentSimilarities(pages)

	boundaries := []int{0}
	lowCount := 0
	for i, sim := range sims {
		if sim < threshold {
			lowCount++
		} else {
			lowCount = 0
		}
		if lowCount >= consecutiveLow {
			split := (i + 1) - (consecutiveLow - 1)
			if !containsInt(boundaries, split) {
				boundaries = append(boundaries, split)
			}
			lowCount = 0
		}
	}

	docs := make([]LogicalDocument, 0, len(boundaries))
	for i, start := range boundaries {
		end := len(pages)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		if start >= end {
			continue // defensive; boundaries are strictly increasing
		}
		docs = append(docs, LogicalDocument{
			StartIndex: start,
			EndIndex:   end - 1,
			Pages:      pages[start:end],
		})
	}
	return docs
}

// adjacentSimilarities returns sim[i] for each gap between page i and i+1.
func adjacentSimilarities(pages []PageFeature) []float64 {
	if len(pages) < 2 {
		return nil
	}
	sims := make([]float64, len(pages)-1)
	for i := 0; i < len(pages)-1; i++ {
		sim := embed.Cosine(pages[i].Embedding, pages[i+1].Embedding)
		if pages[i].ImageHash != "" && pages[i].ImageHash == pages[i+1].ImageHash && sim < duplicatePageSimilarity {
			sim = duplicatePageSimilarity
		}
		sims[i] = sim
	}
	return sims
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
