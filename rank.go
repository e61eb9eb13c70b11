// ═══════════════════════════════════════════════════════════════════════════════
// RANKING: BM25 Relevance Scoring
// ═══════════════════════════════════════════════════════════════════════════════
// BM25 (Best Matching 25) estimates the relevance of a document to a set of
// query terms from three corpus statistics:
//
//  1. Term frequency — how often the term occurs in the document, with
//     saturation: the 10th occurrence adds less than the 2nd.
//  2. Document frequency — how rare the term is across the corpus: terms
//     appearing in fewer documents score higher per occurrence.
//  3. Document length — contributions are normalized against the corpus
//     average so long documents are not favored purely by raw counts.
//
// FORMULA (per query term):
//
//	IDF(term) · (tf · (k1 + 1)) / (tf + k1 · (1 − b + b · docLen/avgDocLen))
//
//	IDF(term) = ln((N − df + 0.5) / (df + 0.5) + 1)
//
// A document's total score is the sum of the per-term contributions over all
// matched query terms.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"math"
	"sort"
)

// BM25Parameters holds the tuning parameters for the BM25 ranking function.
type BM25Parameters struct {
	K1 float64 // Term frequency saturation (typical: 1.2-2.0)
	B  float64 // Length normalization (typical: 0.75)
}

// DefaultBM25Parameters returns the standard BM25 parameters.
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{
		K1: 1.5,  // Moderate term frequency saturation
		B:  0.75, // Standard length normalization
	}
}

// idf computes the Inverse Document Frequency for a term. Rare terms (low
// document frequency) get high IDF; terms in every document approach zero.
// The +0.5 smoothing and the outer +1 keep the value positive for any df.
func (idx *Index) idf(term string) float64 {
	df := float64(idx.DocFrequency(term))
	if df == 0 {
		return 0
	}

	n := float64(idx.totalDocs)
	return math.Log((n-df+0.5)/(df+0.5) + 1.0)
}

// Score computes the BM25 relevance of a document for the given query terms.
//
// Terms absent from the document (or from the vocabulary) contribute zero,
// as does a document ID that is not part of the corpus. A query term listed
// more than once contributes once per occurrence.
//
// Deterministic: the terms are summed in sorted order, so identical inputs
// always produce the identical float64, independent of caller-side ordering.
func (idx *Index) Score(docID int, queryTerms []string) float64 {
	docLen, exists := idx.docLengths[docID]
	if !exists || idx.totalDocs == 0 {
		return 0
	}

	// Fixed, reproducible summation order.
	terms := make([]string, len(queryTerms))
	copy(terms, queryTerms)
	sort.Strings(terms)

	k1 := idx.bm25.K1
	b := idx.bm25.B
	lengthRatio := float64(docLen) / idx.avgDocLen

	score := 0.0
	for _, term := range terms {
		tf := float64(idx.TermFrequency(term, docID))
		if tf == 0 {
			continue
		}

		numerator := tf * (k1 + 1)
		denominator := tf + k1*(1-b+b*lengthRatio)
		score += idx.idf(term) * (numerator / denominator)
	}

	return score
}
