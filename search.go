// ═══════════════════════════════════════════════════════════════════════════════
// QUERY ENGINE: Free-Text Search Over the Frozen Index
// ═══════════════════════════════════════════════════════════════════════════════
// Search orchestrates the full query pipeline:
//
//	query string → analyze → exact/fuzzy term resolution → posting union
//	             → BM25 scoring → top-K selection
//
// TERM RESOLUTION:
// ----------------
// Each query token is looked up in the vocabulary. An exact hit is used
// as-is and fuzzy matching is skipped for that token. A miss triggers the
// fuzzy matcher, and the single best match substitutes for the token.
//
// MERGE POLICY (best-only):
// -------------------------
// When several fuzzy candidates tie at the best distance, exactly one — the
// head of the fuzzy ordering (distance asc, document frequency desc, term
// asc) — contributes its postings. Unioning every tied candidate would let a
// single misspelled token fan out into several vocabulary terms and distort
// scores relative to correctly spelled tokens.
//
// COMBINING TERMS:
// ----------------
// Posting sets for multiple query terms combine with OR semantics: a
// document qualifies by matching at least one term (exact or substituted).
// Qualifying documents are BM25-scored against all resolved terms and the
// top K by score are returned, ties broken by ascending document ID.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"log/slog"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// SearchOptions carries the per-query knobs. Both are explicit: the package
// has no default query configuration.
type SearchOptions struct {
	// TopK is the maximum number of results to return. Must be positive.
	TopK int

	// MaxDistance is the edit-distance budget for fuzzy term matching,
	// 0 to MaxFuzzyDistance. Zero disables fuzzy matching: only exact
	// vocabulary hits contribute.
	MaxDistance int
}

// Result is a single search hit.
type Result struct {
	DocID int     // Document identifier, as supplied at build time
	Score float64 // BM25 relevance; higher is more relevant
}

// Search answers a free-text query against the index and returns at most
// opts.TopK results ordered by descending score, ties broken by ascending
// document ID.
//
// An empty query, a query whose tokens are all filtered by analysis, and a
// query matching nothing all yield an empty result, never an error.
//
// Search is read-only and safe for concurrent use; the Index is a frozen
// snapshot.
//
// Returns ErrInvalidTopK or ErrInvalidMaxDistance for malformed options,
// before any work is performed.
func (idx *Index) Search(query string, opts SearchOptions) ([]Result, error) {
	if opts.TopK <= 0 {
		return nil, ErrInvalidTopK
	}
	if opts.MaxDistance < 0 || opts.MaxDistance > MaxFuzzyDistance {
		return nil, ErrInvalidMaxDistance
	}

	tokens := AnalyzeWithConfig(query, idx.analyzer)
	if len(tokens) == 0 {
		return nil, nil
	}

	slog.Info("search", slog.String("query", query), slog.Int("tokens", len(tokens)))

	// Resolve each distinct token once; keep per-occurrence multiplicity so
	// a term repeated in the query weighs proportionally in the score.
	resolved := make(map[string]string, len(tokens))
	queryTerms := make([]string, 0, len(tokens))
	docs := roaring.NewBitmap()

	for _, token := range tokens {
		term, cached := resolved[token]
		if !cached {
			term = idx.resolveTerm(token, opts.MaxDistance)
			resolved[token] = term
		}
		if term == "" {
			// No exact hit and nothing within the distance bound.
			continue
		}

		queryTerms = append(queryTerms, term)
		docs.Or(idx.docBitmaps[term])
	}

	return idx.rankDocuments(docs, queryTerms, opts.TopK), nil
}

// resolveTerm maps one analyzed query token to the vocabulary term whose
// postings it contributes: the token itself on an exact hit, the best fuzzy
// match otherwise, or "" when nothing qualifies.
func (idx *Index) resolveTerm(token string, maxDistance int) string {
	if idx.HasTerm(token) {
		return token
	}
	if maxDistance == 0 {
		return ""
	}

	// The bound was validated by the caller; FuzzyMatch cannot fail here.
	matches, _ := idx.FuzzyMatch(token, maxDistance)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Term
}

// rankDocuments scores every candidate document against the resolved query
// terms and returns the top K. Every candidate stays in the result, even at
// score zero: boolean queries can match documents through negation alone,
// and those carry no scorable terms. Zero-score matches sort last, ordered
// by ascending document ID.
func (idx *Index) rankDocuments(docs *roaring.Bitmap, queryTerms []string, topK int) []Result {
	results := make([]Result, 0, docs.GetCardinality())

	iter := docs.Iterator()
	for iter.HasNext() {
		docID := int(iter.Next())
		results = append(results, Result{DocID: docID, Score: idx.Score(docID, queryTerms)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
