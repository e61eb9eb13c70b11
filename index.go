// Package flint implements a small, embeddable, in-memory full-text search
// engine: an inverted index built once from a fixed corpus, fuzzy term
// matching under an edit-distance budget, and BM25 relevance ranking.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS AN INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// An inverted index is like the index at the back of a book, but for search
// engines.
//
// Example: Given these documents:
//   Doc 1: "the quick brown fox"
//   Doc 2: "the lazy dog"
//   Doc 3: "quick brown dogs"
//
// The inverted index looks like:
//   "quick" → [{Doc1, tf=1}, {Doc3, tf=1}]
//   "brown" → [{Doc1, tf=1}, {Doc3, tf=1}]
//   "fox"   → [{Doc1, tf=1}]
//   "lazi"  → [{Doc2, tf=1}]
//   "dog"   → [{Doc2, tf=1}, {Doc3, tf=1}]
//
// This lets us find every document containing a term without scanning the
// corpus, and the per-document term frequencies feed BM25 ranking.
//
// LIFECYCLE:
// ----------
// The Index is a frozen snapshot. It is assembled in one batch build pass and
// never mutated afterwards: there is no insert, update, or delete. Because no
// method writes to a published Index, any number of goroutines may query it
// concurrently without synchronization. Refreshing the corpus means building
// a new Index and dropping the old one.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"log/slog"
	"math"
	"runtime"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/sync/errgroup"
)

// Document is one unit of indexable text handed to the builder. The
// identifier must be non-negative and fit in 32 bits (document sets are
// stored as 32-bit bitmaps); it is echoed back in search results so the
// caller can map hits to its own document store. The engine never retains
// the raw text.
type Document struct {
	ID   int    // Caller-assigned document identifier, 0 to math.MaxUint32
	Text string // Raw text; analyzed during the build, then discarded
}

// Posting links a term to a document and the number of times the term occurs
// in that document. Frequency is always >= 1: terms with zero occurrences are
// never stored.
type Posting struct {
	DocID     int // Document identifier
	Frequency int // Occurrences of the term within the document
}

// BuilderConfig holds every knob the build pass consumes. All configuration
// is explicit at the call site; the package keeps no global settings.
type BuilderConfig struct {
	Analyzer  AnalyzerConfig // Text analysis pipeline, reused verbatim at query time
	NGramSize int            // Character n-gram size for the fuzzy candidate index (2-4)
	BM25      BM25Parameters // Ranking parameters
}

// DefaultBuilderConfig returns the standard build configuration: the default
// analysis pipeline, bigram fuzzy candidates, and standard BM25 parameters.
//
// Bigrams keep recall high for short English terms; see fuzzy.go for how the
// n-gram size interacts with the edit-distance bound.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Analyzer:  DefaultAnalyzerConfig(),
		NGramSize: 2,
		BM25:      DefaultBM25Parameters(),
	}
}

// Index is the immutable product of a build pass: the term → postings
// mapping, corpus statistics for ranking, and the n-gram structure used to
// prune fuzzy-match candidates.
//
// All fields are unexported. Nothing mutates an Index after Build returns
// it, which is the central concurrency property: readers share it freely.
type Index struct {
	analyzer AnalyzerConfig
	bm25     BM25Parameters

	postings   map[string][]Posting       // term → postings, ascending DocID
	docBitmaps map[string]*roaring.Bitmap // term → bitmap of document IDs
	allDocs    *roaring.Bitmap            // every indexed document ID
	docLengths map[int]int                // docID → document length in terms

	totalDocs  int
	totalTerms int64
	avgDocLen  float64

	vocabulary []string // sorted distinct terms; ordinal positions feed the n-gram index
	grams      *ngramIndex
}

// ═══════════════════════════════════════════════════════════════════════════════
// BUILDING: Corpus → Index
// ═══════════════════════════════════════════════════════════════════════════════
// Building is a two-phase batch operation:
//
//	PHASE 1 (parallel): every document is tokenized and aggregated into a
//	local term → frequency map. Documents share no state here, so the work
//	fans out across GOMAXPROCS workers, each owning a contiguous chunk of
//	the input.
//
//	PHASE 2 (serial): the per-document aggregates are merged into the global
//	postings, statistics are finalized, posting lists are sorted by document
//	ID, and the n-gram candidate index is derived from the vocabulary.
//
// The merge walks chunks in input order, so the result is independent of
// worker scheduling: building twice from the same document sequence yields a
// structurally identical Index.
// ═══════════════════════════════════════════════════════════════════════════════

// docAggregate is the phase-1 output for a single document.
type docAggregate struct {
	id    int
	len   int
	freqs map[string]int
}

// Build constructs an Index from the document sequence using
// DefaultBuilderConfig.
func Build(docs []Document) (*Index, error) {
	return BuildWithConfig(docs, DefaultBuilderConfig())
}

// BuildWithConfig constructs an Index from the document sequence.
//
// An empty document sequence is valid and yields an empty Index; searches
// against it return empty results. If the same document ID appears more than
// once, the first occurrence wins and later ones are skipped, keeping the
// "no document is indexed twice" invariant.
//
// The build either completes and returns a fully assembled Index or fails
// before producing one; there is no partially built state. Invalid
// parameters, including out-of-range document IDs, are rejected before any
// analysis work starts.
func BuildWithConfig(docs []Document, config BuilderConfig) (*Index, error) {
	if config.NGramSize < 2 || config.NGramSize > 4 {
		return nil, ErrInvalidNGramSize
	}
	for _, doc := range docs {
		if doc.ID < 0 || int64(doc.ID) > math.MaxUint32 {
			return nil, ErrInvalidDocumentID
		}
	}

	slog.Info("building index", slog.Int("documents", len(docs)))

	// PHASE 1: per-document analysis, fanned out across workers.
	aggregates := analyzeDocuments(docs, config.Analyzer)

	// PHASE 2: serial merge in input order.
	idx := &Index{
		analyzer:   config.Analyzer,
		bm25:       config.BM25,
		postings:   make(map[string][]Posting),
		docBitmaps: make(map[string]*roaring.Bitmap),
		allDocs:    roaring.NewBitmap(),
		docLengths: make(map[int]int),
	}

	seen := make(map[int]struct{}, len(aggregates))
	for _, agg := range aggregates {
		if _, dup := seen[agg.id]; dup {
			slog.Warn("skipping duplicate document", slog.Int("docID", agg.id))
			continue
		}
		seen[agg.id] = struct{}{}
		idx.mergeDocument(agg)
	}

	idx.finalize(config.NGramSize)

	slog.Info("index built",
		slog.Int("documents", idx.totalDocs),
		slog.Int("vocabulary", len(idx.vocabulary)))

	return idx, nil
}

// analyzeDocuments runs phase 1: tokenize every document and aggregate its
// local term frequencies. The input is split into contiguous chunks, one
// worker per chunk, and each worker writes only to its own chunk of the
// result slice. The returned slice preserves input order.
func analyzeDocuments(docs []Document, analyzer AnalyzerConfig) []docAggregate {
	aggregates := make([]docAggregate, len(docs))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		return aggregates
	}

	chunk := (len(docs) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(docs); start += chunk {
		end := start + chunk
		if end > len(docs) {
			end = len(docs)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				terms := AnalyzeWithConfig(docs[i].Text, analyzer)
				freqs := make(map[string]int, len(terms))
				for _, term := range terms {
					freqs[term]++
				}
				aggregates[i] = docAggregate{
					id:    docs[i].ID,
					len:   len(terms),
					freqs: freqs,
				}
			}
			return nil
		})
	}

	// Workers cannot fail; Wait only joins them.
	_ = g.Wait()

	return aggregates
}

// mergeDocument folds one phase-1 aggregate into the global structures. Each
// (term, document) pair produces exactly one posting, so a term's document
// frequency equals the length of its posting list.
func (idx *Index) mergeDocument(agg docAggregate) {
	idx.docLengths[agg.id] = agg.len
	idx.allDocs.Add(uint32(agg.id))
	idx.totalDocs++
	idx.totalTerms += int64(agg.len)

	for term, freq := range agg.freqs {
		idx.postings[term] = append(idx.postings[term], Posting{
			DocID:     agg.id,
			Frequency: freq,
		})

		if idx.docBitmaps[term] == nil {
			idx.docBitmaps[term] = roaring.NewBitmap()
		}
		idx.docBitmaps[term].Add(uint32(agg.id))
	}
}

// finalize computes the corpus statistics, fixes the posting order, and
// derives the vocabulary and its n-gram candidate index. After finalize the
// Index is complete and may be published to readers.
func (idx *Index) finalize(ngramSize int) {
	if idx.totalDocs > 0 {
		idx.avgDocLen = float64(idx.totalTerms) / float64(idx.totalDocs)
	}

	// Postings were appended in input order; stable, reproducible order is
	// ascending document ID.
	idx.vocabulary = make([]string, 0, len(idx.postings))
	for term, list := range idx.postings {
		sort.Slice(list, func(i, j int) bool {
			return list[i].DocID < list[j].DocID
		})
		idx.vocabulary = append(idx.vocabulary, term)
	}
	sort.Strings(idx.vocabulary)

	idx.grams = buildNGramIndex(idx.vocabulary, ngramSize)
}

// ═══════════════════════════════════════════════════════════════════════════════
// READ ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════
// The Index owns its postings and statistics exclusively. Accessors that
// return slices return copies so callers cannot reach into the snapshot.
// ═══════════════════════════════════════════════════════════════════════════════

// Postings returns the posting list for a term in ascending document-ID
// order, or nil if the term is not in the vocabulary. The returned slice is
// a copy owned by the caller.
func (idx *Index) Postings(term string) []Posting {
	list, exists := idx.postings[term]
	if !exists {
		return nil
	}
	out := make([]Posting, len(list))
	copy(out, list)
	return out
}

// HasTerm reports whether the term is in the vocabulary.
func (idx *Index) HasTerm(term string) bool {
	_, exists := idx.postings[term]
	return exists
}

// DocFrequency returns the number of distinct documents containing the term:
// the length of its posting list, not the sum of frequencies.
func (idx *Index) DocFrequency(term string) int {
	return len(idx.postings[term])
}

// TermFrequency returns the number of times the term occurs in the given
// document, or 0 if the term or document is unknown.
func (idx *Index) TermFrequency(term string, docID int) int {
	list := idx.postings[term]
	// Posting lists are sorted by DocID; binary search.
	i := sort.Search(len(list), func(i int) bool {
		return list[i].DocID >= docID
	})
	if i < len(list) && list[i].DocID == docID {
		return list[i].Frequency
	}
	return 0
}

// DocLength returns the length in terms of the given document and whether
// the document is part of the corpus.
func (idx *Index) DocLength(docID int) (int, bool) {
	length, exists := idx.docLengths[docID]
	return length, exists
}

// TotalDocs returns the number of indexed documents.
func (idx *Index) TotalDocs() int {
	return idx.totalDocs
}

// AvgDocLength returns the average document length in terms, or 0 for an
// empty corpus.
func (idx *Index) AvgDocLength() float64 {
	return idx.avgDocLen
}

// Vocabulary returns the sorted set of distinct terms across the corpus. The
// returned slice is a copy owned by the caller.
func (idx *Index) Vocabulary() []string {
	out := make([]string, len(idx.vocabulary))
	copy(out, idx.vocabulary)
	return out
}

// VocabularySize returns the number of distinct terms across the corpus.
func (idx *Index) VocabularySize() int {
	return len(idx.vocabulary)
}

// Documents returns a bitmap of every indexed document ID. The returned
// bitmap is a copy owned by the caller.
func (idx *Index) Documents() *roaring.Bitmap {
	return idx.allDocs.Clone()
}
