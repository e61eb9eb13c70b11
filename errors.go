package flint

import "errors"

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
// All parameter validation errors are package-level sentinels so callers can
// match them with errors.Is. Every one of them is returned synchronously,
// before any indexing or query work starts: there is no partial result to
// clean up after a failed call.

// MaxFuzzyDistance is the largest edit-distance bound accepted by fuzzy
// matching. Bounds above this defeat the point of candidate pruning: almost
// every vocabulary term becomes a candidate.
const MaxFuzzyDistance = 3

var (
	// ErrInvalidTopK is returned when a result limit is zero or negative.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrInvalidMaxDistance is returned when a fuzzy edit-distance bound is
	// negative or exceeds MaxFuzzyDistance.
	ErrInvalidMaxDistance = errors.New("max edit distance must be between 0 and 3")

	// ErrInvalidNGramSize is returned when a builder is configured with an
	// n-gram size outside the supported range of 2 to 4.
	ErrInvalidNGramSize = errors.New("n-gram size must be between 2 and 4")

	// ErrInvalidDocumentID is returned when a build batch contains a
	// document ID that is negative or exceeds the 32-bit bitmap range.
	ErrInvalidDocumentID = errors.New("document ID must fit in 32 bits and be non-negative")
)
