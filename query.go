// ═══════════════════════════════════════════════════════════════════════════════
// QUERY BUILDER: Type-Safe Boolean Queries Over Document Bitmaps
// ═══════════════════════════════════════════════════════════════════════════════
// Free-text Search covers the common case; for programmatic filtering the
// builder exposes the index's per-term document bitmaps with boolean
// algebra. Instead of parsing strings like "machine AND learning":
//
//	docs := NewQueryBuilder(index).
//	    Term("machine").
//	    And().
//	    Term("learning").
//	    Execute()
//
// Find documents with ("cat" OR "dog") but NOT "snake", ranked:
//
//	results, err := NewQueryBuilder(index).
//	    Group(func(q *QueryBuilder) {
//	        q.Term("cat").Or().Term("dog")
//	    }).
//	    And().Not().Term("snake").
//	    ExecuteRanked(10)
//
// Terms go through the same analysis pipeline as the corpus, so "Running"
// matches documents that indexed "run". Boolean terms are exact: there is no
// fuzzy substitution on this path.
//
// All operations are reads against the frozen Index; builders are cheap,
// single-use, and not themselves safe for concurrent mutation.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"github.com/RoaringBitmap/roaring"
)

// QueryBuilder provides a fluent interface for building boolean queries.
type QueryBuilder struct {
	index  *Index
	stack  []*roaring.Bitmap // Intermediate results, in insertion order
	ops    []QueryOp         // Pending operations between stack entries
	negate bool              // Whether the next term is negated
	terms  []string          // Non-negated terms, kept for ranking
}

// QueryOp represents a pending boolean operation.
type QueryOp int

const (
	OpNone QueryOp = iota
	OpAnd
	OpOr
)

// NewQueryBuilder creates a query builder over the given index.
func NewQueryBuilder(index *Index) *QueryBuilder {
	return &QueryBuilder{
		index: index,
	}
}

// Term adds a term to the query. The term is analyzed with the index's
// pipeline; if analysis yields nothing (stopword, too short) the term
// matches no documents — and its negation matches every document.
func (qb *QueryBuilder) Term(term string) *QueryBuilder {
	tokens := AnalyzeWithConfig(term, qb.index.analyzer)
	if len(tokens) == 0 {
		// A pending negation must be consumed here, not left to leak
		// onto the next term.
		bitmap := roaring.NewBitmap()
		if qb.negate {
			bitmap = qb.negateBitmap(bitmap)
			qb.negate = false
		}
		qb.pushBitmap(bitmap)
		return qb
	}

	analyzed := tokens[0]
	if !qb.negate {
		qb.terms = append(qb.terms, analyzed)
	}

	bitmap := qb.termBitmap(analyzed)
	if qb.negate {
		bitmap = qb.negateBitmap(bitmap)
		qb.negate = false
	}

	qb.pushBitmap(bitmap)
	return qb
}

// And combines the surrounding terms with intersection semantics.
func (qb *QueryBuilder) And() *QueryBuilder {
	qb.ops = append(qb.ops, OpAnd)
	return qb
}

// Or combines the surrounding terms with union semantics.
func (qb *QueryBuilder) Or() *QueryBuilder {
	qb.ops = append(qb.ops, OpOr)
	return qb
}

// Not negates the next term: documents NOT containing it.
func (qb *QueryBuilder) Not() *QueryBuilder {
	qb.negate = true
	return qb
}

// Group creates a sub-query with its own scope, controlling operator
// precedence:
//
//	qb.Group(func(q *QueryBuilder) {
//	    q.Term("cat").Or().Term("dog")
//	}).And().Term("pet")
//	// Evaluates: (cat OR dog) AND pet
func (qb *QueryBuilder) Group(fn func(*QueryBuilder)) *QueryBuilder {
	subQuery := NewQueryBuilder(qb.index)
	fn(subQuery)

	result := subQuery.Execute()
	qb.terms = append(qb.terms, subQuery.terms...)

	if qb.negate {
		result = qb.negateBitmap(result)
		qb.negate = false
	}

	qb.pushBitmap(result)
	return qb
}

// Execute evaluates the query and returns the matching document IDs as a
// bitmap. Operations apply left to right.
func (qb *QueryBuilder) Execute() *roaring.Bitmap {
	if len(qb.stack) == 0 {
		return roaring.NewBitmap()
	}

	result := qb.stack[0]
	for i := 1; i < len(qb.stack); i++ {
		if i-1 < len(qb.ops) {
			switch qb.ops[i-1] {
			case OpAnd:
				result = roaring.And(result, qb.stack[i])
			case OpOr:
				result = roaring.Or(result, qb.stack[i])
			}
		}
	}

	return result
}

// ExecuteRanked evaluates the query and returns the matching documents
// ranked by BM25 against the query's non-negated terms: at most topK
// results, ordered by descending score then ascending document ID.
//
// Documents matched purely through negation have no scorable terms; they
// remain in the result with score zero, after any positive-scoring matches.
//
// Returns ErrInvalidTopK if topK is zero or negative.
func (qb *QueryBuilder) ExecuteRanked(topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	return qb.index.rankDocuments(qb.Execute(), qb.terms, topK), nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// INTERNAL HELPER METHODS
// ═══════════════════════════════════════════════════════════════════════════════

// termBitmap retrieves the document bitmap for an analyzed term. The
// original is cloned: builder operations must not touch index state.
func (qb *QueryBuilder) termBitmap(term string) *roaring.Bitmap {
	if bitmap, exists := qb.index.docBitmaps[term]; exists {
		return bitmap.Clone()
	}
	return roaring.NewBitmap()
}

// negateBitmap returns all indexed documents EXCEPT those in the bitmap.
func (qb *QueryBuilder) negateBitmap(bitmap *roaring.Bitmap) *roaring.Bitmap {
	return roaring.AndNot(qb.index.allDocs, bitmap)
}

// pushBitmap pushes a bitmap onto the stack.
func (qb *QueryBuilder) pushBitmap(bitmap *roaring.Bitmap) {
	qb.stack = append(qb.stack, bitmap)
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONVENIENCE FUNCTIONS FOR COMMON PATTERNS
// ═══════════════════════════════════════════════════════════════════════════════

// AllOf finds documents containing ALL of the given terms (AND).
func AllOf(index *Index, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}

	qb := NewQueryBuilder(index).Term(terms[0])
	for i := 1; i < len(terms); i++ {
		qb.And().Term(terms[i])
	}
	return qb.Execute()
}

// AnyOf finds documents containing ANY of the given terms (OR).
func AnyOf(index *Index, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}

	qb := NewQueryBuilder(index).Term(terms[0])
	for i := 1; i < len(terms); i++ {
		qb.Or().Term(terms[i])
	}
	return qb.Execute()
}

// TermExcluding finds documents containing one term but not another.
func TermExcluding(index *Index, include, exclude string) *roaring.Bitmap {
	return NewQueryBuilder(index).
		Term(include).
		And().Not().Term(exclude).
		Execute()
}
