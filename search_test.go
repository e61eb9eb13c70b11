package flint

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH TESTS: Exact Matching
// ═══════════════════════════════════════════════════════════════════════════════

func TestIndex_Search_SingleTerm(t *testing.T) {
	idx := buildTestIndex(t, []Document{
		{ID: 0, Text: "the cat sat"},
		{ID: 1, Text: "the dog sat"},
	})

	results, err := idx.Search("cat", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].DocID != 0 {
		t.Errorf("Search(cat) = %v, want exactly doc 0", results)
	}
}

func TestIndex_Search_TiedScoresOrderedByDocID(t *testing.T) {
	// Both documents contain "sat" once, have equal length, and therefore
	// score identically. Ties break by ascending document ID.
	idx := buildTestIndex(t, []Document{
		{ID: 0, Text: "the cat sat"},
		{ID: 1, Text: "the dog sat"},
	})

	results, err := idx.Search("sat", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search(sat) returned %d results, want 2", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Errorf("scores differ (%f vs %f), want a tie", results[0].Score, results[1].Score)
	}
	if results[0].DocID != 0 || results[1].DocID != 1 {
		t.Errorf("tied results ordered %d, %d, want 0, 1", results[0].DocID, results[1].DocID)
	}
}

func TestIndex_Search_ORSemantics(t *testing.T) {
	// A document qualifies by matching any query term, not all of them.
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "cat plays"},
		{ID: 2, Text: "dog plays"},
		{ID: 3, Text: "bird sings"},
	})

	results, err := idx.Search("cat dog", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if got := docIDs(results); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Search(cat dog) docs = %v, want [1 2]", got)
	}
}

func TestIndex_Search_MoreMatchedTermsRankHigher(t *testing.T) {
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "cat dog"},
		{ID: 2, Text: "cat bird"},
		{ID: 3, Text: "fish swims"},
	})

	results, err := idx.Search("cat dog", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != 1 {
		t.Errorf("doc 1 matches both terms and should rank first, got doc %d", results[0].DocID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not strictly ordered: %f vs %f", results[0].Score, results[1].Score)
	}
}

func TestIndex_Search_TopKTruncation(t *testing.T) {
	docs := make([]Document, 20)
	for i := range docs {
		docs[i] = Document{ID: i + 1, Text: "shared topic"}
	}
	idx := buildTestIndex(t, docs)

	results, err := idx.Search("shared", SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("TopK=5 returned %d results", len(results))
	}
	// All scores tie, so truncation keeps the lowest document IDs.
	if got := docIDs(results); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("truncated docs = %v, want [1 2 3 4 5]", got)
	}
}

func TestIndex_Search_EveryIndexedTermFindsItsDocuments(t *testing.T) {
	// For every vocabulary term, searching it surfaces exactly the documents
	// in its posting list.
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "alpha beta gamma"},
		{ID: 2, Text: "beta gamma delta"},
		{ID: 3, Text: "gamma delta epsilon"},
	})

	for _, term := range idx.Vocabulary() {
		results, err := idx.Search(term, SearchOptions{TopK: 10})
		if err != nil {
			t.Fatalf("Search(%q) error: %v", term, err)
		}

		want := make([]int, 0, len(idx.Postings(term)))
		for _, posting := range idx.Postings(term) {
			want = append(want, posting.DocID)
		}

		got := docIDs(results)
		sort.Ints(got)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search(%q) docs = %v, want %v", term, got, want)
		}
	}
}

func TestIndex_Search_NoMatches(t *testing.T) {
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat dog"}})

	results, err := idx.Search("elephant", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search(elephant) = %v, want empty", results)
	}
}

func TestIndex_Search_EmptyQuery(t *testing.T) {
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat dog"}})

	for _, query := range []string{"", "   ", "!!!", "the a an"} {
		results, err := idx.Search(query, SearchOptions{TopK: 10})
		if err != nil {
			t.Errorf("Search(%q) error: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %v, want empty", query, results)
		}
	}
}

func TestIndex_Search_EmptyCorpus(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) error: %v", err)
	}

	results, err := idx.Search("anything", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() on empty corpus error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty corpus = %v, want empty", results)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH TESTS: Fuzzy Resolution
// ═══════════════════════════════════════════════════════════════════════════════

func TestIndex_Search_FuzzySubstitution(t *testing.T) {
	idx := buildTestIndex(t, []Document{
		{ID: 0, Text: "the cat sat"},
		{ID: 1, Text: "the dog sat"},
	})

	results, err := idx.Search("cet", SearchOptions{TopK: 10, MaxDistance: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].DocID != 0 {
		t.Errorf("Search(cet, d=1) = %v, want exactly doc 0", results)
	}
}

func TestIndex_Search_FuzzyDisabledByDefault(t *testing.T) {
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat dog"}})

	results, err := idx.Search("cet", SearchOptions{TopK: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("MaxDistance=0 should skip fuzzy matching, got %v", results)
	}
}

func TestIndex_Search_ExactHitSkipsFuzzy(t *testing.T) {
	// "cat" exists, so the fuzzy neighbor "cot" must not contribute even
	// though it is within the distance bound.
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "cat naps"},
		{ID: 2, Text: "cot frame"},
	})

	results, err := idx.Search("cat", SearchOptions{TopK: 10, MaxDistance: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if got := docIDs(results); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Search(cat, d=1) docs = %v, want [1]", got)
	}
}

func TestIndex_Search_FuzzyBestOnlyMergePolicy(t *testing.T) {
	// "cone" is within distance 1 of both "bone" and "zone". "zone" has the
	// higher document frequency, so it alone substitutes for the token and
	// documents containing only "bone" stay out of the result.
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "bone fragment"},
		{ID: 2, Text: "zone defense"},
		{ID: 3, Text: "zone rules"},
	})

	results, err := idx.Search("cone", SearchOptions{TopK: 10, MaxDistance: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if got := docIDs(results); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Search(cone, d=1) docs = %v, want [2 3]", got)
	}
}

func TestIndex_Search_FuzzyMatchesCorrectedQuery(t *testing.T) {
	// A misspelled token that resolves to term T must surface the same
	// documents as querying T directly.
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "apple orchard harvest"},
		{ID: 2, Text: "apple pie recipe"},
		{ID: 3, Text: "pear orchard"},
	})

	fuzzy, err := idx.Search("appel", SearchOptions{TopK: 10, MaxDistance: 2})
	if err != nil {
		t.Fatalf("Search(appel) error: %v", err)
	}
	exact, err := idx.Search("apple", SearchOptions{TopK: 10, MaxDistance: 0})
	if err != nil {
		t.Fatalf("Search(apple) error: %v", err)
	}
	if !reflect.DeepEqual(docIDs(fuzzy), docIDs(exact)) {
		t.Errorf("fuzzy docs %v != exact docs %v", docIDs(fuzzy), docIDs(exact))
	}
}

func TestIndex_Search_MixedExactAndFuzzyTokens(t *testing.T) {
	idx := buildTestIndex(t, []Document{
		{ID: 1, Text: "grumpy cat"},
		{ID: 2, Text: "happy dog"},
	})

	// "grumpy" hits exactly; "dag" resolves to "dog" at distance 1.
	results, err := idx.Search("grumpy dag", SearchOptions{TopK: 10, MaxDistance: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if got := docIDs(results); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Search(grumpy dag) docs = %v, want [1 2]", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH TESTS: Option Validation
// ═══════════════════════════════════════════════════════════════════════════════

func TestIndex_Search_InvalidTopK(t *testing.T) {
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat"}})

	for _, topK := range []int{0, -1, -100} {
		_, err := idx.Search("cat", SearchOptions{TopK: topK})
		if err != ErrInvalidTopK {
			t.Errorf("Search(TopK=%d) error = %v, want ErrInvalidTopK", topK, err)
		}
	}
}

func TestIndex_Search_InvalidMaxDistance(t *testing.T) {
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat"}})

	for _, d := range []int{-1, MaxFuzzyDistance + 1, 100} {
		_, err := idx.Search("cat", SearchOptions{TopK: 10, MaxDistance: d})
		if err != ErrInvalidMaxDistance {
			t.Errorf("Search(MaxDistance=%d) error = %v, want ErrInvalidMaxDistance", d, err)
		}
	}
}

func TestIndex_Search_ValidationPrecedesWork(t *testing.T) {
	// Invalid options fail even when the query would be a no-op anyway.
	idx := buildTestIndex(t, []Document{{ID: 1, Text: "cat"}})

	if _, err := idx.Search("", SearchOptions{TopK: 0}); err != ErrInvalidTopK {
		t.Errorf("empty query with TopK=0 error = %v, want ErrInvalidTopK", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH TESTS: Determinism
// ═══════════════════════════════════════════════════════════════════════════════

func TestIndex_Search_Deterministic(t *testing.T) {
	docs := make([]Document, 30)
	for i := range docs {
		docs[i] = Document{ID: i, Text: fmt.Sprintf("topic %d shared corpus words number%d", i%5, i)}
	}
	idx := buildTestIndex(t, docs)

	first, err := idx.Search("shared topic nmber3", SearchOptions{TopK: 10, MaxDistance: 1})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := idx.Search("shared topic nmber3", SearchOptions{TopK: 10, MaxDistance: 1})
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("Search() not deterministic:\n  first:  %v\n  again:  %v", first, again)
		}
	}
}

func docIDs(results []Result) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

// ═══════════════════════════════════════════════════════════════════════════════
// BENCHMARKS
// ═══════════════════════════════════════════════════════════════════════════════

func BenchmarkSearch(b *testing.B) {
	docs := make([]Document, 1000)
	for i := range docs {
		docs[i] = Document{ID: i, Text: fmt.Sprintf("document %d covers topic %d and subject %d", i, i%17, i%31)}
	}
	idx, err := Build(docs)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search("topic subject", SearchOptions{TopK: 10}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchFuzzy(b *testing.B) {
	docs := make([]Document, 1000)
	for i := range docs {
		docs[i] = Document{ID: i, Text: fmt.Sprintf("document %d covers topic %d and subject %d", i, i%17, i%31)}
	}
	idx, err := Build(docs)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search("topci subjct", SearchOptions{TopK: 10, MaxDistance: 2}); err != nil {
			b.Fatal(err)
		}
	}
}
