// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis turns raw text into the normalized terms stored in the index.
// The same pipeline runs at build time and at query time, so a query token is
// guaranteed to be comparable with the vocabulary.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Segmentation   → UAX#29 word segmentation (Unicode-aware)
//  2. Normalization  → NFKC fold + lowercase, strip boundary punctuation
//  3. Stop word removal → drop common words ("the", "a", ...)        [optional]
//  4. Length filtering  → drop very short tokens                     [optional]
//  5. Stemming       → reduce words to root form ("running" → "run") [optional]
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "The Quick Brown Fox Jumps!"
// Step 1: ["The", "Quick", "Brown", "Fox", "Jumps"]
// Step 2: ["the", "quick", "brown", "fox", "jumps"]
// Step 3: ["quick", "brown", "fox", "jumps"]
// Step 4: ["quick", "brown", "fox", "jumps"]
// Step 5: ["quick", "brown", "fox", "jump"]
//
// Analysis is a pure function of its inputs: no shared state is touched, so
// any number of goroutines may analyze text concurrently.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	snowballeng "github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// AnalyzerConfig holds configuration options for text analysis.
//
// The zero value disables every optional stage; use DefaultAnalyzerConfig for
// the standard pipeline. An Index remembers the config it was built with and
// applies the identical pipeline to queries.
type AnalyzerConfig struct {
	MinTokenLength  int  // Minimum token length (in runes) to keep (default: 2)
	EnableStemming  bool // Whether to apply Snowball stemming (default: true)
	EnableStopwords bool // Whether to remove English stopwords (default: true)
}

// DefaultAnalyzerConfig returns the standard analyzer configuration.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Analyze transforms raw text into normalized terms using the default pipeline.
//
// Example:
//
//	terms := Analyze("The quick brown fox jumps over the lazy dog")
//	// Returns: ["quick", "brown", "fox", "jump", "lazi", "dog"]
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultAnalyzerConfig())
}

// AnalyzeWithConfig transforms text using a custom configuration.
//
// Deterministic: the same text and config always yield the same term sequence
// in the same order. Empty or whitespace-only text yields an empty slice.
func AnalyzeWithConfig(text string, config AnalyzerConfig) []string {
	tokens := segment(text)
	tokens = normalizeFilter(tokens)

	if config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, config.MinTokenLength)

	if config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// segment splits text into word candidates using UAX#29 word segmentation.
//
// UAX#29 emits every segment, including whitespace runs and punctuation, so
// segments that carry no letter or digit are dropped here. This is what
// collapses whitespace and discards standalone punctuation:
//
//	"hello-world"    → ["hello", "world"]
//	"price: $9.99"   → ["price", "9.99"]
//	"café au lait"   → ["café", "au", "lait"]
func segment(text string) []string {
	var tokens []string
	segments := words.FromString(text)
	for segments.Next() {
		token := segments.Value()
		if hasAlphanumeric(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// hasAlphanumeric reports whether the token contains at least one letter or digit.
func hasAlphanumeric(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// normalizeFilter canonicalizes each token: NFKC normalization, lowercase
// folding, and stripping of non-alphanumeric boundary characters.
//
// NFKC folds compatibility variants (full-width forms, ligatures) onto their
// canonical code points so that visually equal tokens index identically.
//
// Example:
//
//	["Don't", "（Ｈｅｌｌｏ）"] → ["don't", "hello"]
func normalizeFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(norm.NFKC.String(token))
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if token != "" {
			r = append(r, token)
		}
	}
	return r
}

// stopwordFilter removes common English words that don't add search value.
//
// Words like "the", "a", "is" appear in almost every document, so they waste
// index space and don't help distinguish documents.
//
// Example:
//
//	["the", "quick", "brown", "fox"] → ["quick", "brown", "fox"]
func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

// lengthFilter removes tokens shorter than minLength runes.
//
// Example (minLength=2):
//
//	["a", "go", "cat", "i"] → ["go", "cat"]
func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces words to their root form using the Snowball (Porter2)
// English stemmer.
//
// Example:
//
//	["running", "quickly", "foxes"] → ["run", "quick", "fox"]
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

// isStopword checks if a token is a common English stopword.
func isStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}

// englishStopwords contains common English words to exclude from indexing.
//
// Uses struct{} (zero bytes) as the value type: the map is a set.
var englishStopwords = map[string]struct{}{
	"a":            {},
	"about":        {},
	"above":        {},
	"across":       {},
	"after":        {},
	"afterwards":   {},
	"again":        {},
	"against":      {},
	"all":          {},
	"almost":       {},
	"alone":        {},
	"along":        {},
	"already":      {},
	"also":         {},
	"although":     {},
	"always":       {},
	"am":           {},
	"among":        {},
	"amongst":      {},
	"amount":       {},
	"an":           {},
	"and":          {},
	"another":      {},
	"any":          {},
	"anyhow":       {},
	"anyone":       {},
	"anything":     {},
	"anyway":       {},
	"anywhere":     {},
	"are":          {},
	"around":       {},
	"as":           {},
	"at":           {},
	"back":         {},
	"be":           {},
	"became":       {},
	"because":      {},
	"become":       {},
	"becomes":      {},
	"becoming":     {},
	"been":         {},
	"before":       {},
	"beforehand":   {},
	"behind":       {},
	"being":        {},
	"below":        {},
	"beside":       {},
	"besides":      {},
	"between":      {},
	"beyond":       {},
	"both":         {},
	"bottom":       {},
	"but":          {},
	"by":           {},
	"call":         {},
	"can":          {},
	"cannot":       {},
	"co":           {},
	"could":        {},
	"de":           {},
	"do":           {},
	"done":         {},
	"down":         {},
	"due":          {},
	"during":       {},
	"each":         {},
	"eg":           {},
	"eight":        {},
	"either":       {},
	"eleven":       {},
	"else":         {},
	"elsewhere":    {},
	"empty":        {},
	"enough":       {},
	"etc":          {},
	"even":         {},
	"ever":         {},
	"every":        {},
	"everyone":     {},
	"everything":   {},
	"everywhere":   {},
	"except":       {},
	"few":          {},
	"fifteen":      {},
	"first":        {},
	"five":         {},
	"for":          {},
	"former":       {},
	"formerly":     {},
	"forty":        {},
	"found":        {},
	"four":         {},
	"from":         {},
	"front":        {},
	"full":         {},
	"further":      {},
	"get":          {},
	"give":         {},
	"go":           {},
	"had":          {},
	"has":          {},
	"have":         {},
	"he":           {},
	"hence":        {},
	"her":          {},
	"here":         {},
	"hereafter":    {},
	"hereby":       {},
	"herein":       {},
	"hereupon":     {},
	"hers":         {},
	"herself":      {},
	"him":          {},
	"himself":      {},
	"his":          {},
	"how":          {},
	"however":      {},
	"hundred":      {},
	"ie":           {},
	"if":           {},
	"in":           {},
	"inc":          {},
	"indeed":       {},
	"into":         {},
	"is":           {},
	"it":           {},
	"its":          {},
	"itself":       {},
	"keep":         {},
	"last":         {},
	"latter":       {},
	"latterly":     {},
	"least":        {},
	"less":         {},
	"ltd":          {},
	"made":         {},
	"many":         {},
	"may":          {},
	"me":           {},
	"meanwhile":    {},
	"might":        {},
	"mine":         {},
	"more":         {},
	"moreover":     {},
	"most":         {},
	"mostly":       {},
	"move":         {},
	"much":         {},
	"must":         {},
	"my":           {},
	"myself":       {},
	"name":         {},
	"namely":       {},
	"neither":      {},
	"never":        {},
	"nevertheless": {},
	"next":         {},
	"nine":         {},
	"no":           {},
	"nobody":       {},
	"none":         {},
	"noone":        {},
	"nor":          {},
	"not":          {},
	"nothing":      {},
	"now":          {},
	"nowhere":      {},
	"of":           {},
	"off":          {},
	"often":        {},
	"on":           {},
	"once":         {},
	"one":          {},
	"only":         {},
	"onto":         {},
	"or":           {},
	"other":        {},
	"others":       {},
	"otherwise":    {},
	"our":          {},
	"ours":         {},
	"ourselves":    {},
	"out":          {},
	"over":         {},
	"own":          {},
	"part":         {},
	"per":          {},
	"perhaps":      {},
	"please":       {},
	"put":          {},
	"rather":       {},
	"re":           {},
	"same":         {},
	"see":          {},
	"seem":         {},
	"seemed":       {},
	"seeming":      {},
	"seems":        {},
	"several":      {},
	"she":          {},
	"should":       {},
	"show":         {},
	"side":         {},
	"since":        {},
	"six":          {},
	"sixty":        {},
	"so":           {},
	"some":         {},
	"somehow":      {},
	"someone":      {},
	"something":    {},
	"sometime":     {},
	"sometimes":    {},
	"somewhere":    {},
	"still":        {},
	"such":         {},
	"take":         {},
	"ten":          {},
	"than":         {},
	"that":         {},
	"the":          {},
	"their":        {},
	"them":         {},
	"themselves":   {},
	"then":         {},
	"thence":       {},
	"there":        {},
	"thereafter":   {},
	"thereby":      {},
	"therefore":    {},
	"therein":      {},
	"thereupon":    {},
	"these":        {},
	"they":         {},
	"third":        {},
	"this":         {},
	"those":        {},
	"though":       {},
	"three":        {},
	"through":      {},
	"throughout":   {},
	"thru":         {},
	"thus":         {},
	"to":           {},
	"together":     {},
	"too":          {},
	"top":          {},
	"toward":       {},
	"towards":      {},
	"twelve":       {},
	"twenty":       {},
	"two":          {},
	"un":           {},
	"under":        {},
	"until":        {},
	"up":           {},
	"upon":         {},
	"us":           {},
	"very":         {},
	"via":          {},
	"was":          {},
	"we":           {},
	"well":         {},
	"were":         {},
	"what":         {},
	"whatever":     {},
	"when":         {},
	"whence":       {},
	"whenever":     {},
	"where":        {},
	"whereafter":   {},
	"whereas":      {},
	"whereby":      {},
	"wherein":      {},
	"whereupon":    {},
	"wherever":     {},
	"whether":      {},
	"which":        {},
	"while":        {},
	"whither":      {},
	"who":          {},
	"whoever":      {},
	"whole":        {},
	"whom":         {},
	"whose":        {},
	"why":          {},
	"will":         {},
	"with":         {},
	"within":       {},
	"without":      {},
	"would":        {},
	"yet":          {},
	"you":          {},
	"your":         {},
	"yours":        {},
	"yourself":     {},
	"yourselves":   {},
}
