package policy

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrNotReady is returned by direct index queries before the corpus has been
// loaded, so "no matches" and "not ready" stay distinguishable.
var ErrNotReady = errors.New("policy index not ready")

const (
	// DefaultTopK is the number of matches returned when the caller does
	// not say otherwise.
	DefaultTopK = 5
	// DefaultMinScore filters out noise matches.
	DefaultMinScore = 0.05

	// minDocFreq drops terms appearing in fewer than this many chunks.
	minDocFreq = 2
	// maxDocFreqRatio drops terms appearing in more than this share of
	// chunks (near-ubiquitous boilerplate).
	maxDocFreqRatio = 0.9

	snippetLen = 350
)

// Match is one scored chunk from a similarity query.
type Match struct {
	ID       string  `json:"id"`
	Section  string  `json:"section"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score"`
}

// QueryResult is the outcome of one FindPolicies call.
type QueryResult struct {
	Matches   []Match `json:"matches"`
	Alignment float64 `json:"alignment_score"`
}

// Reference converts a match into a citation.
func (m Match) Reference() Reference {
	return Reference{ID: m.ID, Section: m.Section, Title: m.Title, Snippet: m.Snippet}
}

// Index answers top-k relevance queries over the policy corpus using a
// term-weighted (TF-IDF) vector model over unigrams and bigrams. It is
// immutable after Build and safe for concurrent readers.
type Index struct {
	chunks []Chunk

	vocab   map[string]int // term -> column
	idf     []float64
	docVecs []map[int]float64 // L2-normalized sparse rows
	ready   bool
}

// NewIndex builds the vector model for the given corpus. An empty corpus
// yields a not-ready index.
func NewIndex(chunks []Chunk) *Index {
	idx := &Index{chunks: chunks}
	if len(chunks) == 0 {
		return idx
	}
	idx.build()
	return idx
}

// Ready reports whether the corpus has been loaded and vectorized.
func (idx *Index) Ready() bool {
	return idx != nil && idx.ready
}

// Chunks returns the loaded corpus.
func (idx *Index) Chunks() []Chunk {
	if idx == nil {
		return nil
	}
	return idx.chunks
}

func (idx *Index) build() {
	n := len(idx.chunks)
	docTerms := make([][]string, n)
	df := map[string]int{}

	for i, c := range idx.chunks {
		terms := ngrams(tokenize(c.Text))
		docTerms[i] = terms

		seen := map[string]struct{}{}
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// Vocabulary: terms within the document-frequency band, in sorted
	// order so column assignment is deterministic.
	maxDF := int(math.Floor(maxDocFreqRatio * float64(n)))
	if maxDF < minDocFreq {
		maxDF = n
	}
	var kept []string
	for t, c := range df {
		if c >= minDocFreq && c <= maxDF {
			kept = append(kept, t)
		}
	}
	sort.Strings(kept)

	idx.vocab = make(map[string]int, len(kept))
	idx.idf = make([]float64, len(kept))
	for col, t := range kept {
		idx.vocab[t] = col
		// Smoothed inverse document frequency.
		idx.idf[col] = math.Log(float64(1+n)/float64(1+df[t])) + 1.0
	}

	idx.docVecs = make([]map[int]float64, n)
	for i, terms := range docTerms {
		idx.docVecs[i] = idx.vectorize(terms)
	}
	idx.ready = true
}

// vectorize maps a term list to an L2-normalized sparse TF-IDF vector.
// Terms outside the vocabulary are ignored.
func (idx *Index) vectorize(terms []string) map[int]float64 {
	vec := map[int]float64{}
	for _, t := range terms {
		if col, ok := idx.vocab[t]; ok {
			vec[col] += idx.idf[col]
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for col := range vec {
			vec[col] /= norm
		}
	}
	return vec
}

// similarities ranks every chunk by cosine similarity to the query,
// multiplied by the chunk's configured weight, descending. Ties keep corpus
// order.
func (idx *Index) similarities(query string) []scoredChunk {
	qVec := idx.vectorize(ngrams(tokenize(query)))

	ranked := make([]scoredChunk, 0, len(idx.chunks))
	for i := range idx.chunks {
		ranked = append(ranked, scoredChunk{
			index: i,
			score: dot(qVec, idx.docVecs[i]) * idx.chunks[i].Weight,
		})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	return ranked
}

type scoredChunk struct {
	index int
	score float64
}

// FindPolicies runs the full query protocol: rank, filter by min score and
// required keywords, suppress near-duplicate (section,title,category) keys,
// bound the scan at 3×topK candidates, then order preferred categories
// first. It is pure: identical query and corpus always yield identical
// output.
func (idx *Index) FindPolicies(query string, topK int, minScore float64) (QueryResult, error) {
	if !idx.Ready() {
		return QueryResult{Matches: []Match{}}, ErrNotReady
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	ranked := idx.similarities(query)
	preferredCats, requiredKeywords := inferIntent(query)

	var preferred, other []Match
	seenKey := map[string]struct{}{}

	for _, sc := range ranked {
		if sc.score < minScore {
			continue
		}

		c := idx.chunks[sc.index]
		if len(requiredKeywords) > 0 && !containsAny(strings.ToLower(c.Text), requiredKeywords) {
			continue
		}

		key := c.Section + "|" + c.Title + "|" + c.Category
		if _, dup := seenKey[key]; dup {
			continue
		}
		seenKey[key] = struct{}{}

		m := Match{
			ID:       c.ID,
			Section:  c.Section,
			Title:    c.Title,
			Snippet:  snippet(c.Text),
			Category: c.Category,
			Weight:   c.Weight,
			Score:    sc.score,
		}
		if len(preferredCats) > 0 && containsString(preferredCats, c.Category) {
			preferred = append(preferred, m)
		} else {
			other = append(other, m)
		}

		if len(preferred)+len(other) >= topK*3 {
			break
		}
	}

	matches := preferred
	if len(matches) < topK {
		needed := topK - len(matches)
		if needed > len(other) {
			needed = len(other)
		}
		matches = append(matches, other[:needed]...)
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}

	if len(matches) == 0 {
		return QueryResult{Matches: []Match{}}, nil
	}

	var sum, maxVal float64
	for _, m := range matches {
		sum += m.Score
		if m.Score > maxVal {
			maxVal = m.Score
		}
	}
	alignment := 0.0
	if maxVal > 0 {
		alignment = math.Min(sum/float64(len(matches))/maxVal, 1.0)
	}

	return QueryResult{Matches: matches, Alignment: alignment}, nil
}

// Matches is the degrading variant used by the main pipeline: a not-ready
// index yields empty matches and zero alignment instead of an error. A
// non-positive minScore falls back to the default.
func (idx *Index) Matches(query string, topK int, minScore float64) QueryResult {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	res, err := idx.FindPolicies(query, topK, minScore)
	if err != nil {
		return QueryResult{Matches: []Match{}}
	}
	return res
}

var tokenRegex = regexp.MustCompile(`\w\w+`)

// tokenize lowercases the text, extracts word tokens of two or more
// characters, and drops stopwords.
func tokenize(text string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ngrams expands a token list into unigrams plus adjacent bigrams.
func ngrams(tokens []string) []string {
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for col, v := range a {
		sum += v * b[col]
	}
	return sum
}

func snippet(text string) string {
	if len(text) > snippetLen {
		return text[:snippetLen]
	}
	return text
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
