package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// a token is a run of two or more word characters
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// Tokenize lowercases and NFKC-normalizes text and splits it into word tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(norm.NFKC.String(text))
	return tokenRe.FindAllString(text, -1)
}

func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// relevance computes the cosine similarity of the tf-idf vectors of two
// documents whose vocabulary and document frequencies come from those two
// documents only. Smooth idf: ln((1+n)/(1+df)) + 1 with n = 2.
func relevance(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := a[term]; ok {
			df++
		}
		if _, ok := b[term]; ok {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	// iterate in sorted order so the float sums are reproducible
	termsA := sortedTerms(a)
	normA := 0.0
	for _, term := range termsA {
		w := a[term] * idf(term)
		normA += w * w
	}
	normB := 0.0
	for _, term := range sortedTerms(b) {
		w := b[term] * idf(term)
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	dot := 0.0
	for _, term := range termsA {
		tfB, ok := b[term]
		if !ok {
			continue
		}
		w := idf(term)
		dot += (a[term] * w) * (tfB * w)
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return clip(sim, 0, 1)
}

func sortedTerms(m map[string]float64) []string {
	terms := make([]string, 0, len(m))
	for t := range m {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
