package normalize

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords are excluded from keyword candidates and break n-gram runs.
var stopWords = map[string]struct{}{
	"of": {}, "to": {}, "in": {}, "it": {}, "is": {}, "be": {},
	"as": {}, "at": {}, "so": {}, "we": {}, "he": {}, "by": {},
	"or": {}, "on": {}, "do": {}, "if": {}, "me": {}, "my": {},
	"up": {}, "an": {}, "go": {}, "no": {}, "us": {}, "am": {},
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {},
	"now": {}, "old": {}, "see": {}, "two": {}, "way": {}, "who": {},
	"did": {}, "man": {}, "men": {}, "put": {}, "say": {}, "she": {},
	"too": {}, "use": {}, "this": {}, "that": {}, "with": {}, "have": {},
	"will": {}, "from": {}, "they": {}, "been": {}, "were": {}, "said": {},
	"each": {}, "which": {}, "their": {}, "about": {}, "would": {},
	"there": {}, "what": {}, "when": {}, "your": {}, "more": {},
	"some": {}, "them": {}, "than": {}, "then": {}, "these": {},
	"other": {}, "into": {}, "could": {}, "also": {}, "just": {},
	"like": {}, "over": {}, "only": {}, "very": {}, "most": {},
}

type keywordCandidate struct {
	phrase    string
	frequency int
	wordCount int
	firstSeen int
}

// ExtractKeywords returns the topK most relevant keywords of text,
// relevance-ranked. Candidates are single tokens plus two- and
// three-word phrases that repeat; multi-word phrases rank above single
// tokens of equal frequency. The ranking is deterministic for a fixed
// input.
func ExtractKeywords(text string, topK int) []string {
	if topK <= 0 {
		return nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	candidates := map[string]*keywordCandidate{}
	record := func(phrase string, wordCount, position int) {
		if c, ok := candidates[phrase]; ok {
			c.frequency++
			return
		}
		candidates[phrase] = &keywordCandidate{
			phrase:    phrase,
			frequency: 1,
			wordCount: wordCount,
			firstSeen: position,
		}
	}

	for i, tok := range tokens {
		record(tok, 1, i)
	}
	for i := 0; i+1 < len(tokens); i++ {
		record(tokens[i]+" "+tokens[i+1], 2, i)
	}
	for i := 0; i+2 < len(tokens); i++ {
		record(tokens[i]+" "+tokens[i+1]+" "+tokens[i+2], 3, i)
	}

	ranked := make([]*keywordCandidate, 0, len(candidates))
	for _, c := range candidates {
		// Repeating phrases only; a one-off n-gram carries no signal.
		if c.wordCount > 1 && c.frequency < 2 {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].frequency*ranked[i].wordCount, ranked[j].frequency*ranked[j].wordCount
		if si != sj {
			return si > sj
		}
		if ranked[i].wordCount != ranked[j].wordCount {
			return ranked[i].wordCount > ranked[j].wordCount
		}
		return ranked[i].firstSeen < ranked[j].firstSeen
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	keywords := make([]string, len(ranked))
	for i, c := range ranked {
		keywords[i] = c.phrase
	}
	return keywords
}

// tokenize lowercases text and splits it into non-stop-word tokens.
// Single characters are dropped; two-letter terms survive so domain
// acronyms like "ai" stay extractable.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
