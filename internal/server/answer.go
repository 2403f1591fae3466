package server

import (
	"strings"
	"unicode"

	"github.com/fenggwsx/DocuMind/internal/protocol"
)

// NoAnswer is returned when no paragraph shares a word with the question.
const NoAnswer = "I cannot find this in the document."

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "how": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "why": true, "does": true,
	"this": true, "that": true, "with": true, "from": true, "have": true, "has": true,
	"was": true, "were": true, "will": true, "would": true, "should": true, "there": true,
	"their": true, "about": true, "into": true, "than": true, "then": true, "them": true,
	"often": true, "need": true, "much": true, "many": true, "is": true, "do": true,
}

// Answer picks the paragraph sharing the most distinct words with the
// question. Ties go to the earlier paragraph.
func Answer(paragraphs []string, question string) protocol.ChatResponse {
	terms := keywords(question)
	best, bestScore := -1, 0
	for i, paragraph := range paragraphs {
		words := keywords(paragraph)
		score := 0
		for term := range terms {
			if words[term] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return protocol.ChatResponse{Answer: NoAnswer}
	}
	index := best
	return protocol.ChatResponse{
		Answer:         "According to the document: " + paragraphs[best],
		ReferenceIndex: &index,
	}
}

func keywords(text string) map[string]bool {
	out := make(map[string]bool)
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, field := range fields {
		if len([]rune(field)) < 3 || stopWords[field] {
			continue
		}
		out[stem(field)] = true
	}
	return out
}

// stem folds the most common English inflections so "requires" and
// "required" meet at "requir".
func stem(word string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= 4 {
			return strings.TrimSuffix(word, suffix)
		}
	}
	return word
}
