package search

import (
	"slices"
	"strings"

	"github.com/poiesic/netsight/core"
)

// tokenizeName splits a name into lowercased words with punctuation trimmed.
func tokenizeName(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}

// containsAllNameWords reports whether every word of query appears in name,
// in any order.
func containsAllNameWords(name, query string) bool {
	queryWords := tokenizeName(query)
	if len(queryWords) == 0 {
		return false
	}

	nameWords := make(map[string]bool)
	for _, word := range tokenizeName(name) {
		nameWords[word] = true
	}

	for _, word := range queryWords {
		if !nameWords[word] {
			return false
		}
	}

	return true
}

// bestNameMatch picks the person whose name best matches query: an exact
// case-insensitive match first, then the shortest name containing every query
// word. Ties go to the lowest ID. Returns nil if nothing matches.
func bestNameMatch(people []*core.Person, query string) *core.Person {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var matches []*core.Person
	for _, p := range people {
		if p == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.Name), query) {
			return p
		}
		if containsAllNameWords(p.Name, query) || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	return slices.MinFunc(matches, func(a, b *core.Person) int {
		if d := len(a.Name) - len(b.Name); d != 0 {
			return d
		}
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
}
