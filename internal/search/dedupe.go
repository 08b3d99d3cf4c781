package search

import (
	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/isbn"
	"github.com/readingkg/readingkg-server/internal/normalize"
)

// dedupeByISBN collapses candidates sharing a normalized ISBN identity
// (ISBN-13, else ISBN-10 converted). First occurrence wins, so local
// candidates beat external ones and source order breaks external ties.
// Candidates without any ISBN are kept as-is.
func dedupeByISBN(candidates []domain.BookCandidate) []domain.BookCandidate {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := isbn.DedupeKey(c.ISBN10, c.ISBN13)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, c)
	}
	return out
}

// dedupeByTitle collapses candidates sharing a normalized title key, keeping
// the one with the richer metadata. The survivor stays at the first
// occurrence's position so ranking remains stable.
func dedupeByTitle(candidates []domain.BookCandidate) []domain.BookCandidate {
	index := make(map[string]int, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := normalize.TitleKey(c.Title)
		if key == "" {
			out = append(out, c)
			continue
		}
		if at, ok := index[key]; ok {
			if c.MetadataScore() > out[at].MetadataScore() {
				out[at] = c
			}
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}
	return out
}
