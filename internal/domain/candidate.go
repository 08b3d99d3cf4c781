package domain

// Region is a coarse classification of a book edition's publishing region.
// It is heuristic - a display-ordering hint, never ground truth.
type Region string

// Known regions, in preference order.
const (
	RegionHK    Region = "HK"
	RegionTW    Region = "TW"
	RegionCN    Region = "CN"
	RegionEN    Region = "EN"
	RegionOther Region = "OTHER"
)

// Rank returns the fixed sort priority for search ranking:
// HK(1) < TW(2) < CN(3) < EN(4) < OTHER(5) < unknown(6).
func (r Region) Rank() int {
	switch r {
	case RegionHK:
		return 1
	case RegionTW:
		return 2
	case RegionCN:
		return 3
	case RegionEN:
		return 4
	case RegionOther:
		return 5
	default:
		return 6
	}
}

// Candidate source tags. Local candidates reference an existing Book by ID;
// external candidates carry the source's own identifier.
const (
	SourceLocal       = "local"
	SourceGoogleBooks = "googlebooks"
	SourceOpenLibrary = "openlibrary"
)

// BookCandidate is an ephemeral search result. It is never persisted:
// saving one materializes a Book with a 1:1 field mapping, and selecting a
// local one resolves to the existing Book by ID.
type BookCandidate struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	PublishYear string `json:"publish_year,omitempty"`
	Language    string `json:"language,omitempty"`
	RegionHint  Region `json:"region_hint,omitempty"`
	ISBN10      string `json:"isbn10,omitempty"`
	ISBN13      string `json:"isbn13,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`

	// Exactly one of these identifies the candidate.
	BookID   string `json:"book_id,omitempty"`   // local catalog hit
	SourceID string `json:"source_id,omitempty"` // external record
}

// IsLocal reports whether the candidate resolves to an existing catalog book.
func (c *BookCandidate) IsLocal() bool {
	return c.BookID != ""
}

// MetadataScore measures metadata completeness for keyword-mode dedup:
// ISBN-13 weighs 2, each of author/publisher/year/ISBN-10/cover/region 1.
func (c *BookCandidate) MetadataScore() int {
	score := 0
	if c.ISBN13 != "" {
		score += 2
	}
	if c.Author != "" {
		score++
	}
	if c.Publisher != "" {
		score++
	}
	if c.PublishYear != "" {
		score++
	}
	if c.ISBN10 != "" {
		score++
	}
	if c.CoverURL != "" {
		score++
	}
	if c.RegionHint != "" {
		score++
	}
	return score
}

// CandidateFromBook converts a catalog book into a local candidate.
func CandidateFromBook(b *Book) BookCandidate {
	return BookCandidate{
		Source:      SourceLocal,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		PublishYear: b.PublishYear,
		Language:    b.Language,
		RegionHint:  b.RegionHint,
		ISBN10:      b.ISBN10,
		ISBN13:      b.ISBN13,
		CoverURL:    b.CoverURL,
		BookID:      b.ID,
	}
}
