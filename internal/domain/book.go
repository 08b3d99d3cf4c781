// Package domain contains the core business entities and domain logic for the Reading KG catalog.
package domain

import "time"

// Book represents a book in the owner's catalog.
// Books are created via manual entry or by saving a search candidate,
// mutated via update/merge, and never hard-deleted.
type Book struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishYear string    `json:"publish_year,omitempty"`
	Language    string    `json:"language,omitempty"`
	RegionHint  Region    `json:"region_hint,omitempty"`
	ISBN10      string    `json:"isbn10,omitempty"`
	ISBN13      string    `json:"isbn13,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	MergedInto  string    `json:"merged_into,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsCanonical reports whether the book is a canonical record.
// A book merged into another is non-canonical: excluded from default
// listings and local search, but still a valid target for historical events.
func (b *Book) IsCanonical() bool {
	return b.MergedInto == ""
}

// BookUpdate carries the mutable fields of a book. Nil pointers leave the
// corresponding field untouched.
type BookUpdate struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	PublishYear *string `json:"publish_year,omitempty"`
	Language    *string `json:"language,omitempty"`
	RegionHint  *Region `json:"region_hint,omitempty"`
	ISBN10      *string `json:"isbn10,omitempty"`
	ISBN13      *string `json:"isbn13,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
}

// Apply copies the set fields onto the book and bumps UpdatedAt.
func (u BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Publisher != nil {
		b.Publisher = *u.Publisher
	}
	if u.PublishYear != nil {
		b.PublishYear = *u.PublishYear
	}
	if u.Language != nil {
		b.Language = *u.Language
	}
	if u.RegionHint != nil {
		b.RegionHint = *u.RegionHint
	}
	if u.ISBN10 != nil {
		b.ISBN10 = *u.ISBN10
	}
	if u.ISBN13 != nil {
		b.ISBN13 = *u.ISBN13
	}
	if u.CoverURL != nil {
		b.CoverURL = *u.CoverURL
	}
	b.UpdatedAt = time.Now().UTC()
}
