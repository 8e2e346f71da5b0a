package domain

import (
	"time"

	"github.com/google/uuid"
)

type Bookmark struct {
	UserID    uuid.UUID `db:"user_account_id" json:"user_id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookmarkState string

const (
	BookmarkSaved   BookmarkState = "saved"
	BookmarkUnsaved BookmarkState = "unsaved"
)

// BookmarkSet is the membership view of a user's saved listings.
type BookmarkSet map[uuid.UUID]struct{}

func NewBookmarkSet(ids ...uuid.UUID) BookmarkSet {
	set := make(BookmarkSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s BookmarkSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s BookmarkSet) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
