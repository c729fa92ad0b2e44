package notes

import (
	"encoding/json"
	"time"
)

// Note is a single user-authored record. Modified is owned by the package:
// it is stamped by NewNote and refreshed by Store.Update, never by callers.
type Note struct {
	Title     string
	Text      string
	Favourite bool

	modified time.Time
}

// NoteOption customizes a note at construction.
type NoteOption func(*Note)

// WithFavourite sets the favourite flag.
func WithFavourite(favourite bool) NoteOption {
	return func(n *Note) {
		n.Favourite = favourite
	}
}

// NewNote builds a note stamped with the current time.
func NewNote(title, text string, opts ...NoteOption) Note {
	n := Note{
		Title:    title,
		Text:     text,
		modified: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// Modified returns when the note was constructed or last updated in a store.
func (n Note) Modified() time.Time {
	return n.modified
}

type noteJSON struct {
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Favourite bool      `json:"favourite"`
	Modified  time.Time `json:"modified"`
}

// MarshalJSON includes the read-only modified timestamp.
func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(noteJSON{
		Title:     n.Title,
		Text:      n.Text,
		Favourite: n.Favourite,
		Modified:  n.modified,
	})
}

// NoteParams is the caller-supplied part of a note, as decoded from requests.
type NoteParams struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	Favourite bool   `json:"favourite"`
}

// Note builds a freshly stamped note from the params.
func (p NoteParams) Note() Note {
	return NewNote(p.Title, p.Text, WithFavourite(p.Favourite))
}
