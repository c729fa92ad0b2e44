package notes

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kuitang/note-it/internal/logutil"
	"github.com/kuitang/note-it/internal/obs"
)

const logTitleMaxChars = 40

// Store is the ordered, in-memory note collection. One Store is created per
// session and handed to every consumer; it owns the notes it holds.
//
// Mutations hold the write lock for their whole shift, so readers never see a
// partially moved sequence. Failed operations leave the store untouched.
type Store struct {
	mu    sync.RWMutex
	notes []Note
	now   func() time.Time
	log   *slog.Logger
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to stamp updated notes.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides the store logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now: func() time.Time { return time.Now().UTC() },
		log: obs.Pkg("notes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Count returns the number of notes held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Add appends n to the end of the list and returns its index.
func (s *Store) Add(n Note) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
	index := len(s.notes) - 1
	s.log.Debug("note_add", "index", index, "title", logutil.TruncateForLog(n.Title, logTitleMaxChars))
	return index
}

// Get returns a copy of the note at index.
func (s *Store) Get(index int) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkExisting("note_get", index); err != nil {
		return Note{}, err
	}
	return s.notes[index], nil
}

// List returns a copy of every note in order.
func (s *Store) List() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Insert places n at index, shifting notes at index and beyond one later.
// index == Count() appends. It returns the count after the insert.
func (s *Store) Insert(n Note, index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.notes) {
		return len(s.notes), s.outOfRange("note_insert", index)
	}
	s.notes = slices.Insert(s.notes, index, n)
	s.log.Debug("note_insert", "index", index, "title", logutil.TruncateForLog(n.Title, logTitleMaxChars))
	return len(s.notes), nil
}

// Update replaces the note at index with n, stamping it with the store clock.
// It returns the stored copy.
func (s *Store) Update(n Note, index int) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkExisting("note_update", index); err != nil {
		return Note{}, err
	}
	n.modified = s.now()
	s.notes[index] = n
	s.log.Debug("note_update", "index", index, "title", logutil.TruncateForLog(n.Title, logTitleMaxChars))
	return n, nil
}

// Remove deletes the note at index, shifting later notes one earlier. It
// returns the count after the removal.
func (s *Store) Remove(index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkExisting("note_remove", index); err != nil {
		return len(s.notes), err
	}
	s.notes = slices.Delete(s.notes, index, index+1)
	s.log.Debug("note_remove", "index", index, "count", len(s.notes))
	return len(s.notes), nil
}

// Move relocates the note at from so that it ends up at to, and returns
// it. Both indexes must address existing notes. Modified is left as is.
func (s *Store) Move(from, to int) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkExisting("note_move", from); err != nil {
		return Note{}, err
	}
	if err := s.checkExisting("note_move", to); err != nil {
		return Note{}, err
	}
	n := s.notes[from]
	if from == to {
		return n, nil
	}
	s.notes = slices.Delete(s.notes, from, from+1)
	s.notes = slices.Insert(s.notes, to, n)
	s.log.Debug("note_move", "from", from, "to", to)
	return n, nil
}

// Clear removes every note. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.notes)
	s.notes = nil
	s.log.Debug("note_clear", "removed", removed)
}

// checkExisting requires 0 <= index < count. Callers hold the lock.
func (s *Store) checkExisting(op string, index int) error {
	if index < 0 || index >= len(s.notes) {
		return s.outOfRange(op, index)
	}
	return nil
}

func (s *Store) outOfRange(op string, index int) error {
	s.log.Debug("note_index_rejected", "op", op, "index", index, "count", len(s.notes))
	return &OutOfRangeError{Op: op, Index: index}
}
