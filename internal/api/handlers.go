package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kuitang/note-it/internal/errs"
	"github.com/kuitang/note-it/internal/notes"
	"github.com/kuitang/note-it/internal/obs"
	"github.com/kuitang/note-it/internal/urlutil"
)

// Handler serves the note store over JSON HTTP.
type Handler struct {
	store        *notes.Store
	previewLines int
	baseURL      string
}

// NewHandler creates a new API handler over the given store. baseURL is the
// fallback origin for Location headers.
func NewHandler(store *notes.Store, previewLines int, baseURL string) *Handler {
	return &Handler{store: store, previewLines: previewLines, baseURL: baseURL}
}

// RegisterRoutes registers all notes API routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /notes", h.ListNotes)
	mux.HandleFunc("GET /notes/count", h.CountNotes)
	mux.HandleFunc("GET /notes/{index}", h.GetNote)
	mux.HandleFunc("GET /notes/{index}/html", h.GetNoteHTML)
	mux.HandleFunc("POST /notes", h.AddNote)
	mux.HandleFunc("POST /notes/{index}", h.InsertNote)
	mux.HandleFunc("PUT /notes/{index}", h.UpdateNote)
	mux.HandleFunc("DELETE /notes/{index}", h.RemoveNote)
	mux.HandleFunc("POST /notes/{index}/move", h.MoveNote)
	mux.HandleFunc("DELETE /notes", h.ClearNotes)
}

// NoteListItem is a note in a list, with a preview instead of the full text.
type NoteListItem struct {
	Index      int       `json:"index"`
	Title      string    `json:"title"`
	Preview    string    `json:"preview"`
	TotalLines int       `json:"total_lines"`
	Favourite  bool      `json:"favourite"`
	Modified   time.Time `json:"modified"`
}

// NoteListResponse is the body of GET /notes.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Count int            `json:"count"`
}

// NoteResponse pairs a note with its position.
type NoteResponse struct {
	Index int        `json:"index"`
	Note  notes.Note `json:"note"`
}

// CountResponse is the body of GET /notes/count.
type CountResponse struct {
	Count int `json:"count"`
}

// MoveRequest is the body of POST /notes/{index}/move.
type MoveRequest struct {
	To *int `json:"to"`
}

// ListNotes handles GET /notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	all := h.store.List()
	items := make([]NoteListItem, 0, len(all))
	for i, n := range all {
		items = append(items, NoteListItem{
			Index:      i,
			Title:      n.Title,
			Preview:    notes.ContentPreview(n.Text, h.previewLines),
			TotalLines: notes.CountLines(n.Text),
			Favourite:  n.Favourite,
			Modified:   n.Modified(),
		})
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Count: len(items)})
}

// CountNotes handles GET /notes/count
func (h *Handler) CountNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CountResponse{Count: h.store.Count()})
}

// GetNote handles GET /notes/{index}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	note, err := h.store.Get(index)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Index: index, Note: note})
}

// GetNoteHTML handles GET /notes/{index}/html - the note text rendered from markdown
func (h *Handler) GetNoteHTML(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	note, err := h.store.Get(index)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(notes.RenderText(note.Text))
}

// AddNote handles POST /notes - appends a note
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeNoteParams(w, r)
	if !ok {
		return
	}
	note := params.Note()
	index := h.store.Add(note)
	h.writeCreated(w, r, index, note)
}

// InsertNote handles POST /notes/{index} - inserts a note at index
func (h *Handler) InsertNote(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	params, ok := decodeNoteParams(w, r)
	if !ok {
		return
	}
	note := params.Note()
	if _, err := h.store.Insert(note, index); err != nil {
		writeStoreError(w, r, err)
		return
	}
	h.writeCreated(w, r, index, note)
}

// UpdateNote handles PUT /notes/{index} - replaces the note at index
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	params, ok := decodeNoteParams(w, r)
	if !ok {
		return
	}
	stored, err := h.store.Update(params.Note(), index)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Index: index, Note: stored})
}

// RemoveNote handles DELETE /notes/{index}
func (h *Handler) RemoveNote(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if _, err := h.store.Remove(index); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles POST /notes/{index}/move - drag-to-reorder
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	from, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.To == nil {
		writeError(w, http.StatusBadRequest, "Target index \"to\" is required")
		return
	}
	note, err := h.store.Move(from, *req.To)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Index: *req.To, Note: note})
}

// ClearNotes handles DELETE /notes - empties the list
func (h *Handler) ClearNotes(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCreated(w http.ResponseWriter, r *http.Request, index int, note notes.Note) {
	w.Header().Set("Location", urlutil.NoteURL(urlutil.Origin(r, h.baseURL), index))
	writeJSON(w, http.StatusCreated, NoteResponse{Index: index, Note: note})
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Note index must be an integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return index, true
}

func decodeNoteParams(w http.ResponseWriter, r *http.Request) (notes.NoteParams, bool) {
	var params notes.NoteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return notes.NoteParams{}, false
	}
	return params, true
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// writeStoreError maps a store error through its code; out-of-range errors
// echo the offending index.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	resp := ErrorResponse{Error: errs.MessageOf(err), Code: string(code)}
	if index, ok := notes.OutOfRangeIndex(err); ok {
		resp.Index = &index
	}
	if !errors.Is(err, notes.ErrOutOfRange) {
		obs.From(r.Context()).Error("store_error", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, errs.HTTPStatus(code), resp)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
