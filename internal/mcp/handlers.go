package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kuitang/note-it/internal/errs"
	"github.com/kuitang/note-it/internal/notes"
	"github.com/kuitang/note-it/internal/obs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const listPreviewLines = 3

// Handler implements MCP tool call handling over the note store.
type Handler struct {
	store *notes.Store
}

// NewHandler creates a new MCP handler over the given store.
func NewHandler(store *notes.Store) *Handler {
	return &Handler{store: store}
}

// createToolHandler returns a tool handler function for the given tool name.
func (h *Handler) createToolHandler(name string) func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := h.HandleToolCall(ctx, name, args)
		return result, nil, err
	}
}

// HandleToolCall routes tool calls to appropriate handlers.
func (h *Handler) HandleToolCall(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "note_list":
		result, err = h.handleNoteList(arguments)
	case "note_get":
		result, err = h.handleNoteGet(arguments)
	case "note_add":
		result, err = h.handleNoteAdd(arguments)
	case "note_insert":
		result, err = h.handleNoteInsert(arguments)
	case "note_update":
		result, err = h.handleNoteUpdate(arguments)
	case "note_remove":
		result, err = h.handleNoteRemove(arguments)
	case "note_move":
		result, err = h.handleNoteMove(arguments)
	case "note_clear":
		result, err = h.handleNoteClear(arguments)
	default:
		err = errs.New(errs.InvalidArgument, fmt.Sprintf("unknown tool: %s", name))
	}
	if err != nil {
		obs.From(ctx).Debug("mcp_tool_failed", "tool", name, "code", errs.CodeOf(err), "error", err)
		return toolErrorResult(err), nil
	}
	return result, nil
}

type toolErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Index *int   `json:"index,omitempty"`
}

// toolErrorResult reports err to the model as an error result rather than a
// protocol failure, so it can correct the call.
func toolErrorResult(err error) *mcp.CallToolResult {
	payload := toolErrorPayload{
		Error: errs.MessageOf(err),
		Code:  string(errs.CodeOf(err)),
	}
	if index, ok := notes.OutOfRangeIndex(err); ok {
		payload.Index = &index
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: marshalToolJSON(payload)},
		},
		IsError: true,
	}
}

// newToolResultText creates a successful tool result with text content.
func newToolResultText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func marshalToolJSON(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response","detail":%q}`, err.Error())
	}
	return string(data)
}

// decodeToolArgs strictly decodes tool arguments into dst.
func decodeToolArgs(args map[string]any, dst any) error {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "arguments are not valid JSON", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap(errs.InvalidArgument, "invalid arguments: "+err.Error(), err)
	}
	return nil
}

func requireIndex(name string, v *int) (int, error) {
	if v == nil {
		return 0, errs.New(errs.InvalidArgument, name+" is required")
	}
	return *v, nil
}

type noteArgs struct {
	Index     *int   `json:"index,omitempty"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Favourite bool   `json:"favourite"`
}

func (a noteArgs) note() notes.Note {
	return notes.NoteParams{Title: a.Title, Text: a.Text, Favourite: a.Favourite}.Note()
}

type indexArgs struct {
	Index *int `json:"index"`
}

type moveArgs struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type noteListItem struct {
	Index     int       `json:"index"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	Favourite bool      `json:"favourite"`
	Modified  time.Time `json:"modified"`
}

type noteListResult struct {
	Notes []noteListItem `json:"notes"`
	Count int            `json:"count"`
}

type noteViewResult struct {
	Index      int       `json:"index"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	TotalLines int       `json:"total_lines"`
	Favourite  bool      `json:"favourite"`
	Modified   time.Time `json:"modified"`
}

type noteWriteResult struct {
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Count    int       `json:"count"`
	Modified time.Time `json:"modified"`
}

type noteUpdateResult struct {
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Modified time.Time `json:"modified"`
}

type countResult struct {
	Count int `json:"count"`
}

func (h *Handler) handleNoteList(args map[string]any) (*mcp.CallToolResult, error) {
	if err := decodeToolArgs(args, &struct{}{}); err != nil {
		return nil, err
	}
	all := h.store.List()
	items := make([]noteListItem, 0, len(all))
	for i, n := range all {
		items = append(items, noteListItem{
			Index:     i,
			Title:     n.Title,
			Preview:   notes.ContentPreview(n.Text, listPreviewLines),
			Favourite: n.Favourite,
			Modified:  n.Modified(),
		})
	}
	return newToolResultText(marshalToolJSON(noteListResult{Notes: items, Count: len(items)})), nil
}

func (h *Handler) handleNoteGet(args map[string]any) (*mcp.CallToolResult, error) {
	var in indexArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	index, err := requireIndex("index", in.Index)
	if err != nil {
		return nil, err
	}
	n, err := h.store.Get(index)
	if err != nil {
		return nil, err
	}
	return newToolResultText(marshalToolJSON(noteViewResult{
		Index:      index,
		Title:      n.Title,
		Text:       notes.NumberedLines(n.Text),
		TotalLines: notes.CountLines(n.Text),
		Favourite:  n.Favourite,
		Modified:   n.Modified(),
	})), nil
}

func (h *Handler) handleNoteAdd(args map[string]any) (*mcp.CallToolResult, error) {
	var in noteArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Index != nil {
		return nil, errs.New(errs.InvalidArgument, "note_add appends; use note_insert to choose an index")
	}
	n := in.note()
	index := h.store.Add(n)
	return newToolResultText(marshalToolJSON(noteWriteResult{
		Index:    index,
		Title:    n.Title,
		Count:    index + 1,
		Modified: n.Modified(),
	})), nil
}

func (h *Handler) handleNoteInsert(args map[string]any) (*mcp.CallToolResult, error) {
	var in noteArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	index, err := requireIndex("index", in.Index)
	if err != nil {
		return nil, err
	}
	n := in.note()
	count, err := h.store.Insert(n, index)
	if err != nil {
		return nil, err
	}
	return newToolResultText(marshalToolJSON(noteWriteResult{
		Index:    index,
		Title:    n.Title,
		Count:    count,
		Modified: n.Modified(),
	})), nil
}

func (h *Handler) handleNoteUpdate(args map[string]any) (*mcp.CallToolResult, error) {
	var in noteArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	index, err := requireIndex("index", in.Index)
	if err != nil {
		return nil, err
	}
	stored, err := h.store.Update(in.note(), index)
	if err != nil {
		return nil, err
	}
	return newToolResultText(marshalToolJSON(noteUpdateResult{
		Index:    index,
		Title:    stored.Title,
		Modified: stored.Modified(),
	})), nil
}

func (h *Handler) handleNoteRemove(args map[string]any) (*mcp.CallToolResult, error) {
	var in indexArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	index, err := requireIndex("index", in.Index)
	if err != nil {
		return nil, err
	}
	count, err := h.store.Remove(index)
	if err != nil {
		return nil, err
	}
	return newToolResultText(marshalToolJSON(countResult{Count: count})), nil
}

func (h *Handler) handleNoteMove(args map[string]any) (*mcp.CallToolResult, error) {
	var in moveArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	from, err := requireIndex("from", in.From)
	if err != nil {
		return nil, err
	}
	to, err := requireIndex("to", in.To)
	if err != nil {
		return nil, err
	}
	if _, err := h.store.Move(from, to); err != nil {
		return nil, err
	}
	return h.handleNoteList(nil)
}

func (h *Handler) handleNoteClear(args map[string]any) (*mcp.CallToolResult, error) {
	if err := decodeToolArgs(args, &struct{}{}); err != nil {
		return nil, err
	}
	h.store.Clear()
	return newToolResultText(marshalToolJSON(countResult{Count: 0})), nil
}
