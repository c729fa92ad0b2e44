package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

func indexProperty(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": description,
	}
}

func noteProperties() map[string]any {
	return map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "The note title",
		},
		"text": map[string]any{
			"type":        "string",
			"description": "The note body (markdown)",
		},
		"favourite": map[string]any{
			"type":        "boolean",
			"description": "Whether the note is marked as a favourite (default false)",
		},
	}
}

func withIndex(props map[string]any, description string) map[string]any {
	props["index"] = indexProperty(description)
	return props
}

// NoteToolDefinitions returns the notes MCP tool definitions.
func NoteToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "note_list",
			Description: "List every note in order with its 0-based index, title, favourite flag, modified time and a short preview of the text. Indexes shift when notes are inserted, removed or moved, so list again before acting on an index you did not just receive.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "note_get",
			Description: "Read one note in full. The text is returned with cat -n style line numbers. Fails with an out-of-range error if index is not between 0 and count-1.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"index": indexProperty("0-based position of the note"),
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "note_add",
			Description: "Append a new note to the end of the list. Returns its index.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": noteProperties(),
				"required":   []string{"title"},
			},
		},
		{
			Name:        "note_insert",
			Description: "Insert a new note so it ends up at index, shifting later notes down by one. index may equal the current count to append. Fails with an out-of-range error otherwise.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": withIndex(noteProperties(), "0-based position for the new note (0..count)"),
				"required":   []string{"index", "title"},
			},
		},
		{
			Name:        "note_update",
			Description: "Replace the note at index with the given title, text and favourite flag. The modified time is set by the server. Fails with an out-of-range error if index is not between 0 and count-1.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": withIndex(noteProperties(), "0-based position of the note to replace"),
				"required":   []string{"index", "title"},
			},
		},
		{
			Name:        "note_remove",
			Description: "Delete the note at index, shifting later notes up by one. Fails with an out-of-range error if index is not between 0 and count-1.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"index": indexProperty("0-based position of the note to delete"),
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "note_move",
			Description: "Move the note at from so that it ends up at to. Both must be between 0 and count-1.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"from": indexProperty("current 0-based position"),
					"to":   indexProperty("target 0-based position"),
				},
				"required": []string{"from", "to"},
			},
		},
		{
			Name:        "note_clear",
			Description: "Delete every note. This cannot be undone.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
