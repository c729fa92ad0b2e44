package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const notesWorkflowPromptName = "notes_workflow"

const notesWorkflowText = `You are managing an ordered list of notes.
Notes are addressed by 0-based index, not by id.
Call note_list first and re-list after any insert, remove or move, since indexes shift.
note_insert accepts index == count to append; note_get, note_update and note_remove do not.
If a tool reports an out-of-range index, list the notes again and retry with a valid index.`

func registerPrompts(mcpServer *mcp.Server) {
	mcpServer.AddPrompt(&mcp.Prompt{
		Name:        notesWorkflowPromptName,
		Title:       "Notes workflow",
		Description: "How to address and edit notes by position.",
	}, notesWorkflowPrompt)
}

func notesWorkflowPrompt(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "How to address and edit notes by position.",
		Messages: []*mcp.PromptMessage{
			{
				Role:    mcp.Role("user"),
				Content: &mcp.TextContent{Text: notesWorkflowText},
			},
		},
	}, nil
}
