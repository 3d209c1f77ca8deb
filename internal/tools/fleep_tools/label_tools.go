package fleep_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fleepio/fleep-mcp/internal/instrumentation"
	"github.com/fleepio/fleep-mcp/internal/server"
	"github.com/fleepio/fleep-mcp/internal/tools/common"
)

// RegisterLabelTools registers conversation label tools
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Get labels tool (read-only)
	getLabelsTool := mcp.NewTool("fleep_get_conversation_labels",
		mcp.WithDescription("List the labels currently applied to a Fleep conversation"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("ID of the conversation to inspect"),
		),
	)

	s.AddTool(getLabelsTool, common.InstrumentedToolHandlerWithOperation(
		"fleep_get_conversation_labels", instrumentation.OperationSync, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetConversationLabels(ctx, request, sc)
		}))

	// Set labels tool (requires write permissions)
	setLabelsTool := mcp.NewTool("fleep_set_conversation_labels",
		mcp.WithDescription("Replace the labels on a Fleep conversation. An empty list clears all labels."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("ID of the conversation to update"),
		),
		mcp.WithString("labels",
			mcp.Description("Comma-separated labels to apply (e.g., 'work, urgent'). Omit to clear all labels."),
		),
	)

	if readOnly {
		s.AddTool(setLabelsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Cannot modify labels in read-only mode. Use --yolo flag to enable write operations."), nil
		})
	} else {
		s.AddTool(setLabelsTool, common.InstrumentedToolHandlerWithOperation(
			"fleep_set_conversation_labels", instrumentation.OperationStoreLabel, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleSetConversationLabels(ctx, request, sc)
			}))
	}

	return nil
}

// handleGetConversationLabels handles the fleep_get_conversation_labels tool
func handleGetConversationLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conversationID, ok := args["conversation_id"].(string)
	if !ok || conversationID == "" {
		return mcp.NewToolResultError("Missing or invalid 'conversation_id' parameter"), nil
	}

	client, err := getFleepClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.GetConversationLabels(ctx, conversationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get conversation labels: %v", err)), nil
	}

	if len(labels.Labels) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Conversation %s has no labels", labels.ConversationID)), nil
	}

	result := fmt.Sprintf("Conversation %s has %d label(s): %s",
		labels.ConversationID, len(labels.Labels), strings.Join(labels.Labels, ", "))
	if labels.Topic != "" {
		result += fmt.Sprintf("\nTopic: %s", labels.Topic)
	}

	return mcp.NewToolResultText(result), nil
}

// handleSetConversationLabels handles the fleep_set_conversation_labels tool
func handleSetConversationLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conversationID, ok := args["conversation_id"].(string)
	if !ok || conversationID == "" {
		return mcp.NewToolResultError("Missing or invalid 'conversation_id' parameter"), nil
	}

	var labels []string
	if labelsStr, ok := args["labels"].(string); ok {
		labels = splitCommaSeparated(labelsStr)
	}

	client, err := getFleepClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := client.SetConversationLabels(ctx, conversationID, labels); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set conversation labels: %v", err)), nil
	}

	if len(labels) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Successfully cleared all labels on conversation %s", conversationID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully set %d label(s) on conversation %s: %s",
		len(labels), conversationID, strings.Join(labels, ", "))), nil
}
