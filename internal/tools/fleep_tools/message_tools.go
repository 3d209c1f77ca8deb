package fleep_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fleepio/fleep-mcp/internal/instrumentation"
	"github.com/fleepio/fleep-mcp/internal/server"
	"github.com/fleepio/fleep-mcp/internal/tools/common"
)

// RegisterMessageTools registers Fleep message sending tools
func RegisterMessageTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	sendMessageTool := mcp.NewTool("fleep_send_message",
		mcp.WithDescription("Send a message to a Fleep conversation"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("ID of the conversation to send the message to"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Text message to send"),
		),
		mcp.WithString("attachments",
			mcp.Description("Comma-separated attachment upload URLs to include with the message"),
		),
	)

	// Only register the real handler if not in read-only mode
	if readOnly {
		s.AddTool(sendMessageTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Cannot send messages in read-only mode. Use --yolo flag to enable write operations."), nil
		})
	} else {
		s.AddTool(sendMessageTool, common.InstrumentedToolHandlerWithOperation(
			"fleep_send_message", instrumentation.OperationSend, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleSendMessage(ctx, request, sc)
			}))
	}

	return nil
}

// handleSendMessage handles the fleep_send_message tool
func handleSendMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conversationID, ok := args["conversation_id"].(string)
	if !ok || conversationID == "" {
		return mcp.NewToolResultError("Missing or invalid 'conversation_id' parameter"), nil
	}

	message, ok := args["message"].(string)
	if !ok || message == "" {
		return mcp.NewToolResultError("Missing or invalid 'message' parameter"), nil
	}

	var attachments []string
	if attachmentsStr, ok := args["attachments"].(string); ok {
		attachments = splitCommaSeparated(attachmentsStr)
	}

	client, err := getFleepClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := client.SendMessage(ctx, conversationID, message, attachments); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully sent message to conversation %s", conversationID)), nil
}
