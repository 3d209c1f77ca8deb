package fleep_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fleepio/fleep-mcp/internal/fleep"
	"github.com/fleepio/fleep-mcp/internal/instrumentation"
	"github.com/fleepio/fleep-mcp/internal/server"
	"github.com/fleepio/fleep-mcp/internal/tools/common"
)

// RegisterConversationTools registers conversation creation and lookup tools
func RegisterConversationTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Create conversation tool (requires write permissions)
	createTool := mcp.NewTool("fleep_create_conversation",
		mcp.WithDescription("Create a new Fleep conversation, optionally with a topic and initial members"),
		mcp.WithString("topic",
			mcp.Description("Topic for the new conversation"),
		),
		mcp.WithString("member_emails",
			mcp.Description("Comma-separated email addresses of members to invite (e.g., 'a@example.com, b@example.com')"),
		),
		mcp.WithBoolean("is_invite",
			mcp.Description("Send invitations to members (default: true)"),
		),
		mcp.WithBoolean("is_autojoin",
			mcp.Description("Allow members to join via the conversation link without accepting (default: false)"),
		),
	)

	if readOnly {
		s.AddTool(createTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Cannot create conversations in read-only mode. Use --yolo flag to enable write operations."), nil
		})
	} else {
		s.AddTool(createTool, common.InstrumentedToolHandlerWithOperation(
			"fleep_create_conversation", instrumentation.OperationCreate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateConversation(ctx, request, sc)
			}))
	}

	// Conversation info tool (read-only)
	infoTool := mcp.NewTool("fleep_get_conversation_info",
		mcp.WithDescription("Fetch the current state of a Fleep conversation, including topic, members and labels"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("ID of the conversation to look up"),
		),
		mcp.WithString("detail_level",
			mcp.Description("Detail level: 'ic_header' for header only or 'ic_full' for messages and members (default: 'ic_header')"),
		),
	)

	s.AddTool(infoTool, common.InstrumentedToolHandlerWithOperation(
		"fleep_get_conversation_info", instrumentation.OperationSync, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetConversationInfo(ctx, request, sc)
		}))

	return nil
}

// handleCreateConversation handles the fleep_create_conversation tool
func handleCreateConversation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	// is_invite defaults to true; members are invited unless explicitly
	// added without invitation.
	params := fleep.CreateConversationParams{IsInvite: true}
	if topic, ok := args["topic"].(string); ok {
		params.Topic = topic
	}
	if emails, ok := args["member_emails"].(string); ok {
		params.MemberEmails = splitCommaSeparated(emails)
	}
	if isInvite, ok := args["is_invite"].(bool); ok {
		params.IsInvite = isInvite
	}
	if isAutojoin, ok := args["is_autojoin"].(bool); ok {
		params.IsAutojoin = isAutojoin
	}

	client, err := getFleepClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.CreateConversation(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create conversation: %v", err)), nil
	}

	convID, _ := result["conversation_id"].(string)
	if convID == "" {
		if header, ok := result["header"].(map[string]any); ok {
			convID, _ = header["conversation_id"].(string)
		}
	}

	if convID != "" {
		return mcp.NewToolResultText(fmt.Sprintf("Successfully created conversation %s", convID)), nil
	}
	return mcp.NewToolResultText("Successfully created conversation"), nil
}

// handleGetConversationInfo handles the fleep_get_conversation_info tool
func handleGetConversationInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	conversationID, ok := args["conversation_id"].(string)
	if !ok || conversationID == "" {
		return mcp.NewToolResultError("Missing or invalid 'conversation_id' parameter"), nil
	}

	detailLevel := fleep.DetailLevelHeader
	if level, ok := args["detail_level"].(string); ok && level != "" {
		if level != fleep.DetailLevelHeader && level != fleep.DetailLevelFull {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid 'detail_level' parameter: %q (must be %q or %q)",
				level, fleep.DetailLevelHeader, fleep.DetailLevelFull)), nil
		}
		detailLevel = level
	}

	client, err := getFleepClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.GetConversationInfo(ctx, conversationID, detailLevel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get conversation info: %v", err)), nil
	}

	formatted, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format conversation info: %v", err)), nil
	}

	return mcp.NewToolResultText(string(formatted)), nil
}
