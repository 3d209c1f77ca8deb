// Package fleep_tools provides MCP tools for Fleep messaging operations.
//
// This package exposes Fleep conversation capabilities through the Model
// Context Protocol (MCP), allowing AI agents to create conversations, send
// messages and manage labels. It wraps the fleep client package and provides
// the following tools:
//
//   - fleep_create_conversation: Create a new conversation with optional topic and members
//   - fleep_send_message: Send a message to a conversation
//   - fleep_get_conversation_info: Fetch the current state of a conversation
//   - fleep_get_conversation_labels: List the labels on a conversation
//   - fleep_set_conversation_labels: Replace the labels on a conversation
//
// Prerequisites:
// The server must be started with FLEEP_EMAIL and FLEEP_PASSWORD set; the
// fleep client authenticates lazily on the first tool call and transparently
// re-authenticates when the session expires.
//
// Write tools (create, send, set labels) are disabled unless the server runs
// with the --yolo flag.
//
// Example MCP tool call:
//
//	{
//	  "tool": "fleep_send_message",
//	  "arguments": {
//	    "conversation_id": "4a1b2c3d-0000-1111-2222-333344445555",
//	    "message": "Hello from Fleep MCP!"
//	  }
//	}
package fleep_tools
