package fleep

import (
	"context"
	"fmt"
	"net/http"
)

// Detail levels for conversation sync. The header level is enough for
// label and topic lookups; the full level includes messages and members.
const (
	DetailLevelHeader = "ic_header"
	DetailLevelFull   = "ic_full"
)

// CreateConversationParams holds the parameters for creating a conversation.
type CreateConversationParams struct {
	// Topic is the optional conversation topic
	Topic string

	// MemberEmails are email addresses to add to the conversation
	MemberEmails []string

	// IsInvite controls whether members receive an invitation
	IsInvite bool

	// IsAutojoin controls whether members join without accepting
	IsAutojoin bool
}

// CreateConversation creates a new conversation and returns the API
// response body.
func (c *Client) CreateConversation(ctx context.Context, params CreateConversationParams) (map[string]any, error) {
	body := map[string]any{
		"is_invite":   params.IsInvite,
		"is_autojoin": params.IsAutojoin,
	}
	if params.Topic != "" {
		body["topic"] = params.Topic
	}
	if len(params.MemberEmails) > 0 {
		body["emails"] = params.MemberEmails
	}

	return c.Request(ctx, http.MethodPost, "conversation/create", body)
}

// SendMessage posts a message to the given conversation. Attachments are
// optional upload URLs.
func (c *Client) SendMessage(ctx context.Context, conversationID, message string, attachments []string) (map[string]any, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversationID cannot be empty")
	}
	if message == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	body := map[string]any{
		"message": message,
	}
	if len(attachments) > 0 {
		body["attachments"] = attachments
	}

	return c.Request(ctx, http.MethodPost, "message/send/"+conversationID, body)
}

// GetConversationInfo syncs conversation state at the given detail level
// and returns the API response body. An empty detailLevel defaults to the
// header level.
func (c *Client) GetConversationInfo(ctx context.Context, conversationID, detailLevel string) (map[string]any, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversationID cannot be empty")
	}
	if detailLevel == "" {
		detailLevel = DetailLevelHeader
	}

	body := map[string]any{
		"mk_init_mode": detailLevel,
	}

	return c.Request(ctx, http.MethodPost, "conversation/sync/"+conversationID, body)
}

// ConversationLabels describes the labels currently applied to a
// conversation.
type ConversationLabels struct {
	// ConversationID identifies the conversation
	ConversationID string

	// Topic is the conversation topic
	Topic string

	// Labels are the human-readable label strings
	Labels []string

	// LabelIDs are the server-side label identifiers
	LabelIDs []string
}

// GetConversationLabels fetches the conversation header and extracts its
// labels.
func (c *Client) GetConversationLabels(ctx context.Context, conversationID string) (*ConversationLabels, error) {
	result, err := c.GetConversationInfo(ctx, conversationID, DetailLevelHeader)
	if err != nil {
		return nil, err
	}

	labels := &ConversationLabels{ConversationID: conversationID}

	header, ok := result["header"].(map[string]any)
	if !ok {
		return labels, nil
	}
	if id, ok := header["conversation_id"].(string); ok && id != "" {
		labels.ConversationID = id
	}
	if topic, ok := header["topic"].(string); ok {
		labels.Topic = topic
	}
	labels.Labels = stringSlice(header["labels"])
	labels.LabelIDs = stringSlice(header["label_ids"])

	return labels, nil
}

// SetConversationLabels replaces the labels on a conversation. An empty
// slice clears all labels.
func (c *Client) SetConversationLabels(ctx context.Context, conversationID string, labels []string) (map[string]any, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversationID cannot be empty")
	}
	if labels == nil {
		labels = []string{}
	}

	body := map[string]any{
		"labels": labels,
	}

	return c.Request(ctx, http.MethodPost, "conversation/store/"+conversationID, body)
}

// stringSlice converts a decoded JSON array into a string slice, skipping
// non-string elements.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
