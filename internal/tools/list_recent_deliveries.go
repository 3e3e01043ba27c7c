package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ListRecentDeliveriesTool lists recent sends from the local delivery log
type ListRecentDeliveriesTool struct {
	deliveries DeliveryRecorder
	logger     *logrus.Logger
}

// NewListRecentDeliveriesTool creates a new recent deliveries tool
func NewListRecentDeliveriesTool(deliveries DeliveryRecorder, logger *logrus.Logger) *ListRecentDeliveriesTool {
	return &ListRecentDeliveriesTool{
		deliveries: deliveries,
		logger:     logger,
	}
}

// Name returns the tool name
func (t *ListRecentDeliveriesTool) Name() string {
	return "list_recent_deliveries"
}

// Description returns the tool description
func (t *ListRecentDeliveriesTool) Description() string {
	return "List deliveries recently sent through this plugin (IDs and counts only)"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListRecentDeliveriesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Optional: Maximum number of entries to return (default 20)",
			},
		},
	}
}

// Execute executes the tool
func (t *ListRecentDeliveriesTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	limit := intParam(params, "limit", 20)

	entries, err := t.deliveries.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return map[string]interface{}{
		"deliveries": entries,
		"count":      len(entries),
	}, nil
}
