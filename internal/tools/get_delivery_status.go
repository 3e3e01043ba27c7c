package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GetDeliveryStatusTool looks up provider-side status for a past delivery
type GetDeliveryStatusTool struct {
	client DeliveryClient
	logger *logrus.Logger
}

// NewGetDeliveryStatusTool creates a new delivery status tool
func NewGetDeliveryStatusTool(client DeliveryClient, logger *logrus.Logger) *GetDeliveryStatusTool {
	return &GetDeliveryStatusTool{
		client: client,
		logger: logger,
	}
}

// Name returns the tool name
func (t *GetDeliveryStatusTool) Name() string {
	return "get_delivery_status"
}

// Description returns the tool description
func (t *GetDeliveryStatusTool) Description() string {
	return "Look up the status of a previous Blastengine delivery by its delivery ID"
}

// InputSchema returns the JSON schema for tool inputs
func (t *GetDeliveryStatusTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"delivery_id": map[string]interface{}{
				"type":        "string",
				"description": "Delivery ID returned by a previous send",
			},
		},
		"required": []string{"delivery_id"},
	}
}

// Execute executes the tool
func (t *GetDeliveryStatusTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	deliveryID := stringParam(params, "delivery_id")
	if deliveryID == "" {
		return nil, fmt.Errorf("delivery_id is required")
	}

	status, err := t.client.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery status: %w", err)
	}

	return map[string]interface{}{
		"delivery_id":      deliveryID,
		"delivery_type":    status.DeliveryType,
		"status":           status.Status,
		"total_count":      status.TotalCount,
		"sent_count":       status.SentCount,
		"drop_count":       status.DropCount,
		"hard_error_count": status.HardErrorCount,
		"soft_error_count": status.SoftErrorCount,
		"delivery_time":    status.DeliveryTime,
		"reservation_time": status.ReservationTime,
		"scheduled":        status.ReservationTime != "",
	}, nil
}
