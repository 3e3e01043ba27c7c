package tools

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-blastengine/internal/blastengine"
	"github.com/brandon/mcp-blastengine/internal/config"
	"github.com/brandon/mcp-blastengine/internal/deliverylog"
	"github.com/brandon/mcp-blastengine/internal/files"
	"github.com/brandon/mcp-blastengine/internal/mailer"
)

// DeliveryClient is the provider surface the tools depend on.
type DeliveryClient interface {
	SendTransactional(ctx context.Context, msg *mailer.EmailMessage, atts []mailer.Attachment) (string, error)
	SendBulk(ctx context.Context, msg *mailer.EmailMessage, recipients []string, scheduleAt time.Time, atts []mailer.Attachment) (string, error)
	GetDelivery(ctx context.Context, deliveryID string) (*blastengine.DeliveryStatus, error)
}

// DeliveryRecorder is the local delivery log surface the tools depend on.
type DeliveryRecorder interface {
	Record(e *deliverylog.Entry) error
	Recent(limit int) ([]deliverylog.Entry, error)
}

// Registry manages MCP tools
type Registry struct {
	config     *config.Config
	client     DeliveryClient
	deliveries DeliveryRecorder
	files      files.Resolver
	logger     *logrus.Logger
	tools      map[string]Tool
}

// Tool represents an MCP tool
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// NewRegistry creates a new tool registry
func NewRegistry(cfg *config.Config, client DeliveryClient, deliveries DeliveryRecorder, resolver files.Resolver, logger *logrus.Logger) (*Registry, error) {
	reg := &Registry{
		config:     cfg,
		client:     client,
		deliveries: deliveries,
		files:      resolver,
		logger:     logger,
		tools:      make(map[string]Tool),
	}

	// Register all tools
	reg.registerTools()

	return reg, nil
}

// registerTools registers all available tools
func (r *Registry) registerTools() {
	toolList := []Tool{
		NewSendTransactionalEmailTool(r.config, r.client, r.deliveries, r.files, r.logger),
		NewSendBulkEmailTool(r.config, r.client, r.deliveries, r.files, r.logger),
		NewGetDeliveryStatusTool(r.client, r.logger),
		NewListRecentDeliveriesTool(r.deliveries, r.logger),
	}

	for _, tool := range toolList {
		if tool != nil {
			r.tools[tool.Name()] = tool
			r.logger.WithField("tool", tool.Name()).Debug("Registered tool")
		}
	}

	r.logger.WithField("count", len(r.tools)).Info("Registered tools")
}

// GetTool returns a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools
func (r *Registry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// GetToolDefinitions returns tool definitions for MCP
func (r *Registry) GetToolDefinitions() []map[string]interface{} {
	definitions := make([]map[string]interface{}, 0, len(r.tools))
	for _, tool := range r.tools {
		definitions = append(definitions, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}
	return definitions
}
