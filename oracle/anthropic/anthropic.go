// Package anthropic provides an Oracle implementation for the Anthropic
// Claude Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/oracle"
)

// Options configures the Anthropic oracle adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropicsdk.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Oracle wraps the Anthropic Messages API behind the generic oracle.Oracle interface.
type Oracle struct {
	client *anthropicsdk.Client
	opts   Options
}

// New creates a new Anthropic oracle using the official client.
func New(optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:       anthropicsdk.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropicsdk.NewClient(clientOpts...)

	return &Oracle{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic oracle from an existing client.
func NewFromClient(client *anthropicsdk.Client, optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:       anthropicsdk.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Oracle{client: client, opts: opts}
}

// Complete implements oracle.Oracle with a single non-streaming round.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (*oracle.Response, error) {
	params := anthropicsdk.MessageNewParams{
		Model:       o.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   o.opts.MaxTokens,
		Temperature: anthropicsdk.Float(o.opts.Temperature),
	}

	if system := buildSystemBlocks(req); len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic api error: %v", oracle.ErrUnavailable, err)
	}

	out := &oracle.Response{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			if out.ToolCall != nil {
				continue // at most one capability per round
			}
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			out.ToolCall = &oracle.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			}
		}
	}
	return out, nil
}

// buildMessages converts normalized history entries to Anthropic message
// format. System entries are handled separately; tool-role entries (earlier
// capability results) become user messages.
func buildMessages(history []core.Message) []anthropicsdk.MessageParam {
	var messages []anthropicsdk.MessageParam
	for _, m := range history {
		if m.Role == core.RoleSystem || m.Content == "" {
			continue
		}
		switch m.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(m.Content)))
		case core.RoleTool:
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock("[capability result] "+m.Content)))
		default:
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		}
	}
	return messages
}

// buildSystemBlocks merges the request instructions and any system-role
// history entries into Anthropic system blocks.
func buildSystemBlocks(req oracle.Request) []anthropicsdk.TextBlockParam {
	var blocks []anthropicsdk.TextBlockParam
	if req.Instructions != "" {
		blocks = append(blocks, anthropicsdk.TextBlockParam{Text: req.Instructions})
	}
	for _, m := range req.Messages {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, anthropicsdk.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// buildTools converts oracle tool definitions to Anthropic tool format.
func buildTools(tools []oracle.ToolDefinition) []anthropicsdk.ToolUnionParam {
	anthropicTools := make([]anthropicsdk.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropicsdk.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if tdef.Parameters != nil {
			if properties, exists := tdef.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := tdef.Parameters["required"]; exists {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					var reqStrings []string
					for _, r := range req {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}
		anthropicTools[i] = anthropicsdk.ToolUnionParamOfTool(inputSchema, tdef.Name)
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic oracle implementation.
func (o *Oracle) Info() oracle.Info {
	return oracle.Info{
		Name:          string(o.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
