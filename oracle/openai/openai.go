// Package openai provides an Oracle implementation using the OpenAI Chat
// Completions API (including function/tool calling). It adapts DispatchMesh's
// normalized Request/Response structures into the SDK's message format and
// back. Generation is synchronous; the dispatch loop issues one completion
// per round.
package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/oracle"
)

// Options configure the OpenAI oracle adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Oracle wraps the OpenAI Chat Completions API behind the generic oracle.Oracle interface.
type Oracle struct {
	client *openaisdk.Client
	opts   Options
}

// New creates a new OpenAI oracle using the official client.
func New(optFns ...func(o *Options)) *Oracle {
	client := openaisdk.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI oracle from an existing client.
func NewFromClient(client *openaisdk.Client, optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:               openaisdk.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Oracle{client: client, opts: opts}
}

// Complete implements oracle.Oracle with a single non-streaming round.
// Provider failures are wrapped in oracle.ErrUnavailable so the dispatch
// loop can apply its bounded retry policy.
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (*oracle.Response, error) {
	params := o.buildParams(req, buildMessages(req))

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai api error: %v", oracle.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", oracle.ErrUnavailable)
	}

	ch0 := resp.Choices[0]
	out := &oracle.Response{Text: ch0.Message.Content}
	// At most one capability runs per round; extra calls are dropped.
	if len(ch0.Message.ToolCalls) > 0 {
		tc := ch0.Message.ToolCalls[0]
		out.ToolCall = &oracle.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return out, nil
}

// buildMessages converts normalized history entries into OpenAI chat
// messages. Tool-role entries carry stringified capability results from
// earlier rounds; they are surfaced as user messages so follow-up rounds can
// synthesize across them without provider-specific call-id threading.
func buildMessages(req oracle.Request) []openaisdk.ChatCompletionMessageParamUnion {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openaisdk.SystemMessage(req.Instructions))
	}
	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		case core.RoleTool:
			messages = append(messages, openaisdk.UserMessage("[capability result] "+m.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		}
	}
	return messages
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (o *Oracle) buildParams(
	req oracle.Request,
	messages []openaisdk.ChatCompletionMessageParamUnion,
) openaisdk.ChatCompletionNewParams {
	params := openaisdk.ChatCompletionNewParams{
		Messages:            messages,
		Model:               o.opts.Model,
		Temperature:         openaisdk.Float(o.opts.Temperature),
		MaxCompletionTokens: openaisdk.Int(o.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openaisdk.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openaisdk.ChatCompletionToolParam{
			Type: "function",
			Function: openaisdk.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openaisdk.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// Info returns metadata describing this OpenAI oracle implementation.
func (o *Oracle) Info() oracle.Info {
	return oracle.Info{
		Name:          o.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
