// Package google provides a model adapter for the Google Gemini API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
	"google.golang.org/genai"
)

// Options configures the Gemini model adapter (model id, temperature,
// max output tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int32
	APIKey          string
}

// Model wraps the Google GenAI API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model using the official client. Without an
// explicit APIKey the client falls back to the GEMINI_API_KEY environment
// variable.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           "gemini-2.5-flash-lite",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:           "gemini-2.5-flash-lite",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. It performs one blocking GenerateContent
// call and normalizes the first candidate into a model.Response.
func (m *Model) Generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	contents := buildContents(req.Contents)
	config := m.buildConfig(req)

	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini api error: empty response")
	}

	candidate := resp.Candidates[0]

	var parts []core.Part
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				parts = append(parts, core.TextPart{Text: part.Text})
			}
			if part.FunctionCall != nil {
				args := ""
				if data, err := json.Marshal(part.FunctionCall.Args); err == nil {
					args = string(data)
				}
				// Gemini may omit call ids; fall back to the function name so
				// responses can still be matched to their calls.
				id := part.FunctionCall.ID
				if id == "" {
					id = part.FunctionCall.Name
				}
				parts = append(parts, core.FunctionCallPart{
					FunctionCall: core.FunctionCall{
						ID:        id,
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				})
			}
		}
	}

	out := &model.Response{
		Content:      &core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: mapFinishReason(candidate.FinishReason),
	}

	if resp.UsageMetadata != nil {
		out.Usage = &model.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

// classifyError maps GenAI failures onto the shared failure taxonomy. Errors
// without an API status (network faults, cancelled contexts) pass through
// unclassified and are therefore not retried.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &core.TransientError{
			Class:      core.ClassifyStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Message:    "gemini api error",
			Err:        err,
		}
	}
	return fmt.Errorf("gemini api error: %w", err)
}

// buildConfig assembles the generation config including system instruction
// and tool declarations.
func (m *Model) buildConfig(req *model.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(m.opts.Temperature)),
		MaxOutputTokens: m.opts.MaxOutputTokens,
	}

	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}

	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{
			{FunctionDeclarations: buildDeclarations(req.Tools)},
		}
	}

	return config
}

// buildContents converts normalized contents to Gemini content format.
// Gemini uses role "model" for assistant turns and expects function responses
// inside user turns.
func buildContents(contents []*core.Content) []*genai.Content {
	var out []*genai.Content

	for _, c := range contents {
		if c == nil {
			continue
		}

		role := "user"
		if c.Role == core.RoleAssistant {
			role = "model"
		}

		var parts []*genai.Part
		for _, p := range c.Parts {
			switch part := p.(type) {
			case core.TextPart:
				if part.Text != "" {
					parts = append(parts, &genai.Part{Text: part.Text})
				}
			case core.FunctionCallPart:
				var args map[string]any
				if part.FunctionCall.Arguments != "" {
					// Malformed arguments degrade to an empty map rather than
					// dropping the call from history.
					_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &args)
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   part.FunctionCall.ID,
						Name: part.FunctionCall.Name,
						Args: args,
					},
				})
			case core.FunctionResponsePart:
				fr := part.FunctionResponse
				if fr.Name == "" {
					continue
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:   fr.ID,
						Name: fr.Name,
						Response: map[string]any{
							"content":  functionResponseText(fr),
							"is_error": fr.Error != "",
						},
					},
				})
			}
		}

		if len(parts) > 0 {
			out = append(out, &genai.Content{Role: role, Parts: parts})
		}
	}

	return out
}

// functionResponseText renders a function response payload as text.
func functionResponseText(fr core.FunctionResponse) string {
	if fr.Error != "" {
		return fr.Error
	}
	if s, ok := fr.Response.(string); ok {
		return s
	}
	if data, err := json.Marshal(fr.Response); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", fr.Response)
}

// buildDeclarations converts normalized tool definitions to Gemini function
// declarations.
func buildDeclarations(tools []model.ToolDefinition) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, len(tools))

	for i, tool := range tools {
		declarations[i] = &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  toSchema(tool.Function.Parameters),
		}
	}

	return declarations
}

// toSchema recursively converts a JSON schema map to a Gemini schema.
func toSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	s := &genai.Schema{}

	if t, ok := schema["type"].(string); ok {
		switch t {
		case "string":
			s.Type = genai.TypeString
		case "number":
			s.Type = genai.TypeNumber
		case "integer":
			s.Type = genai.TypeInteger
		case "boolean":
			s.Type = genai.TypeBoolean
		case "array":
			s.Type = genai.TypeArray
		case "object":
			s.Type = genai.TypeObject
		default:
			s.Type = genai.TypeString
		}
	}
	if desc, ok := schema["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]interface{}); ok {
				s.Properties[name] = toSchema(propMap)
			}
		}
	}
	switch required := schema["required"].(type) {
	case []string:
		s.Required = required
	case []interface{}:
		for _, r := range required {
			if rs, ok := r.(string); ok {
				s.Required = append(s.Required, rs)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		s.Items = toSchema(items)
	}
	if enum, ok := schema["enum"].([]interface{}); ok {
		for _, e := range enum {
			if es, ok := e.(string); ok {
				s.Enum = append(s.Enum, es)
			}
		}
	}

	return s
}

// mapFinishReason normalizes Gemini finish reasons onto the shared vocabulary.
func mapFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop, "":
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "max_tokens"
	default:
		return string(reason)
	}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "google",
		SupportsTools: true,
	}
}
