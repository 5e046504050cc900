package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dateplanner-api/modules/dateplan/entity"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = "You are a thoughtful date planner. Answer only with JSON matching the provided schema."

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint and
// constrains output with a strict JSON schema.
type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model, baseURL string, opts ...option.RequestOption) *OpenAIClient {
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	options = append(options, opts...)
	return &OpenAIClient{client: openai.NewClient(options...), model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

type ideasEnvelope struct {
	Ideas []ideaRecord `json:"ideas"`
}

type selectionsEnvelope struct {
	Selections []selectionRecord `json:"selections"`
}

func (c *OpenAIClient) GenerateIdeas(ctx context.Context, prompt string, count int) ([]entity.IdeaConcept, error) {
	content := fmt.Sprintf("%s\n\nReturn exactly %d ideas.", prompt, count)
	raw, err := c.complete(ctx, content, "date_ideas", "Date idea concepts", listSchema[ideaRecord]("ideas"))
	if err != nil {
		return nil, err
	}

	var out ideasEnvelope
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return toIdeas(out.Ideas, count)
}

func (c *OpenAIClient) SelectEvents(ctx context.Context, req entity.SelectionRequest) ([]entity.Selection, error) {
	content := fmt.Sprintf("%s\n\nReturn exactly %d selections.", req.Prompt, req.Count)
	raw, err := c.complete(ctx, content, "venue_selections", "Chosen venues with times", listSchema[selectionRecord]("selections"))
	if err != nil {
		return nil, err
	}

	var out selectionsEnvelope
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return toSelections(out.Selections, req.Count)
}

func (c *OpenAIClient) complete(ctx context.Context, content, schemaName, description string, schema map[string]any) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(content),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String(description),
					Schema:      schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return raw, nil
}

// listSchema wraps the reflected schema of T as {"<key>": [T]}.
func listSchema[T any](key string) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	item := reflector.Reflect(v)
	item.Version = ""

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			key: map[string]any{
				"type":  "array",
				"items": item,
			},
		},
		"required":             []string{key},
		"additionalProperties": false,
	}
}
