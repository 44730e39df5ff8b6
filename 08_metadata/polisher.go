package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/types"

	"github.com/invopop/jsonschema"
	"github.com/sashabaranov/go-openai"
)

const polishSystemPrompt = `You are a YouTube SEO editor for a calm storytelling channel.
Rewrite the given title and description so they read naturally and invite a click without lying.
Keep every timestamp line and every hashtag exactly as given.

You MUST respond with ONLY valid JSON matching this schema:
%s`

type polishJSON struct {
	Title       string   `json:"title" jsonschema_description:"Video title, under 100 characters"`
	Description string   `json:"description" jsonschema_description:"Full description including any chapter lines and hashtags"`
	Tags        []string `json:"tags" jsonschema_description:"Up to 30 search tags"`
}

func generateSchema[T any]() string {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	data, _ := json.Marshal(reflector.Reflect(v))
	return string(data)
}

var polishSchema = generateSchema[polishJSON]()

// Polisher rewrites template metadata through an OpenAI-compatible endpoint (Groq)
type Polisher struct {
	client *openai.Client
	model  string
}

// NewPolisher creates a Polisher against metadata.llm_base_url
func NewPolisher(cfg *config.Config) (*Polisher, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}
	return newPolisher(apiKey, cfg.Metadata.LLMBaseURL, cfg.Metadata.LLMModel), nil
}

func newPolisher(apiKey, baseURL, model string) *Polisher {
	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	return &Polisher{client: openai.NewClientWithConfig(oc), model: model}
}

// Polish returns a copy of md with the LLM's title, description and tags.
// Empty fields in the reply keep the template values.
func (p *Polisher) Polish(ctx context.Context, md *types.VideoMetadata, script *types.Script) (*types.VideoMetadata, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(polishSystemPrompt, polishSchema)},
			{Role: openai.ChatMessageRoleUser, Content: polishPrompt(md, script)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	content := cleanJSON(resp.Choices[0].Message.Content)
	var raw polishJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse polish JSON: %w", err)
	}

	out := *md
	if t := strings.TrimSpace(raw.Title); t != "" {
		out.Title = t
	}
	if d := strings.TrimSpace(raw.Description); d != "" {
		out.Description = d + "\n"
	}
	if len(raw.Tags) > 0 {
		out.Tags = raw.Tags[:min(30, len(raw.Tags))]
	}
	return &out, nil
}

func polishPrompt(md *types.VideoMetadata, script *types.Script) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("FORMAT: %s\n", script.Kind))
	sb.WriteString(fmt.Sprintf("TOPIC: %s\n\n", script.Topic))
	sb.WriteString(fmt.Sprintf("TITLE: %s\n\n", md.Title))
	sb.WriteString("DESCRIPTION:\n" + md.Description + "\n")
	sb.WriteString(fmt.Sprintf("TAGS: %s\n\n", strings.Join(md.Tags, ", ")))
	sb.WriteString("Respond ONLY with valid JSON.")
	return sb.String()
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
