package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kardolus/chatgpt-agent/agent/types"
	"github.com/kardolus/chatgpt-agent/api/http"
	"github.com/kardolus/chatgpt-agent/config"
	"github.com/sashabaranov/go-openai"
)

const (
	ErrNoResponses = "no responses returned"
	gptPrefix      = "gpt"
)

type ChatRequest struct {
	Model       string
	Messages    []types.Message
	Temperature float32
	// JSONMode asks the server for a single JSON object reply.
	JSONMode bool
}

type ChatResponse struct {
	Content string
	Model   string
	Usage   *types.UsageCounters
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	Config config.Config
	api    *openai.Client
}

func New(cfg config.Config, apiKey string) *OpenAIClient {
	oc := openai.DefaultConfig(apiKey)
	if cfg.URL != "" {
		oc.BaseURL = strings.TrimRight(cfg.URL, "/")
	}
	oc.OrgID = cfg.Organization
	oc.HTTPClient = http.New(cfg)

	return &OpenAIClient{
		Config: cfg,
		api:    openai.NewClientWithConfig(oc),
	}
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.Config.Model
	}

	body := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
	}
	// a zero temperature is dropped by omitempty
	if body.Temperature == 0 {
		body.Temperature = math.SmallestNonzeroFloat32
	}
	if req.JSONMode {
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	c.printRequestDebugInfo(body)

	resp, err := c.api.CreateChatCompletion(ctx, body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chat completion: %w", err)
	}

	c.printResponseDebugInfo(resp)

	if len(resp.Choices) == 0 {
		return ChatResponse{}, errors.New(ErrNoResponses)
	}

	return ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   toCounters(resp.Usage),
	}, nil
}

// ListModels returns the chat-capable model IDs sorted by name. The
// configured model is marked with an asterisk.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	models := list.Models
	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	var result []string
	for _, model := range models {
		if !isChatModel(model.ID) {
			continue
		}
		if model.ID != c.Config.Model {
			result = append(result, fmt.Sprintf("- %s", model.ID))
			continue
		}
		result = append(result, fmt.Sprintf("* %s (current)", model.ID))
	}

	return result, nil
}

func isChatModel(id string) bool {
	if strings.HasPrefix(id, gptPrefix) {
		return true
	}
	// o1, o3-mini, o4-mini, ...
	return len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9'
}

func toOpenAIMessages(messages []types.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		result = append(result, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return result
}

func toCounters(u openai.Usage) *types.UsageCounters {
	counters := types.UsageCounters{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		counters.CachedTokens = u.PromptTokensDetails.CachedTokens
	}

	if counters == (types.UsageCounters{}) {
		return nil
	}
	return &counters
}
