package client

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func (c *OpenAIClient) printRequestDebugInfo(body openai.ChatCompletionRequest) {
	sugar := zap.S()
	raw, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		sugar.Debugf("request body unavailable: %v", err)
		return
	}
	sugar.Debugf("\nRequest to %s\n%s\n", c.Config.URL, raw)
}

func (c *OpenAIClient) printResponseDebugInfo(resp openai.ChatCompletionResponse) {
	sugar := zap.S()
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return
	}
	sugar.Debugf("\nResponse\n%s\n", raw)
}
