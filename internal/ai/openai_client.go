// internal/ai/openai_client.go
package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leadrail/leadrail-backend/internal/logger"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Reply sends the instruction bundle as the system prompt, followed by the
// conversation history, and returns the generated SMS text.
func (c *OpenAIClient) Reply(ctx context.Context, instructionBundle string, history []Turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instructionBundle,
	})
	for _, t := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Text,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("openai completion failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		logger.Log.Warn().Msg("openai returned no choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Replier = (*OpenAIClient)(nil)
