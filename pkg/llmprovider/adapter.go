package llmprovider

import (
	"context"
	"fmt"

	"obsidian-inbox-bot/pkg/deepseek"
	"obsidian-inbox-bot/pkg/openai"
)

// OpenAIAdapter adapts pkg/openai to llmprovider.Provider interface
type OpenAIAdapter struct {
	client openai.IOpenAI
	model  string
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(client openai.IOpenAI, model string) *OpenAIAdapter {
	return &OpenAIAdapter{client: client, model: model}
}

// GenerateContent implements Provider interface
func (a *OpenAIAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	openaiReq := &openai.Request{
		Messages:    convertToOpenAIMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		openaiReq.ResponseFormat = &openai.ResponseFormat{Type: "json_object"}
	}

	resp, err := a.client.GenerateContent(ctx, openaiReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		ProviderName: "openai",
		ModelName:    resp.Model,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Model returns the model name
func (a *OpenAIAdapter) Model() string {
	return a.model
}

func convertToOpenAIMessages(req *Request) []openai.Message {
	messages := make([]openai.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, openai.Message{Role: "user", Content: req.User})
	return messages
}

// DeepSeekAdapter adapts pkg/deepseek to llmprovider.Provider interface
type DeepSeekAdapter struct {
	client deepseek.IDeepSeek
}

// NewDeepSeekAdapter creates a new DeepSeek adapter
func NewDeepSeekAdapter(client deepseek.IDeepSeek) *DeepSeekAdapter {
	return &DeepSeekAdapter{client: client}
}

// GenerateContent implements Provider interface
func (a *DeepSeekAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	deepseekReq := &deepseek.Request{
		Messages:    convertToDeepSeekMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		deepseekReq.ResponseFormat = &deepseek.ResponseFormat{Type: "json_object"}
	}

	resp, err := a.client.GenerateContent(ctx, deepseekReq)
	if err != nil {
		return nil, fmt.Errorf("deepseek: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("deepseek: %w", ErrEmptyResponse)
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		ProviderName: "deepseek",
		ModelName:    resp.Model,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns the provider name
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Model returns the model name
func (a *DeepSeekAdapter) Model() string {
	return a.client.Model()
}

func convertToDeepSeekMessages(req *Request) []deepseek.Message {
	messages := make([]deepseek.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, deepseek.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, deepseek.Message{Role: "user", Content: req.User})
	return messages
}
