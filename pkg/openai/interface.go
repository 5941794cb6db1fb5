package openai

import "context"

// IOpenAI defines the interface for OpenAI LLM client
type IOpenAI interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}
