package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing API key",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "defaults applied",
			cfg:     Config{APIKey: "sk-test"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if client.model != DefaultModel {
				t.Errorf("expected default model %s, got %s", DefaultModel, client.model)
			}
			if client.baseURL != DefaultBaseURL {
				t.Errorf("expected default base URL %s, got %s", DefaultBaseURL, client.baseURL)
			}
		})
	}
}

func TestGenerateContent(t *testing.T) {
	var gotReq Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Response{
			ID:    "chatcmpl-1",
			Model: "gpt-4o-mini",
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: `{"summary": "test"}`}},
			},
			Usage: Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "sk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	resp, err := client.GenerateContent(context.Background(), &Request{
		Messages: []Message{
			{Role: "system", Content: "You extract structure from notes"},
			{Role: "user", Content: "note text"},
		},
		Temperature:    0.3,
		MaxTokens:      500,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		t.Fatalf("GenerateContent() error: %v", err)
	}

	if gotReq.Model != DefaultModel {
		t.Errorf("expected default model filled in, got %q", gotReq.Model)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", gotReq.ResponseFormat)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != `{"summary": "test"}` {
		t.Errorf("unexpected response choices: %+v", resp.Choices)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests"}}`))
	}))
	defer server.Close()

	client, _ := New(Config{APIKey: "sk-test", BaseURL: server.URL})

	_, err := client.GenerateContent(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "Rate limit reached") {
		t.Errorf("expected API error message, got: %v", err)
	}
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if model := r.FormValue("model"); model != TranscriptionModel {
			t.Errorf("expected model %s, got %s", TranscriptionModel, model)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("read form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "voice.oga" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		json.NewEncoder(w).Encode(TranscriptionResponse{Text: "купить молоко завтра"})
	}))
	defer server.Close()

	client, _ := New(Config{APIKey: "sk-test", BaseURL: server.URL})

	text, err := client.Transcribe(context.Background(), "voice.oga", []byte("audio-bytes"))
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if text != "купить молоко завтра" {
		t.Errorf("unexpected transcription %q", text)
	}
}
