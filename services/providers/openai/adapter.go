package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/placement-rag/services/providers"
)

const (
	providerName          = "openai"
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultChatModel      = "gpt-4o-mini"
)

// OpenAIAdapter implements providers.Embedder and providers.Generator for
// OpenAI and API-compatible servers
type OpenAIAdapter struct {
	config     providers.ProviderConfig
	dimensions int
	httpClient *http.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter. A positive dimensions value
// is forwarded to the embeddings endpoint so the vector matches the store.
func NewOpenAIAdapter(config providers.ProviderConfig, dimensions int) *OpenAIAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = defaultEmbeddingModel
	}
	if config.ChatModel == "" {
		config.ChatModel = defaultChatModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &OpenAIAdapter{
		config:     config,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return providerName
}

// Embed calls /embeddings for a single input
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	req := EmbeddingRequest{
		Model: a.config.EmbeddingModel,
		Input: text,
	}
	if a.dimensions > 0 {
		req.Dimensions = a.dimensions
	}

	var resp EmbeddingResponse
	if err := a.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, providers.NewProviderError(providerName, "EMPTY_EMBEDDING", "response carried no embedding", http.StatusOK, false, nil)
	}
	return resp.Data[0].Embedding, nil
}

// Generate calls /chat/completions with the instruction as the system message
func (a *OpenAIAdapter) Generate(ctx context.Context, instruction, input string) (string, error) {
	req := ChatRequest{
		Model: a.config.ChatModel,
		Messages: []Message{
			{Role: "system", Content: instruction},
			{Role: "user", Content: input},
		},
	}

	var resp ChatResponse
	if err := a.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", providers.NewProviderError(providerName, "NO_CHOICES", "no choices returned", http.StatusOK, false, nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *OpenAIAdapter) post(ctx context.Context, path string, payload, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return providers.NewProviderError(providerName, "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return providers.NewProviderError(providerName, "REQUEST_ERROR", "failed to create request", 0, false, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return providers.NewProviderError(providerName, "HTTP_ERROR", "HTTP request failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return providers.NewProviderError(providerName, "READ_ERROR", "failed to read response", httpResp.StatusCode, false, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return handleErrorResponse(httpResp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return providers.NewProviderError(providerName, "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, false, err)
	}
	return nil
}

func handleErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderError(providerName, "UNKNOWN_ERROR", fmt.Sprintf("unexpected status %d", statusCode), statusCode, providers.RetryableStatus(statusCode), nil)
	}

	return providers.NewProviderError(
		providerName,
		errResp.Error.Type,
		errResp.Error.Message,
		statusCode,
		providers.RetryableStatus(statusCode),
		nil,
	)
}

// OpenAI wire types

type EmbeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type EmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
