package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/placement-rag/services/providers"
)

const (
	providerName          = "gemini"
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultEmbeddingModel = "text-embedding-004"
	defaultChatModel      = "gemini-2.0-flash"

	// acknowledgement turn placed between the instruction and the real input
	instructionAck = "OK, I will follow these instructions."
)

// Client talks to the Google Generative Language API.
// It implements both providers.Embedder and providers.Generator.
type Client struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewClient creates a new Gemini client
func NewClient(config providers.ProviderConfig) *Client {
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
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return providerName
}

// Embed calls models/{model}:embedContent and returns embedding.values
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embedRequest{Content: content{Parts: []part{{Text: text}}}}

	var resp embedResponse
	if err := c.post(ctx, c.config.EmbeddingModel, "embedContent", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, providers.NewProviderError(providerName, "EMPTY_EMBEDDING", "response carried no embedding values", http.StatusOK, false, nil)
	}
	return resp.Embedding.Values, nil
}

// Generate calls models/{model}:generateContent with the instruction as a
// first user turn, a model acknowledgement, then the input as a second user turn
func (c *Client) Generate(ctx context.Context, instruction, input string) (string, error) {
	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: instruction}}},
			{Role: "model", Parts: []part{{Text: instructionAck}}},
			{Role: "user", Parts: []part{{Text: input}}},
		},
	}

	var resp generateResponse
	if err := c.post(ctx, c.config.ChatModel, "generateContent", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		reason := ""
		if resp.PromptFeedback != nil {
			reason = resp.PromptFeedback.BlockReason
		}
		return "", providers.NewProviderError(providerName, "NO_CANDIDATES", "no candidates returned "+reason, http.StatusOK, false, nil)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) post(ctx context.Context, model, method string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.NewProviderError(providerName, "MARSHAL_ERROR", "failed to marshal request", 0, false, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:%s?key=%s",
		c.config.BaseURL, url.PathEscape(model), method, url.QueryEscape(c.config.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.NewProviderError(providerName, "REQUEST_ERROR", "failed to create request", 0, false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// the URL carries the key; never surface it
		return providers.NewProviderError(providerName, "HTTP_ERROR", method+" request failed", 0, true, redactKey(err, c.config.APIKey))
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
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return providers.NewProviderError(providerName, "UNKNOWN_ERROR", fmt.Sprintf("unexpected status %d", statusCode), statusCode, providers.RetryableStatus(statusCode), nil)
	}

	return providers.NewProviderError(
		providerName,
		errResp.Error.Status,
		errResp.Error.Message,
		statusCode,
		providers.RetryableStatus(statusCode),
		nil,
	)
}

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	return fmt.Errorf("%s", strings.ReplaceAll(msg, key, "REDACTED"))
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type embedRequest struct {
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
