// Package openai implements the hosted generation variant against an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/domain"
)

const systemInstructions = `You are a helpful company policy assistant. Your task is to answer questions based ONLY on the provided sources.

CRITICAL CITATION RULES:
1. Always cite sources by their exact title and section when making claims
2. Use format: "According to [Document Title - Section]..." or "As stated in [Document Title - Section]..."
3. If multiple sources are relevant, cite all of them
4. Be specific about which information comes from which source
5. If the sources don't contain enough information to fully answer, say so
`

const maxContextChars = 600

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// Config configures the chat client. The API key is read from the
// environment variable named by APIKeyEnv.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient fails when no credentials are present; the caller then falls
// back to the stub generator.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		temperature: 0.1,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Name() string { return "openai:" + c.model }

// Generate builds the citation-discipline prompt from the retrieved
// contexts and asks the model for an answer.
func (c *Client) Generate(query string, contexts []domain.Metadata) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(query, contexts)},
		},
		"temperature": c.temperature,
	})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion failed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return out.Choices[0].Message.Content, nil
}

func buildPrompt(query string, contexts []domain.Metadata) string {
	var b strings.Builder
	b.WriteString(systemInstructions)
	b.WriteString("\nQUESTION: " + query + "\n\nAVAILABLE SOURCES:\n")
	for i, c := range contexts {
		title := c.Title
		if title == "" {
			title = "Unknown"
		}
		section := c.Section
		if section == "" {
			section = "Main"
		}
		text := c.Text
		if len(text) > maxContextChars {
			text = text[:maxContextChars]
		}
		fmt.Fprintf(&b, "\n[Source %d] %s - %s\n%s\n%s\n", i+1, title, section, text, strings.Repeat("---", 20))
	}
	b.WriteString("\nANSWER (remember to cite specific sources by title and section):")
	return b.String()
}
