package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/eletrohub/backend/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	systemPrompt = `You are an expert construction estimator. Extract items from the user's raw text list of electrical materials.
Return a JSON object with a key "items" containing an array of objects.
Each object must have:
- "raw_text": The original line text.
- "quantity": Number (default 1).
- "unit": String or null (e.g., "M", "UN", "RL", "CX"). Normalize to simple abbr.
- "description": The product name/description cleaned up.
- "brand": Extracted brand if present, or null.
- "code_ref": Any part number/code found, or null.

Example output format:
{
  "items": [
    { "raw_text": "10m Cabo 2.5mm", "quantity": 10, "unit": "M", "description": "Cabo Flexivel 2.5mm", "brand": null, "code_ref": null }
  ]
}
RETURN JSON ONLY.`
)

// Parser extracts structured line items from free-form budget text using
// the chat completions API in JSON mode.
type Parser struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewParser(apiKey, baseURL, model string) *Parser {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Parser{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type itemsEnvelope struct {
	Items []domain.ParsedLineItem `json:"items"`
}

// ParseText turns a raw material list into structured line items.
func (p *Parser) ParseText(ctx context.Context, text string) ([]domain.ParsedLineItem, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParserFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[PARSER] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrParserFailure, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrParserFailure)
	}

	var envelope itemsEnvelope
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &envelope); err != nil {
		log.Printf("[PARSER] Malformed completion: %v", err)
		return nil, fmt.Errorf("%w: malformed completion", domain.ErrParserFailure)
	}

	items := envelope.Items
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
	}
	log.Printf("[PARSER] Extracted %d line items", len(items))
	return items, nil
}
