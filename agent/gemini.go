package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/homework-ai/tutor/core/protocol"
)

// Fixed decoding configuration for every generate call. Tuned for
// supportive, varied tutoring answers while staying within free-tier
// output limits.
const (
	decodeTopP            = 0.95
	decodeTopK            = 64
	decodeTemperature     = 0.85
	decodeMaxOutputTokens = 8192
)

// answerSchema is the structured-output schema the backend must follow.
// It mirrors the envelope in core/response: solution_steps is the canonical
// step field, and difficulty_level is nullable for non-questions.
var answerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"greeting":      map[string]any{"type": "string"},
		"question_type": map[string]any{"type": "string"},
		"solution_steps": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"final_answer": map[string]any{"type": "string"},
		"difficulty_level": map[string]any{
			"type":     "string",
			"enum":     []string{"Easy", "Medium", "Hard"},
			"nullable": true,
		},
		"closing_note": map[string]any{"type": "string"},
	},
	"required": []string{"greeting", "solution_steps", "final_answer", "closing_note"},
}

// Gemini speaks the generateContent REST endpoint directly. Conversation
// turns map to {role, parts:[{text}]} contents, with the assistant role
// renamed to "model" as the API requires.
type Gemini struct {
	cfg    Config
	client *http.Client
}

// NewGemini creates a Gemini provider from configuration.
func NewGemini(cfg Config) *Gemini {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Gemini{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	TopP             float64        `json:"topP"`
	TopK             int            `json:"topK"`
	Temperature      float64        `json:"temperature"`
	MaxOutputTokens  int            `json:"maxOutputTokens"`
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func buildContents(conversation []protocol.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(conversation))
	for _, msg := range conversation {
		role := "user"
		if msg.Role == protocol.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}

// Generate performs one generateContent round trip and returns the first
// candidate's text. The HTTP client timeout bounds the call in addition to
// whatever deadline ctx carries.
func (g *Gemini) Generate(ctx context.Context, conversation []protocol.Message) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: buildContents(conversation),
		GenerationConfig: geminiGenerationConfig{
			TopP:             decodeTopP,
			TopK:             decodeTopK,
			Temperature:      decodeTemperature,
			MaxOutputTokens:  decodeMaxOutputTokens,
			ResponseMIMEType: "application/json",
			ResponseSchema:   answerSchema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(g.cfg.BaseURL, "/"), g.cfg.Model, g.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate call failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generate response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
