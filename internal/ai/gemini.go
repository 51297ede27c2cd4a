package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Google AI Studio generateContent endpoint.
type GeminiProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		BaseURL: defaultGeminiBaseURL,
		APIKey:  strings.TrimSpace(apiKey),
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateReq struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiGenerateResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResp struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat maps system messages to the system instruction and assistant turns
// to the "model" role.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.Client == nil {
		return "", errors.New("gemini: http client is nil")
	}
	if p.APIKey == "" {
		return "", errors.New("gemini: api key is required")
	}

	var reqBody geminiGenerateReq
	for _, m := range messages {
		switch m.Role {
		case "system":
			reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case "assistant":
			reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	model := strings.TrimPrefix(strings.TrimSpace(p.Model), "models/")
	// the key travels in a header so transport errors, which echo the URL, never carry it
	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(p.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", Classify("gemini", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp geminiErrorResp
		_ = json.NewDecoder(io.LimitReader(resp.Body, 16*1024)).Decode(&errResp)
		return "", statusError("gemini", resp.StatusCode, errResp.Error.Message)
	}

	var decoded geminiGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", malformed("gemini", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", malformed("gemini", errors.New("empty response from gemini"))
	}

	var out strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}
