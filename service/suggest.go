package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/V10L1/modulo-assinatura/config"
	"github.com/V10L1/modulo-assinatura/pkg/logger"
)

// SuggestionService asks a Gemini model for a short cover message to send
// with a signature request
type SuggestionService struct {
	config     *config.SuggestionConfig
	httpClient *http.Client
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func NewSuggestionService(cfg *config.SuggestionConfig) *SuggestionService {
	return &SuggestionService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Prompt builds the instruction sent to the model
func Prompt(documentName string) string {
	return fmt.Sprintf("Generate a short, professional, and friendly message to accompany a document signature request. "+
		"The document is called %q. The message should be a single paragraph.", documentName)
}

// Suggest returns a generated message. Every failure wraps ErrSuggestionUnavailable.
func (s *SuggestionService) Suggest(ctx context.Context, documentName string) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("%w: no api key configured", ErrSuggestionUnavailable)
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: Prompt(documentName)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrSuggestionUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.config.APIURL, "/"), url.PathEscape(s.config.Model), url.QueryEscape(s.config.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrSuggestionUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %v", ErrSuggestionUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrSuggestionUnavailable, err)
	}

	var result generateContentResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d", ErrSuggestionUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: parse response: %v", ErrSuggestionUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrSuggestionUnavailable, resp.StatusCode, msg)
	}

	for _, c := range result.Candidates {
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: empty response", ErrSuggestionUnavailable)
}

// SuggestOrDefault never fails: any error is logged and the default message returned
func (s *SuggestionService) SuggestOrDefault(ctx context.Context, documentName string) string {
	text, err := s.Suggest(ctx, documentName)
	if err != nil {
		logger.Warn(ctx, "message suggestion failed, using default", "document", documentName, "error", err)
		return s.config.DefaultMessage
	}
	return text
}
