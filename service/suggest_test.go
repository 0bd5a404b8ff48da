package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/V10L1/modulo-assinatura/config"
)

func newTestSuggestion(url string) *SuggestionService {
	return NewSuggestionService(&config.SuggestionConfig{
		APIURL:         url,
		APIKey:         "test-key",
		Model:          "gemini-test",
		Timeout:        2 * time.Second,
		DefaultMessage: config.DefaultMessage,
	})
}

func TestPrompt(t *testing.T) {
	p := Prompt("NDA.pdf")
	if !strings.Contains(p, `"NDA.pdf"`) {
		t.Errorf("Expected quoted document name in prompt, got %q", p)
	}
	if !strings.Contains(p, "single paragraph") {
		t.Errorf("Expected single paragraph instruction, got %q", p)
	}
}

func TestSuggestionServiceSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("Expected api key in query")
		}

		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || !strings.Contains(req.Contents[0].Parts[0].Text, "Lease.pdf") {
			t.Errorf("Unexpected request contents: %+v", req.Contents)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Hi! Please sign "},{"text":"the lease.\n"}]}}]}`))
	}))
	defer server.Close()

	svc := newTestSuggestion(server.URL)
	text, err := svc.Suggest(context.Background(), "Lease.pdf")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if text != "Hi! Please sign the lease." {
		t.Errorf("Unexpected suggestion %q", text)
	}
}

func TestSuggestionServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"api error", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, "API key not valid"},
		{"server error without body", http.StatusBadGateway, `{}`, "Bad Gateway"},
		{"invalid json", http.StatusOK, `not json`, "parse response"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "empty response"},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestSuggestion(server.URL).Suggest(context.Background(), "doc.pdf")
			if !errors.Is(err, ErrSuggestionUnavailable) {
				t.Fatalf("Expected ErrSuggestionUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in error, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestSuggestionServiceNoAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := newTestSuggestion(server.URL)
	svc.config.APIKey = ""

	if _, err := svc.Suggest(context.Background(), "doc.pdf"); !errors.Is(err, ErrSuggestionUnavailable) {
		t.Errorf("Expected ErrSuggestionUnavailable, got %v", err)
	}
	if called {
		t.Error("Expected no request without an api key")
	}
}

func TestSuggestOrDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestSuggestion(server.URL)
	if got := svc.SuggestOrDefault(context.Background(), "doc.pdf"); got != config.DefaultMessage {
		t.Errorf("Expected default message, got %q", got)
	}

	// Unreachable service
	svc = newTestSuggestion("http://127.0.0.1:1")
	if got := svc.SuggestOrDefault(context.Background(), "doc.pdf"); got != config.DefaultMessage {
		t.Errorf("Expected default message, got %q", got)
	}
}

func TestSuggestCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestSuggestion(server.URL).Suggest(ctx, "doc.pdf"); !errors.Is(err, ErrSuggestionUnavailable) {
		t.Errorf("Expected ErrSuggestionUnavailable for cancelled context, got %v", err)
	}
}
