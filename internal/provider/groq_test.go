package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"pocket/internal/config"
)

func testConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL:         baseURL,
		Model:           "llama-3.1-8b-instant",
		TranscribeModel: "whisper-large-v3",
		APIKey:          "gsk_test",
		TimeoutMS:       5000,
		MaxRetries:      2,
		Temperature:     0.1,
		MaxTokens:       256,
	}
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"model":   "llama-3.1-8b-instant",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
	}
}

func TestComplete(t *testing.T) {
	var gotBody struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply(`{"action":"summarize","confidence":0.85}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL + "/"))
	got, err := client.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != `{"action":"summarize","confidence":0.85}` {
		t.Fatalf("content = %q", got)
	}

	if gotBody.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.1 || gotBody.MaxTokens != 256 {
		t.Fatalf("sampling = %v / %d", gotBody.Temperature, gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 ||
		gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", gotBody.Messages)
	}
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"server busy"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	got, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "ok" {
		t.Fatalf("content = %q", got)
	}
	if requests.Load() != 2 {
		t.Fatalf("requests = %d, want 2", requests.Load())
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"error":{"message":"server busy"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	// 初次请求 + 两次重试 / The initial request plus two retries
	if requests.Load() != 3 {
		t.Fatalf("requests = %d, want 3", requests.Load())
	}
}

func TestCompleteCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply("too late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testConfig(server.URL))
	if _, err := client.Complete(ctx, "system", "user"); err == nil {
		t.Fatal("cancelled context must surface an error")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("empty choices must error")
	}
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3" {
			t.Errorf("model = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"send this to mom"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	got, err := client.Transcribe(context.Background(), []byte("RIFF fake wav"), "en")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got != "send this to mom" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:0"))
	if _, err := client.Transcribe(context.Background(), nil, ""); err == nil {
		t.Fatal("empty audio must error without a network call")
	}
}

func TestSetModel(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:0"))
	if err := client.SetModel("llama-3.3-70b-versatile"); err != nil {
		t.Fatalf("set model: %v", err)
	}
	if client.Model() != "llama-3.3-70b-versatile" {
		t.Fatalf("model = %q", client.Model())
	}
	if err := client.SetModel("  "); err == nil {
		t.Fatal("blank model must be rejected")
	}
}
