// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/seekr-tui/internal/model"
)

func TestChatSuccess(t *testing.T) {
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Titan."}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	messages := []model.Message{
		model.NewSystemMessage("You are a helpful AI assistant."),
		model.NewUserMessage("largest moon of saturn?"),
	}

	got, err := client.Chat(context.Background(), messages)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Titan." {
		t.Errorf("content = %q, want Titan.", got)
	}

	if gotBody.Model != DefaultModel {
		t.Errorf("model = %q, want %q", gotBody.Model, DefaultModel)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Errorf("outbound messages = %+v", gotBody.Messages)
	}
}

func TestChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	got, err := client.Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "" {
		t.Errorf("content = %q, want empty string for no choices", got)
	}
}

func TestChatNotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"auth failure", http.StatusUnauthorized, `{"error": {"message": "bad key"}}`, ErrAuthFailed},
		{"auth failure unparseable", http.StatusUnauthorized, `nope`, ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, `{"error": {"message": "slow down"}}`, ErrRateLimited},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient("test-key").WithBaseURL(server.URL)
			_, err := client.Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": "invalid_request", "message": "model missing"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []model.Message{model.NewUserMessage("q")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "invalid_request" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestChatTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // guaranteed connection refused

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestKeyFingerprint(t *testing.T) {
	if got := NewClient("").KeyFingerprint(); got != "none" {
		t.Errorf("fingerprint of empty key = %q, want none", got)
	}

	a := NewClient("key-a").KeyFingerprint()
	b := NewClient("key-b").KeyFingerprint()
	if a == b {
		t.Error("different keys must have different fingerprints")
	}
	if len(a) != 8 {
		t.Errorf("fingerprint length = %d, want 8 hex chars", len(a))
	}
}

func TestSetModel(t *testing.T) {
	client := NewClient("k")
	client.SetModel("glm-4.7")
	if got := client.Model(); got != "glm-4.7" {
		t.Errorf("model = %q", got)
	}

	// Empty model keeps the current one
	client.SetModel("")
	if got := client.Model(); got != "glm-4.7" {
		t.Errorf("model after empty set = %q", got)
	}
}
