package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateContent(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"drafted note"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-key", "gemini-2.5-flash", srv.URL)

	text, err := client.GenerateContent(context.Background(), "expand this")
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if text != "drafted note" {
		t.Errorf("GenerateContent() = %q, want drafted note", text)
	}
	if !strings.Contains(gotPath, "models/gemini-2.5-flash:generateContent") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "expand this" {
		t.Errorf("unexpected request body %+v", gotBody)
	}
}

func TestGenerateContentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("bad-key", "gemini-2.5-flash", srv.URL)

	_, err := client.GenerateContent(context.Background(), "anything")
	if err == nil {
		t.Fatal("GenerateContent() expected error")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error does not surface upstream message: %v", err)
	}
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("test-key", "gemini-2.5-flash", srv.URL)

	if _, err := client.GenerateContent(context.Background(), "anything"); err == nil {
		t.Error("GenerateContent() accepted an empty candidate list")
	}
}
