package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateJoinsParts(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		gotPrompt = req.Contents[0].Parts[0].Text

		resp := generateResponse{}
		resp.Candidates = append(resp.Candidates, struct {
			Content content `json:"content"`
		}{Content: content{Parts: []part{{Text: "Hello "}, {Text: "world."}}}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "test-key")
	g, err := NewGeminiLLMAt("GEMINI_API_KEY", "gemini-2.5-flash-lite", server.URL)
	if err != nil {
		t.Fatal(err)
	}

	answer, err := g.Generate("What is Go?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Hello world." {
		t.Errorf("answer = %q", answer)
	}
	if gotPrompt != "What is Go?" {
		t.Errorf("prompt = %q", gotPrompt)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "test-key")
	g, err := NewGeminiLLMAt("GEMINI_API_KEY", "gemini-2.5-flash-lite", server.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.Generate("q"); err == nil {
		t.Error("expected error for empty candidates")
	}
}

func TestGenerateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "test-key")
	g, err := NewGeminiLLMAt("GEMINI_API_KEY", "gemini-2.5-flash-lite", server.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.Generate("q"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := NewGeminiLLM("GEMINI_API_KEY", "gemini-2.5-flash-lite"); err == nil {
		t.Error("expected error for missing API key")
	}
}
