package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/amishk599/coverletter/internal/model"
)

func TestGemini_MissingAPIKey(t *testing.T) {
	provider, err := NewGeminiProvider(context.Background(), "", "", "gemini-test", 0.7, http.DefaultClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := provider.Complete(context.Background(), testPrompt); !errors.Is(err, model.ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestGemini_Complete(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Dear Hiring Manager,"}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	provider, err := NewGeminiProvider(context.Background(), srv.URL, "test-key", "gemini-test", 0.7, srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := provider.Complete(context.Background(), testPrompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Dear Hiring Manager," {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
}

func TestMapGeminiError(t *testing.T) {
	err := mapGeminiError(genai.APIError{Code: http.StatusTooManyRequests, Message: " quota exceeded "})
	if !model.IsRateLimited(err) {
		t.Errorf("429 API error not mapped to a rate limit: %v", err)
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %#v", err)
	}

	plain := errors.New("dial tcp: refused")
	if err := mapGeminiError(plain); !errors.Is(err, plain) || errors.As(err, &httpErr) {
		t.Errorf("transport error mapped wrongly: %v", err)
	}
}
