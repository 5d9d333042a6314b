package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/kozaktomas/event-report/internal/config"
)

const validContent = `{"brief":"A seminar on cloud computing.","objectives":"Introduce core concepts.","benefits":"Students gained insight."}`

func sampleRequest() ContentRequest {
	return ContentRequest{
		EventTitle:         "Cloud Computing Workshop",
		Department:         "Computer Science",
		ResourcePersonName: "Dr. Rao",
		Tone:               ToneAcademic,
	}
}

// fakeProvider returns a fixed answer and counts calls.
type fakeProvider struct {
	usageTracker
	content *GeneratedContent
	err     error
	calls   int
	lastReq ContentRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateContent(_ context.Context, req ContentRequest) (*GeneratedContent, error) {
	f.calls++
	f.lastReq = req
	return f.content, f.err
}

func TestParseTone(t *testing.T) {
	tests := []struct {
		in      string
		want    Tone
		wantErr bool
	}{
		{"", ToneProfessional, false},
		{"Professional", ToneProfessional, false},
		{"academic", ToneAcademic, false},
		{" ENTHUSIASTIC ", ToneEnthusiastic, false},
		{"Concise", ToneConcise, false},
		{"Sarcastic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTone(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTone) {
					t.Errorf("expected ErrUnknownTone, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ContentRequest)
		ok     bool
	}{
		{"complete", func(*ContentRequest) {}, true},
		{"missing title", func(r *ContentRequest) { r.EventTitle = "" }, false},
		{"blank department", func(r *ContentRequest) { r.Department = "   " }, false},
		{"missing resource person", func(r *ContentRequest) { r.ResourcePersonName = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.modify(&req)
			err := req.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrMissingEventInfo) {
				t.Errorf("expected ErrMissingEventInfo, got %v", err)
			}
		})
	}
}

func TestGeneratedContent_Complete(t *testing.T) {
	var nilContent *GeneratedContent
	if nilContent.Complete() {
		t.Error("nil content should not be complete")
	}
	if (&GeneratedContent{Brief: "a", Objectives: "b"}).Complete() {
		t.Error("content without benefits should not be complete")
	}
	if !(&GeneratedContent{Brief: "a", Objectives: "b", Benefits: "c"}).Complete() {
		t.Error("expected complete content")
	}
}

func TestGenerate(t *testing.T) {
	content := &GeneratedContent{Brief: "a", Objectives: "b", Benefits: "c"}

	t.Run("success", func(t *testing.T) {
		p := &fakeProvider{content: content}
		got, err := Generate(context.Background(), p, sampleRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != content {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing info does not call provider", func(t *testing.T) {
		p := &fakeProvider{content: content}
		req := sampleRequest()
		req.Department = ""
		if _, err := Generate(context.Background(), p, req); !errors.Is(err, ErrMissingEventInfo) {
			t.Errorf("expected ErrMissingEventInfo, got %v", err)
		}
		if p.calls != 0 {
			t.Errorf("provider called %d times", p.calls)
		}
	})

	t.Run("empty tone defaults to professional", func(t *testing.T) {
		p := &fakeProvider{content: content}
		req := sampleRequest()
		req.Tone = ""
		if _, err := Generate(context.Background(), p, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.lastReq.Tone != ToneProfessional {
			t.Errorf("tone = %q", p.lastReq.Tone)
		}
	})

	t.Run("provider error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		p := &fakeProvider{err: boom}
		_, err := Generate(context.Background(), p, sampleRequest())
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped error, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "fake: ") {
			t.Errorf("error %q should name the provider", err)
		}
	})

	t.Run("incomplete answer rejected", func(t *testing.T) {
		p := &fakeProvider{content: &GeneratedContent{Brief: "only"}}
		if _, err := Generate(context.Background(), p, sampleRequest()); !errors.Is(err, ErrMalformedContent) {
			t.Errorf("expected ErrMalformedContent, got %v", err)
		}
	})
}

func TestBuildContentPrompt(t *testing.T) {
	prompt := buildContentPrompt(sampleRequest())
	for _, want := range []string{"Cloud Computing Workshop", "Computer Science", "Dr. Rao", "Academic"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
	if strings.Contains(prompt, "%!") {
		t.Error("prompt has a formatting error")
	}
}

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain json", validContent, false},
		{"wrapped in prose", "Here you go:\n```json\n" + validContent + "\n```", false},
		{"not json", "sorry, I cannot help", true},
		{"missing section", `{"brief":"a","objectives":"b"}`, true},
		{"blank section", `{"brief":"a","objectives":"b","benefits":"  "}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseContent(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Brief != "A seminar on cloud computing." {
				t.Errorf("brief = %q", got.Brief)
			}
		})
	}
}

func TestParseContent_TrimsSections(t *testing.T) {
	got, err := parseContent(`{"brief":" a ","objectives":"\nb","benefits":"c\t"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Brief != "a" || got.Objectives != "b" || got.Benefits != "c" {
		t.Errorf("got %+v", got)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no braces", "plain", "plain"},
		{"exact", `{"a":1}`, `{"a":1}`},
		{"surrounding text", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}"} tail`, `{"a":"}"}`},
		{"escaped quote", `{"a":"\"}"} tail`, `{"a":"\"}"}`},
		{"unterminated", `pre {"a":1`, `{"a":1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUsageTracker(t *testing.T) {
	var u usageTracker
	u.pricing = RequestPricing{Input: 1, Output: 2}
	u.track(1_000_000, 500_000)
	u.track(0, 500_000)

	got := u.GetUsage()
	if got.InputTokens != 1_000_000 || got.OutputTokens != 1_000_000 {
		t.Errorf("tokens = %d/%d", got.InputTokens, got.OutputTokens)
	}
	if got.TotalCost != 3 {
		t.Errorf("cost = %f, want 3", got.TotalCost)
	}

	got.InputTokens = 0
	if u.GetUsage().InputTokens == 0 {
		t.Error("GetUsage should return a copy")
	}

	u.ResetUsage()
	if *u.GetUsage() != (Usage{}) {
		t.Errorf("usage after reset = %+v", u.GetUsage())
	}
}

func TestOllamaProvider_GenerateContent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string          `json:"model"`
			Messages []chatTurn      `json:"messages"`
			Stream   bool            `json:"stream"`
			Format   json.RawMessage `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("request must not stream")
		}
		var schema struct {
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(req.Format, &schema); err != nil || len(schema.Required) != 3 {
			t.Errorf("format should be the content schema, got %s", req.Format)
		}

		answer := validContent
		if calls.Add(1) == 1 {
			// first answer is unusable and must trigger a retry with feedback
			answer = `{"brief":"only brief"}`
		} else if n := len(req.Messages); n != 4 || req.Messages[n-1].Role != "user" {
			t.Errorf("retry should carry the previous answer and feedback, got %d messages", n)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             req.Model,
			"message":           map[string]string{"role": "assistant", "content": answer},
			"done":              true,
			"prompt_eval_count": 100,
			"eval_count":        50,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "")
	if p.Name() != defaultOllamaModel {
		t.Errorf("Name() = %q", p.Name())
	}

	got, err := p.GenerateContent(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if got.Benefits != "Students gained insight." {
		t.Errorf("benefits = %q", got.Benefits)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if u := p.GetUsage(); u.InputTokens != 200 || u.OutputTokens != 100 {
		t.Errorf("usage = %+v", u)
	}
}

func TestOllamaProvider_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "not json"},
			"done":    true,
		})
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "test").GenerateContent(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != maxRetries {
		t.Errorf("expected %d calls, got %d", maxRetries, calls.Load())
	}
}

func TestOllamaProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").GenerateContent(context.Background(), sampleRequest())
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOpenAIProvider_GenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"json_schema"`) || !strings.Contains(string(body), `"report_content"`) {
			t.Errorf("request should ask for the content schema: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   chatModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": validContent},
			}},
			"usage": map[string]int{"prompt_tokens": 1_000_000, "completion_tokens": 1_000_000, "total_tokens": 2_000_000},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-token", RequestPricing{Input: 0.4, Output: 1.6},
		option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	got, err := p.GenerateContent(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if got.Objectives != "Introduce core concepts." {
		t.Errorf("objectives = %q", got.Objectives)
	}
	if u := p.GetUsage(); u.TotalCost < 1.99 || u.TotalCost > 2.01 {
		t.Errorf("cost = %f, want 2", u.TotalCost)
	}
}

func TestGeminiProvider_GenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, geminiModel+":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": validContent}},
				},
			}},
			"usageMetadata": map[string]int{"promptTokenCount": 10, "candidatesTokenCount": 20},
		})
	}))
	defer srv.Close()

	p, err := newGeminiProvider(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	}, RequestPricing{})
	if err != nil {
		t.Fatalf("newGeminiProvider failed: %v", err)
	}

	got, err := p.GenerateContent(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if got.Brief != "A seminar on cloud computing." {
		t.Errorf("brief = %q", got.Brief)
	}
	if u := p.GetUsage(); u.InputTokens != 10 || u.OutputTokens != 20 {
		t.Errorf("usage = %+v", u)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{Provider: "ollama"}}

	t.Run("default from config", func(t *testing.T) {
		p, err := NewProvider(context.Background(), cfg, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := p.(*OllamaProvider); !ok {
			t.Errorf("got %T, want *OllamaProvider", p)
		}
	})

	t.Run("openai requires token", func(t *testing.T) {
		if _, err := NewProvider(context.Background(), cfg, "openai"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("gemini requires key", func(t *testing.T) {
		if _, err := NewProvider(context.Background(), cfg, "gemini"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("openai with token", func(t *testing.T) {
		c := *cfg
		c.OpenAI.Token = "sk-test"
		p, err := NewProvider(context.Background(), &c, "OpenAI")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name() != chatModel {
			t.Errorf("Name() = %q", p.Name())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewProvider(context.Background(), cfg, "llamacpp")
		if err == nil || !strings.Contains(err.Error(), "unknown provider") {
			t.Errorf("expected unknown provider error, got %v", err)
		}
	})
}
