package glm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/glmware/glmbridge/pkg/chat"
)

const testAPIKey = "test-id.test-secret"

func newTestModel(t *testing.T, baseURL string) *GLMModel {
	t.Helper()

	m, err := New(Config{
		APIKey:  testAPIKey,
		BaseURL: baseURL,
		Model:   "test-model",
	})
	if err != nil {
		t.Fatalf("creating model: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// verifyAuthHeader checks that the Authorization header carries a token
// signed with the test secret for the test key ID.
func verifyAuthHeader(t *testing.T, r *http.Request) {
	t.Helper()

	token := r.Header.Get("Authorization")
	if token == "" {
		t.Error("missing Authorization header")
		return
	}

	parsed, err := jwtlib.Parse(token, func(tk *jwtlib.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Errorf("Authorization token does not verify: %v", err)
		return
	}
	claims := parsed.Claims.(jwtlib.MapClaims)
	if claims["api_key"] != "test-id" {
		t.Errorf("expected api_key claim %q, got %v", "test-id", claims["api_key"])
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNew_MalformedAPIKey(t *testing.T) {
	if _, err := New(Config{APIKey: "no-dot-here"}); err == nil {
		t.Fatal("expected error for malformed API key")
	}
}

func TestGenerate_TextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/test-model/invoke" {
			t.Errorf("expected path /test-model/invoke, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept application/json, got %s", r.Header.Get("Accept"))
		}
		verifyAuthHeader(t, r)

		var ir invokeRequest
		if err := json.NewDecoder(r.Body).Decode(&ir); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(ir.Prompt) != 2 {
			t.Errorf("expected 2 prompt messages, got %d", len(ir.Prompt))
		}
		if ir.Prompt[0].Role != "user" || ir.Prompt[1].Role != "assistant" {
			t.Errorf("unexpected roles: %+v", ir.Prompt)
		}
		if ir.RequestID == "" {
			t.Error("expected a request ID")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(invokeResponse{
			Code:    200,
			Msg:     "success",
			Success: true,
			Data: &invokeData{
				RequestID:  ir.RequestID,
				TaskID:     "task-77",
				TaskStatus: "SUCCESS",
				Choices: []promptMessage{
					{Role: "assistant", Content: `"Nice to meet you"`},
				},
				Usage: &invokeUsage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14},
			},
		})
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	if m.Name() != "glm" {
		t.Errorf("expected name %q, got %q", "glm", m.Name())
	}

	resp, err := m.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{
			chat.NewHumanMessage("Hello"),
			chat.NewAIMessage("Hi"),
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Content != "Nice to meet you" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.TaskID != "task-77" {
		t.Errorf("unexpected task id %q", resp.TaskID)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 14 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestGenerate_FailureEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(invokeResponse{
			Code: 1214, Msg: "prompt parameter is invalid", Success: false,
		})
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	_, err := m.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error for failure envelope")
	}

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T", err)
	}
	if apiErr.Type != chat.ErrorTypeModelError {
		t.Errorf("expected model_error, got %s", apiErr.Type)
	}
	if apiErr.Code != "1214" {
		t.Errorf("expected code 1214, got %q", apiErr.Code)
	}
}

func TestGenerate_HTTPUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":1002,"msg":"invalid authorization token","success":false}`)
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	_, err := m.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hi")},
	})

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T (%v)", err, err)
	}
	if apiErr.Type != chat.ErrorTypeAuthentication {
		t.Errorf("expected authentication_error, got %s", apiErr.Type)
	}
}

func TestGenerate_TranslationErrorSkipsHTTP(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	_, err := m.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewSystemMessage("You are helpful.")},
	})
	if err == nil {
		t.Fatal("expected translation error")
	}
	if calls != 0 {
		t.Errorf("expected no HTTP calls, got %d", calls)
	}
}

func TestStream_Events(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected Accept text/event-stream, got %s", r.Header.Get("Accept"))
		}
		verifyAuthHeader(t, r)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "id: task-9\nevent: add\ndata: Hello\n\n")
		fmt.Fprint(w, "id: task-9\nevent: add\ndata: , world\n\n")
		fmt.Fprint(w, "id: task-9\nevent: finish\nmeta: {\"task_id\":\"task-9\",\"usage\":{\"prompt_tokens\":2,\"completion_tokens\":2,\"total_tokens\":4}}\ndata: \n\n")
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	events, err := m.Stream(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	var text string
	var done *chat.Event
	for ev := range events {
		switch ev.Type {
		case chat.EventDelta:
			text += ev.Delta
		case chat.EventDone:
			evCopy := ev
			done = &evCopy
		case chat.EventError:
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
	}

	if text != "Hello, world" {
		t.Errorf("unexpected streamed text %q", text)
	}
	if done == nil {
		t.Fatal("expected a done event")
	}
	if done.TaskID != "task-9" {
		t.Errorf("unexpected task id %q", done.TaskID)
	}
	if done.Usage == nil || done.Usage.TotalTokens != 4 {
		t.Errorf("unexpected usage %+v", done.Usage)
	}
}

func TestStream_HTTPErrorBeforeStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"code":1302,"msg":"rate limited","success":false}`)
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	_, err := m.Stream(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hi")},
	})

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T (%v)", err, err)
	}
	if apiErr.Type != chat.ErrorTypeTooManyRequests {
		t.Errorf("expected too_many_requests, got %s", apiErr.Type)
	}
}

func TestStream_ErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: error\ndata: model overloaded\n\n")
	}))
	defer srv.Close()

	m := newTestModel(t, srv.URL)

	events, err := m.Stream(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	var sawError bool
	for ev := range events {
		if ev.Type == chat.EventError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected an error event")
	}
}
