package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/glmware/glmbridge/pkg/chat"
	"github.com/glmware/glmbridge/pkg/glm"
)

// TestWrongSecretRejected verifies the mock backend actually checks the
// token signature, so the positive tests prove the signer works.
func TestWrongSecretRejected(t *testing.T) {
	model, err := glm.New(glm.Config{
		APIKey:  testKeyID + ".wrong-secret",
		BaseURL: testEnv.Backend.URL,
		Model:   "mock-model",
	})
	if err != nil {
		t.Fatalf("creating adapter: %v", err)
	}
	defer model.Close()

	_, err = model.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hello")},
	})
	if err == nil {
		t.Fatal("expected authentication failure")
	}

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T", err)
	}
	if apiErr.Type != chat.ErrorTypeAuthentication {
		t.Errorf("expected authentication_error, got %s", apiErr.Type)
	}
}

func TestUnreachableBackend(t *testing.T) {
	model, err := glm.New(glm.Config{
		APIKey:  testAPIKey,
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Model:   "mock-model",
	})
	if err != nil {
		t.Fatalf("creating adapter: %v", err)
	}
	defer model.Close()

	_, err = model.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{chat.NewHumanMessage("Hello")},
	})
	if err == nil {
		t.Fatal("expected connection error")
	}

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T", err)
	}
	if apiErr.Type != chat.ErrorTypeServerError {
		t.Errorf("expected server_error, got %s", apiErr.Type)
	}
}

func TestSystemMessageRejectedBeforeHTTP(t *testing.T) {
	_, err := testEnv.Model.Generate(context.Background(), &chat.Request{
		Messages: []chat.Message{
			chat.NewSystemMessage("You are a pirate."),
			chat.NewHumanMessage("Hello"),
		},
	})
	if err == nil {
		t.Fatal("expected error for system message")
	}

	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *chat.APIError, got %T", err)
	}
	if apiErr.Type != chat.ErrorTypeInvalidRequest {
		t.Errorf("expected invalid_request, got %s", apiErr.Type)
	}
}
