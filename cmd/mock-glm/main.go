// Command mock-glm runs a deterministic model API server for development
// and conformance testing. It verifies the signed request token, accepts
// the v3 prompt format, and serves both the JSON and SSE branches with
// predictable responses.
//
// Configuration:
//
//	MOCK_PORT    - Listen port (default: 9090)
//	MOCK_API_KEY - API key clients must sign with, "id.secret" form
//	               (default: "mock-id.mock-secret")
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	apiKey := os.Getenv("MOCK_API_KEY")
	if apiKey == "" {
		apiKey = "mock-id.mock-secret"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newHandler(apiKey),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newHandler(apiKey string) http.Handler {
	keyID, secret, _ := strings.Cut(apiKey, ".")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{model}/invoke", func(w http.ResponseWriter, r *http.Request) {
		if !verifyToken(r.Header.Get("Authorization"), keyID, secret) {
			writeFailure(w, http.StatusUnauthorized, 1002, "invalid authorization token")
			return
		}
		handleInvoke(w, r)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// verifyToken parses the HS256 token and checks the api_key claim matches
// the configured key ID.
func verifyToken(token, keyID, secret string) bool {
	if token == "" {
		return false
	}

	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		slog.Debug("token verification failed", "error", err)
		return false
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return false
	}
	return claims["api_key"] == keyID
}

// --- Request/response types (v3 model API wire format) ---

type invokeRequest struct {
	Prompt      []promptMessage `json:"prompt"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

type promptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeResponse struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Success bool        `json:"success"`
	Data    *invokeData `json:"data,omitempty"`
}

type invokeData struct {
	RequestID  string          `json:"request_id"`
	TaskID     string          `json:"task_id"`
	TaskStatus string          `json:"task_status"`
	Choices    []promptMessage `json:"choices"`
	Usage      *invokeUsage    `json:"usage,omitempty"`
}

type invokeUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handlers ---

func handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, 1001, "invalid request body")
		return
	}

	if len(req.Prompt) == 0 {
		writeFailure(w, http.StatusBadRequest, 1001, "prompt must not be empty")
		return
	}

	reply := replyFor(&req)

	if r.Header.Get("Accept") == "text/event-stream" {
		handleStreaming(w, &req, reply)
		return
	}

	resp := invokeResponse{
		Code:    200,
		Msg:     "success",
		Success: true,
		Data: &invokeData{
			RequestID:  req.RequestID,
			TaskID:     "task-mock-1",
			TaskStatus: "SUCCESS",
			Choices: []promptMessage{
				// The real backend JSON-encodes choice content.
				{Role: "assistant", Content: fmt.Sprintf("%q", reply)},
			},
			Usage: usageFor(&req, reply),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func handleStreaming(w http.ResponseWriter, req *invokeRequest, reply string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Emit the reply word by word as add events.
	words := strings.SplitAfter(reply, " ")
	for _, word := range words {
		fmt.Fprintf(w, "id: task-mock-1\nevent: add\ndata: %s\n\n", word)
		flusher.Flush()
	}

	meta, _ := json.Marshal(map[string]any{
		"request_id":  req.RequestID,
		"task_id":     "task-mock-1",
		"task_status": "SUCCESS",
		"usage":       usageFor(req, reply),
	})
	fmt.Fprintf(w, "id: task-mock-1\nevent: finish\nmeta: %s\ndata: \n\n", meta)
	flusher.Flush()
}

// replyFor picks a deterministic answer based on the last user turn.
func replyFor(req *invokeRequest) string {
	last := ""
	for _, m := range req.Prompt {
		if m.Role == "user" {
			last = m.Content
		}
	}

	if strings.Contains(strings.ToLower(last), "count from 1 to 5") {
		return "1, 2, 3, 4, 5"
	}
	return "Hello, nice day!"
}

// usageFor fabricates plausible token counts from message lengths.
func usageFor(req *invokeRequest, reply string) *invokeUsage {
	prompt := 0
	for _, m := range req.Prompt {
		prompt += len(strings.Fields(m.Content))
	}
	completion := len(strings.Fields(reply))
	return &invokeUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

func writeFailure(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(invokeResponse{
		Code:    code,
		Msg:     msg,
		Success: false,
	})
}
