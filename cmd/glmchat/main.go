// Command glmchat sends a prompt to a GLM backend and prints the reply.
//
//	glmchat [flags] <prompt>
//
// Flags:
//
//	-config   path to the YAML config file (optional, discovered otherwise)
//	-session  session name; earlier turns are replayed from the history store
//	-stream   deliver the reply incrementally over SSE
//
// Configuration via environment variables (see pkg/config for the full set):
//
//	GLMBRIDGE_API_KEY - backend credential in "id.secret" form (required)
//	GLMBRIDGE_MODEL   - model name (default: "chatglm_turbo")
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glmware/glmbridge/pkg/chat"
	"github.com/glmware/glmbridge/pkg/config"
	"github.com/glmware/glmbridge/pkg/glm"
	"github.com/glmware/glmbridge/pkg/history"
	historymem "github.com/glmware/glmbridge/pkg/history/memory"
	historypg "github.com/glmware/glmbridge/pkg/history/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	session := flag.String("session", "", "session name for multi-turn history")
	stream := flag.Bool("stream", false, "stream the reply incrementally")
	flag.Parse()

	if err := run(*configPath, *session, *stream, flag.Args()); err != nil {
		slog.Error("glmchat failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, session string, stream bool, args []string) error {
	// A .env file is optional; ignore a missing one.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	prompt, err := readPrompt(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics endpoint.
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Listen)
	}

	model, err := glm.New(glm.Config{
		APIKey:      cfg.GLM.APIKey,
		BaseURL:     cfg.GLM.BaseURL,
		Model:       cfg.GLM.Model,
		Timeout:     cfg.GLM.Timeout,
		TokenTTL:    cfg.GLM.TokenTTL,
		Temperature: cfg.GLM.Temperature,
		TopP:        cfg.GLM.TopP,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// Replay earlier turns from the session transcript.
	var messages []chat.Message
	if store != nil && session != "" {
		prior, err := store.Messages(ctx, session)
		if err != nil && err != history.ErrNotFound {
			return fmt.Errorf("loading session %q: %w", session, err)
		}
		messages = prior
	}

	userMsg := chat.NewHumanMessage(prompt)
	messages = append(messages, userMsg)

	req := &chat.Request{Messages: messages}

	var reply string
	if stream {
		reply, err = streamReply(ctx, model, req)
	} else {
		reply, err = generateReply(ctx, model, req)
	}
	if err != nil {
		return err
	}

	// Record the exchange.
	if store != nil && session != "" {
		if err := store.Append(ctx, session, userMsg, chat.NewAIMessage(reply)); err != nil {
			return fmt.Errorf("saving session %q: %w", session, err)
		}
	}

	return nil
}

// readPrompt takes the prompt from the arguments or, when none are given,
// from stdin.
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt: pass it as an argument or on stdin")
	}
	return prompt, nil
}

// generateReply performs a non-streaming call and prints the full answer.
func generateReply(ctx context.Context, model chat.Model, req *chat.Request) (string, error) {
	resp, err := model.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	fmt.Println(resp.Content)
	if resp.Usage != nil {
		slog.Debug("usage reported",
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
		)
	}
	return resp.Content, nil
}

// streamReply performs a streaming call and prints deltas as they arrive.
func streamReply(ctx context.Context, model chat.Model, req *chat.Request) (string, error) {
	events, err := model.Stream(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for ev := range events {
		switch ev.Type {
		case chat.EventDelta:
			sb.WriteString(ev.Delta)
			fmt.Print(ev.Delta)
		case chat.EventDone:
			fmt.Println()
		case chat.EventError:
			fmt.Println()
			return "", ev.Err
		}
	}
	return sb.String(), nil
}

// openHistory builds the transcript store the config asks for. Returns nil
// when history is disabled.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Type {
	case "none":
		return nil, nil
	case "memory":
		// Only useful within one process; kept for parity with tests.
		return historymem.New(cfg.History.MaxSessions), nil
	case "postgres":
		store, err := historypg.New(ctx, historypg.Config{
			DSN:            cfg.History.Postgres.DSN,
			MaxConns:       cfg.History.Postgres.MaxConns,
			MigrateOnStart: cfg.History.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening history store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history type %q", cfg.History.Type)
	}
}

// serveMetrics exposes the Prometheus registry on the configured address.
func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		slog.Warn("metrics endpoint failed", "error", err)
	}
}
