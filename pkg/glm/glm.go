package glm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/glmware/glmbridge/pkg/chat"
	"github.com/glmware/glmbridge/pkg/observability"
)

// GLMModel implements chat.Model for GLM-family v3 model API backends.
type GLMModel struct {
	cfg    Config
	client *http.Client
	signer *tokenSigner
}

// Ensure GLMModel implements chat.Model at compile time.
var _ chat.Model = (*GLMModel)(nil)

// New creates a new GLMModel with the given configuration.
// Returns an error if the API key is missing or malformed.
func New(cfg Config) (*GLMModel, error) {
	cfg.applyDefaults()

	// Trailing slash would double up when the invoke path is appended.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	signer, err := newTokenSigner(cfg.APIKey, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &GLMModel{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		signer: signer,
	}, nil
}

// Name returns the adapter identifier.
func (m *GLMModel) Name() string {
	return "glm"
}

// Model returns the configured model name.
func (m *GLMModel) Model() string {
	return m.cfg.Model
}

// Generate performs non-streaming inference against the invoke endpoint.
func (m *GLMModel) Generate(ctx context.Context, req *chat.Request) (*chat.Response, error) {
	// Ensure we are not in streaming mode for Generate.
	reqCopy := *req
	reqCopy.Stream = false

	httpReq, err := m.newInvokeRequest(ctx, &reqCopy, "application/json")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := m.client.Do(httpReq)
	if err != nil {
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "network_error").Inc()
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()
	observability.BackendLatency.WithLabelValues(m.cfg.Model).Observe(time.Since(start).Seconds())

	// Non-2xx responses carry an error body, not an invoke envelope.
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "http_error").Inc()
		return nil, mapHTTPError(httpResp)
	}

	// Parse response.
	var invokeResp invokeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&invokeResp); err != nil {
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "parse_error").Inc()
		return nil, chat.NewServerError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	// The envelope can report failure with a 2xx status.
	if !invokeResp.Success {
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "api_error").Inc()
		return nil, mapAPIFailure(&invokeResp)
	}

	observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "ok").Inc()

	resp := translateResponse(&invokeResp)
	if resp.Usage != nil {
		observability.BackendTokensTotal.WithLabelValues(m.cfg.Model, "input").Add(float64(resp.Usage.PromptTokens))
		observability.BackendTokensTotal.WithLabelValues(m.cfg.Model, "output").Add(float64(resp.Usage.CompletionTokens))
	}

	return resp, nil
}

// Stream performs streaming inference against the invoke endpoint. The
// streaming branch is selected with the Accept header. It returns a channel
// of chat.Events closed when the stream completes, errors, or the context
// is cancelled.
//
// The HTTP client timeout is not applied for streaming requests because a
// stream can legitimately last longer than any fixed timeout. Lifecycle
// control relies on context cancellation instead.
func (m *GLMModel) Stream(ctx context.Context, req *chat.Request) (<-chan chat.Event, error) {
	// The request must be marked as streaming regardless of the caller.
	reqCopy := *req
	reqCopy.Stream = true

	httpReq, err := m.newInvokeRequest(ctx, &reqCopy, "text/event-stream")
	if err != nil {
		return nil, err
	}

	// Streams outlive any fixed client timeout, so this client carries
	// none and relies on the request context.
	streamClient := &http.Client{
		Transport: m.client.Transport,
	}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "network_error").Inc()
		return nil, mapNetworkError(err)
	}

	// A non-2xx status means no stream was opened at all.
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, "http_error").Inc()
		return nil, mapHTTPError(httpResp)
	}

	// Parse the stream into an inner channel and forward events so usage
	// and outcome can be observed without the caller noticing.
	inner := make(chan chat.Event, 16)
	out := make(chan chat.Event, 16)

	go func() {
		defer close(inner)
		defer httpResp.Body.Close()
		parseSSEStream(ctx, httpResp.Body, inner)
	}()

	go func() {
		defer close(out)
		observability.StreamsActive.Inc()
		defer observability.StreamsActive.Dec()

		status := "ok"
		start := time.Now()
		for ev := range inner {
			switch ev.Type {
			case chat.EventError:
				status = "stream_error"
			case chat.EventDone:
				if ev.Usage != nil {
					observability.BackendTokensTotal.WithLabelValues(m.cfg.Model, "input").Add(float64(ev.Usage.PromptTokens))
					observability.BackendTokensTotal.WithLabelValues(m.cfg.Model, "output").Add(float64(ev.Usage.CompletionTokens))
				}
			}
			out <- ev
		}
		observability.BackendLatency.WithLabelValues(m.cfg.Model).Observe(time.Since(start).Seconds())
		observability.BackendRequestsTotal.WithLabelValues(m.cfg.Model, status).Inc()
	}()

	return out, nil
}

// Close releases adapter resources.
func (m *GLMModel) Close() error {
	m.client.CloseIdleConnections()
	return nil
}

// newInvokeRequest builds the signed HTTP request for both branches.
// The accept parameter selects JSON or SSE delivery.
func (m *GLMModel) newInvokeRequest(ctx context.Context, req *chat.Request, accept string) (*http.Request, error) {
	ir, err := buildInvokeRequest(req, &m.cfg)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(ir)
	if err != nil {
		return nil, chat.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := m.cfg.BaseURL + "/" + m.cfg.Model + "/invoke"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, chat.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	token, err := m.signer.Token()
	if err != nil {
		return nil, chat.NewAuthenticationError(err.Error())
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("Authorization", token)

	return httpReq, nil
}
