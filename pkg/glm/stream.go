package glm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/glmware/glmbridge/pkg/chat"
)

// sseEvent is one server-sent event record from the streaming branch.
// Records are separated by blank lines and carry these fields:
//
//	id: <task id>
//	event: add | finish | error | interrupted
//	data: <incremental content, may repeat>
//	meta: <JSON with task status and usage, on finish>
type sseEvent struct {
	id    string
	event string
	data  []string
	meta  string
}

// sseMeta is the JSON payload of the meta field on the finish event.
type sseMeta struct {
	RequestID  string       `json:"request_id"`
	TaskID     string       `json:"task_id"`
	TaskStatus string       `json:"task_status"`
	Usage      *invokeUsage `json:"usage"`
}

// parseSSEStream reads SSE records from the given reader, translates them
// to chat.Event values, and sends them on ch. The channel is NOT closed by
// this function; the caller is responsible for closing it.
//
// Malformed records are logged and skipped. Context cancellation stops
// reading immediately.
func parseSSEStream(ctx context.Context, body io.Reader, ch chan<- chat.Event) {
	scanner := bufio.NewScanner(body)
	var ev sseEvent

	for scanner.Scan() {
		// The caller may have gone away mid-stream.
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// A blank line terminates the current record.
		if line == "" {
			if ev.event != "" || len(ev.data) > 0 {
				if done := dispatchEvent(&ev, ch); done {
					return
				}
			}
			ev = sseEvent{}
			continue
		}

		// Comment lines start with a colon.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// A single leading space after the colon is part of the framing,
		// not the value.
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "id":
			ev.id = value
		case "event":
			ev.event = value
		case "data":
			ev.data = append(ev.data, value)
		case "meta":
			ev.meta = value
		}
	}

	// Flush a trailing record not terminated by a blank line.
	if ev.event != "" || len(ev.data) > 0 {
		if dispatchEvent(&ev, ch) {
			return
		}
	}

	// A read failure here usually means the connection dropped.
	if err := scanner.Err(); err != nil {
		// Cancellation already ended the stream cleanly.
		if ctx.Err() != nil {
			return
		}
		ch <- chat.Event{
			Type: chat.EventError,
			Err:  chat.NewServerError("SSE stream read error: " + err.Error()),
		}
	}
}

// dispatchEvent converts one complete SSE record into chat events.
// It reports true when the stream is finished and reading should stop.
func dispatchEvent(ev *sseEvent, ch chan<- chat.Event) bool {
	data := strings.Join(ev.data, "\n")

	switch ev.event {
	case "add", "":
		ch <- chat.Event{
			Type:   chat.EventDelta,
			Delta:  data,
			TaskID: ev.id,
		}
		return false

	case "finish":
		// The finish record may still carry a final content fragment.
		if data != "" {
			ch <- chat.Event{
				Type:   chat.EventDelta,
				Delta:  data,
				TaskID: ev.id,
			}
		}

		done := chat.Event{
			Type:   chat.EventDone,
			TaskID: ev.id,
		}
		if ev.meta != "" {
			var meta sseMeta
			if err := json.Unmarshal([]byte(ev.meta), &meta); err != nil {
				slog.Warn("skipping malformed SSE meta field",
					"error", err.Error(),
					"meta", truncate(ev.meta, 200),
				)
			} else {
				if meta.TaskID != "" {
					done.TaskID = meta.TaskID
				}
				if meta.Usage != nil {
					done.Usage = &chat.Usage{
						PromptTokens:     meta.Usage.PromptTokens,
						CompletionTokens: meta.Usage.CompletionTokens,
						TotalTokens:      meta.Usage.TotalTokens,
					}
				}
			}
		}
		ch <- done
		return true

	case "error", "interrupted":
		message := data
		if message == "" {
			message = "stream " + ev.event
		}
		ch <- chat.Event{
			Type:   chat.EventError,
			TaskID: ev.id,
			Err:    chat.NewModelError(message),
		}
		return true

	default:
		slog.Warn("skipping unknown SSE event type",
			"event", ev.event,
			"data", truncate(data, 200),
		)
		return false
	}
}

// truncate shortens a string for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
