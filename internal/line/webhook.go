package line

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// EventKind classifies a normalized webhook event.
type EventKind string

const (
	// EventMessage is a text message the pipeline can act on.
	EventMessage EventKind = "message"
	// EventOther covers every event the pipeline drops (stickers, follows,
	// postbacks, ...).
	EventOther EventKind = "other"
)

// WebhookPayload is the body of one webhook delivery. A delivery batches
// zero or more events.
type WebhookPayload struct {
	Destination string     `json:"destination"`
	Events      []RawEvent `json:"events"`
}

// RawEvent is one platform event as received on the wire.
type RawEvent struct {
	Type       string     `json:"type"`
	ReplyToken string     `json:"replyToken"`
	Timestamp  int64      `json:"timestamp"`
	Message    RawMessage `json:"message"`
	Source     RawSource  `json:"source"`
}

// RawMessage is the message body of a message-type event.
type RawMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// RawSource identifies where the event originated.
type RawSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
}

// InboundEvent is one actionable unit of work: a text message plus the
// single-use token required to reply to it.
type InboundEvent struct {
	Kind       EventKind
	Text       string
	ReplyToken string
	UserID     string
}

// ParsePayload decodes a raw webhook body.
func ParsePayload(body []byte) (WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookPayload{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	return payload, nil
}

// Normalize filters the payload down to actionable text-message events.
// Non-message and non-text events are dropped silently. A text-message
// event missing its reply token or text is malformed: it is dropped with a
// diagnostic, never surfaced as a request failure, so the webhook is still
// acknowledged and the platform does not redeliver.
func Normalize(payload WebhookPayload, log *slog.Logger) []InboundEvent {
	if log == nil {
		log = slog.Default()
	}
	events := make([]InboundEvent, 0, len(payload.Events))
	for _, raw := range payload.Events {
		if raw.Type != "message" || raw.Message.Type != "text" {
			continue
		}
		if strings.TrimSpace(raw.ReplyToken) == "" || raw.Message.Text == "" {
			log.Warn("dropping malformed message event",
				slog.String("message_id", raw.Message.ID),
				slog.Bool("has_reply_token", raw.ReplyToken != ""),
			)
			continue
		}
		events = append(events, InboundEvent{
			Kind:       EventMessage,
			Text:       raw.Message.Text,
			ReplyToken: raw.ReplyToken,
			UserID:     raw.Source.UserID,
		})
	}
	return events
}
