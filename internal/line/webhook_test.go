package line_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaiunlab/kaiun/internal/line"
)

func TestParsePayload(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"destination": "U0000",
		"events": [
			{"type":"message","replyToken":"tok-1","message":{"id":"m1","type":"text","text":"恋愛運を教えて"},"source":{"type":"user","userId":"U1"}},
			{"type":"follow","replyToken":"tok-2"}
		]
	}`)

	payload, err := line.ParsePayload(body)
	require.NoError(t, err)
	require.Len(t, payload.Events, 2)
	require.Equal(t, "tok-1", payload.Events[0].ReplyToken)
	require.Equal(t, "恋愛運を教えて", payload.Events[0].Message.Text)
}

func TestParsePayload_Invalid(t *testing.T) {
	t.Parallel()

	_, err := line.ParsePayload([]byte(`{"events":`))
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		events []line.RawEvent
		want   int
	}{
		{
			name: "text message yields one event",
			events: []line.RawEvent{
				{Type: "message", ReplyToken: "tok", Message: line.RawMessage{Type: "text", Text: "hi"}},
			},
			want: 1,
		},
		{
			name: "non-message events dropped silently",
			events: []line.RawEvent{
				{Type: "follow", ReplyToken: "tok"},
				{Type: "postback", ReplyToken: "tok"},
			},
			want: 0,
		},
		{
			name: "non-text message dropped silently",
			events: []line.RawEvent{
				{Type: "message", ReplyToken: "tok", Message: line.RawMessage{Type: "sticker"}},
			},
			want: 0,
		},
		{
			name: "missing reply token is malformed",
			events: []line.RawEvent{
				{Type: "message", Message: line.RawMessage{Type: "text", Text: "hi"}},
			},
			want: 0,
		},
		{
			name: "missing text is malformed",
			events: []line.RawEvent{
				{Type: "message", ReplyToken: "tok", Message: line.RawMessage{Type: "text"}},
			},
			want: 0,
		},
		{
			name: "mixed batch keeps only actionable events in order",
			events: []line.RawEvent{
				{Type: "message", ReplyToken: "tok-1", Message: line.RawMessage{Type: "text", Text: "first"}},
				{Type: "follow"},
				{Type: "message", ReplyToken: "tok-2", Message: line.RawMessage{Type: "text", Text: "second"}},
			},
			want: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := line.Normalize(line.WebhookPayload{Events: tc.events}, nil)
			require.Len(t, got, tc.want)
			for i, ev := range got {
				require.Equal(t, line.EventMessage, ev.Kind)
				require.NotEmpty(t, ev.ReplyToken, "event %d", i)
				require.NotEmpty(t, ev.Text, "event %d", i)
			}
		})
	}
}

func TestNormalize_PreservesOrderAndFields(t *testing.T) {
	t.Parallel()

	payload := line.WebhookPayload{Events: []line.RawEvent{
		{Type: "message", ReplyToken: "tok-1", Message: line.RawMessage{Type: "text", Text: "first"}, Source: line.RawSource{UserID: "U1"}},
		{Type: "message", ReplyToken: "tok-2", Message: line.RawMessage{Type: "text", Text: "second"}, Source: line.RawSource{UserID: "U2"}},
	}}

	got := line.Normalize(payload, nil)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Text)
	require.Equal(t, "tok-1", got[0].ReplyToken)
	require.Equal(t, "U1", got[0].UserID)
	require.Equal(t, "second", got[1].Text)
}
