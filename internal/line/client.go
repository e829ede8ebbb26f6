package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.line.me"
	replyPath         = "/v2/bot/message/reply"
)

// Client delivers replies through the LINE Messaging API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a reply client. baseURL is overridable for tests.
func NewClient(log *slog.Logger, accessToken, baseURL string) *Client {
	if log == nil {
		log = slog.Default()
	}
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      log.With(slog.String("client", "line")),
	}
}

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends exactly one text message for the given reply token. Tokens
// are single-use and short-lived: a failed send is reported, never
// retried, because the token cannot be consumed twice.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+replyPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("reply rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
