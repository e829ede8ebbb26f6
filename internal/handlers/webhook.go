package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kaiunlab/kaiun/internal/line"
	"github.com/kaiunlab/kaiun/internal/pipeline"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// WebhookHandler receives LINE webhook deliveries.
type WebhookHandler struct {
	logger        *slog.Logger
	channelSecret string
	controller    *pipeline.Controller
}

// NewWebhookHandler creates the public webhook handler.
func NewWebhookHandler(log *slog.Logger, channelSecret string, controller *pipeline.Controller) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:        log.With(slog.String("handler", "line_webhook")),
		channelSecret: channelSecret,
		controller:    controller,
	}
}

// Register registers webhook callback routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook/line", h.Handle)
}

// Handle authenticates and processes one webhook delivery. The signature
// is verified against the exact raw body bytes before anything is parsed;
// a bad or missing signature rejects the whole request with 403 and no
// event is read. Once authenticated the request is always acknowledged
// with 200, including for malformed events and internal errors, so the
// platform does not redeliver and duplicate replies.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	signature := c.Request().Header.Get(line.SignatureHeader)
	if !line.VerifySignature(body, signature, h.channelSecret) {
		h.logger.Warn("invalid webhook signature", slog.Bool("has_signature", signature != ""))
		return echo.NewHTTPError(http.StatusForbidden, "invalid signature")
	}

	requestID := uuid.NewString()
	log := h.logger.With(slog.String("request_id", requestID))

	payload, err := line.ParsePayload(body)
	if err != nil {
		// Authenticated but undecodable: acknowledge anyway.
		log.Warn("undecodable webhook payload", slog.Any("error", err))
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	events := line.Normalize(payload, log)
	result := h.controller.Process(c.Request().Context(), events)

	log.Info("webhook processed",
		slog.Int("received", len(payload.Events)),
		slog.Int("actionable", result.Processed),
		slog.Int("delivered", result.Delivered),
		slog.Int("failed", result.Failed),
	)

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"processed": result.Processed,
		"delivered": result.Delivered,
	})
}
