package intake

import (
	"errors"
	"io"
	"net/http"

	"resale_support_backend/internal/intake/service"
	"resale_support_backend/internal/line"
	"resale_support_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// signatureHeader carries the webhook body signature.
const signatureHeader = "X-Line-Signature"

// Handler receives LINE webhook deliveries and fans the message events out
// to the conversation state machine.
type Handler struct {
	svc           *service.Service
	channelSecret string
	log           *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(svc *service.Service, channelSecret string, log *logger.Logger) *Handler {
	return &Handler{svc: svc, channelSecret: channelSecret, log: log}
}

// HandleWebhook processes one webhook delivery.
// POST /callback
//
// Events are handled synchronously; the reply token is only valid within the
// delivery window. A failed event is logged and does not fail the delivery,
// otherwise the platform would redeliver and double-process its siblings.
func (h *Handler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	events, err := line.ParseRequest(h.channelSecret, c.GetHeader(signatureHeader), body)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	ctx := c.Request.Context()
	for _, event := range events {
		if event.Type != line.EventTypeMessage {
			continue
		}

		userID := event.Source.UserID
		switch event.Message.Type {
		case line.MessageTypeText:
			if err := h.svc.HandleTextMessage(ctx, userID, event.ReplyToken, event.Message.Text); err != nil {
				h.log.Error("text message handling failed", "user_id", userID, "error", err.Error())
			}
		case line.MessageTypeImage:
			if err := h.svc.HandleImageMessage(ctx, userID, event.ReplyToken, event.Message.ID); err != nil {
				h.log.Error("image message handling failed", "user_id", userID, "error", err.Error())
			}
		}
	}

	c.String(http.StatusOK, "OK")
}
