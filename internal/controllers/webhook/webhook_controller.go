package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/DIMO-Network/server-garage/pkg/richerrors"
	"github.com/DIMO-Network/telegram-webhook/internal/telegram"
	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// DefaultOfflineMessage is the reply sent to every chat while the bot is offline.
const DefaultOfflineMessage = "This bot is temporarily offline, sorry."

// MessageSender delivers the reply to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID telegram.ChatID, text string) error
}

// WebhookController answers inbound bot updates with a fixed reply.
type WebhookController struct {
	sender    MessageSender
	replyText string
	seen      *cache.Cache
}

// NewWebhookController creates a new WebhookController. Updates are remembered by id
// for dedupeTTL so a redelivered update is not answered twice; zero disables that.
func NewWebhookController(sender MessageSender, replyText string, dedupeTTL time.Duration) *WebhookController {
	if replyText == "" {
		replyText = DefaultOfflineMessage
	}
	var seen *cache.Cache
	if dedupeTTL > 0 {
		seen = cache.New(dedupeTTL, 2*dedupeTTL)
	}
	return &WebhookController{
		sender:    sender,
		replyText: replyText,
		seen:      seen,
	}
}

// HandleUpdate godoc
// @Summary      Receive a bot update
// @Description  Receives one update pushed by the Telegram webhook and replies to its chat with the offline notice.
// @Tags         Webhook
// @Accept       json
// @Produce      plain
// @Param        X-Telegram-Bot-Api-Secret-Token  header  string  false  "Secret token configured with setWebhook"
// @Param        update  body      UpdateDoc  true  "Telegram update"
// @Success      200     "Update accepted"
// @Failure      400     "Malformed update"
// @Failure      401     "Invalid secret token"
// @Router       /webhook [post]
func (w *WebhookController) HandleUpdate(c *fiber.Ctx) error {
	logger := zerolog.Ctx(c.UserContext())

	update, err := parseUpdate(c.Body())
	if err != nil {
		logger.Warn().Err(err).Msg("Received malformed update")
		return richerrors.Error{
			ExternalMsg: "Malformed update",
			Err:         err,
			Code:        fiber.StatusBadRequest,
		}
	}

	if w.isDuplicate(update.UpdateID) {
		logger.Debug().Int64("updateId", update.UpdateID).Msg("Ignoring redelivered update")
		return c.SendStatus(fiber.StatusOK)
	}

	chatID := update.Message.Chat.ID
	logger.Info().Str("chatId", chatID.String()).Int64("updateId", update.UpdateID).Msgf("Message from chat #%s", chatID)

	if err := w.sender.SendMessage(c.UserContext(), chatID, w.replyText); err != nil {
		// Answering non-200 would make Telegram redeliver the update.
		logger.Error().Err(err).Str("chatId", chatID.String()).Msg("Failed to send reply")
	}
	return c.SendStatus(fiber.StatusOK)
}

func parseUpdate(body []byte) (*telegram.Update, error) {
	var update telegram.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedUpdate, err)
	}
	if update.Message == nil {
		return nil, fmt.Errorf("%w: update has no message", ErrMalformedUpdate)
	}
	if update.Message.Chat == nil || update.Message.Chat.ID == "" {
		return nil, fmt.Errorf("%w: message has no chat id", ErrMalformedUpdate)
	}
	return &update, nil
}

func (w *WebhookController) isDuplicate(updateID int64) bool {
	if w.seen == nil || updateID == 0 {
		return false
	}
	// Add fails when the key is already present and not expired.
	return w.seen.Add(strconv.FormatInt(updateID, 10), struct{}{}, cache.DefaultExpiration) != nil
}
