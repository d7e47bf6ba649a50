package app

import (
	"fmt"
	"net/http"

	"github.com/DIMO-Network/server-garage/pkg/fibercommon"
	_ "github.com/DIMO-Network/telegram-webhook/docs" // Import Swagger docs
	"github.com/DIMO-Network/telegram-webhook/internal/config"
	"github.com/DIMO-Network/telegram-webhook/internal/controllers/webhook"
	"github.com/DIMO-Network/telegram-webhook/internal/httpclient"
	"github.com/DIMO-Network/telegram-webhook/internal/telegram"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
)

// NewTelegramAPI creates the Bot API wrapper from settings.
func NewTelegramAPI(settings *config.Settings, logger zerolog.Logger) (*telegram.API, error) {
	client := httpclient.New(&http.Client{Timeout: settings.HTTPTimeout}, settings.DownloadDir, logger)
	api, err := telegram.New(client, settings.TelegramAPIURL, settings.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram API: %w", err)
	}
	return api, nil
}

func CreateServers(settings *config.Settings, logger zerolog.Logger) (*fiber.App, error) {
	telegramAPI, err := NewTelegramAPI(settings, logger)
	if err != nil {
		return nil, err
	}
	return CreateFiberApp(logger, telegramAPI, settings), nil
}

// CreateFiberApp sets up the webhook routes.
func CreateFiberApp(logger zerolog.Logger, sender webhook.MessageSender, settings *config.Settings) *fiber.App {
	logger.Info().Msg("Starting Telegram Webhook...")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fibercommon.ErrorHandler(c, err)
		},
		DisableStartupMessage: true,
	})
	app.Use(fibercommon.ContextLoggerMiddleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"data": "Server is up and running",
		})
	})

	webhookController := webhook.NewWebhookController(sender, settings.OfflineMessage, settings.UpdateDedupeTTL)
	logger.Info().Str("path", settings.WebhookPath).Msg("Registering routes...")
	app.Post(settings.WebhookPath, webhook.SecretTokenMiddleware(settings.WebhookSecretToken), webhookController.HandleUpdate)

	return app
}
