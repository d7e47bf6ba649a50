package config

import (
	"errors"
	"time"

	"github.com/DIMO-Network/telegram-webhook/internal/controllers/webhook"
	"github.com/DIMO-Network/telegram-webhook/internal/telegram"
)

// Settings contains the application config
type Settings struct {
	Port               int           `env:"PORT"`
	MonPort            int           `env:"MON_PORT"`
	EnablePprof        bool          `env:"ENABLE_PPROF"`
	LogLevel           string        `env:"LOG_LEVEL"`
	ServiceName        string        `env:"SERVICE_NAME"`
	TelegramAPIURL     string        `env:"TELEGRAM_API_URL"`
	TelegramBotToken   string        `env:"TELEGRAM_BOT_TOKEN"`
	WebhookPath        string        `env:"WEBHOOK_PATH"`
	WebhookSecretToken string        `env:"WEBHOOK_SECRET_TOKEN"`
	OfflineMessage     string        `env:"OFFLINE_MESSAGE"`
	DownloadDir        string        `env:"DOWNLOAD_DIR"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT"`

	// UpdateDedupeTTL below zero disables update dedupe.
	UpdateDedupeTTL time.Duration `env:"UPDATE_DEDUPE_TTL"`
}

// ApplyDefaults fills in every unset optional setting.
func (s *Settings) ApplyDefaults() {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.MonPort == 0 {
		s.MonPort = 8888
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.ServiceName == "" {
		s.ServiceName = "telegram-webhook"
	}
	if s.TelegramAPIURL == "" {
		s.TelegramAPIURL = telegram.DefaultBaseURL
	}
	if s.WebhookPath == "" {
		s.WebhookPath = "/webhook"
	}
	if s.OfflineMessage == "" {
		s.OfflineMessage = webhook.DefaultOfflineMessage
	}
	if s.DownloadDir == "" {
		s.DownloadDir = "."
	}
	if s.HTTPTimeout == 0 {
		s.HTTPTimeout = 30 * time.Second
	}
	if s.UpdateDedupeTTL == 0 {
		s.UpdateDedupeTTL = 5 * time.Minute
	}
}

// Validate checks the settings that have no usable default.
func (s *Settings) Validate() error {
	if s.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}
