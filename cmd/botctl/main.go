// Command botctl manages the bot from the command line: webhook registration,
// one-off messages and file downloads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DIMO-Network/server-garage/pkg/env"
	"github.com/DIMO-Network/telegram-webhook/internal/app"
	"github.com/DIMO-Network/telegram-webhook/internal/config"
	"github.com/DIMO-Network/telegram-webhook/internal/telegram"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type settingsLoader func(envFile string) (config.Settings, error)

type result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	load := func(envFile string) (config.Settings, error) {
		return env.LoadSettings[config.Settings](envFile)
	}
	cmd := newRootCmd(load, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(load settingsLoader, out io.Writer) *cobra.Command {
	var envFile string
	var verbose bool

	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Manage the Telegram bot behind telegram-webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to env file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log outbound requests")

	// withAPI loads settings, builds the API and prints the outcome of run.
	withAPI := func(run func(ctx context.Context, api *telegram.API, settings *config.Settings) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			data, err := func() (any, error) {
				settings, err := load(envFile)
				if err != nil {
					return nil, fmt.Errorf("could not load settings: %w", err)
				}
				settings.ApplyDefaults()
				if err := settings.Validate(); err != nil {
					return nil, err
				}
				logger := zerolog.Nop()
				if verbose {
					logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
				}
				api, err := app.NewTelegramAPI(&settings, logger)
				if err != nil {
					return nil, err
				}
				return run(cmd.Context(), api, &settings)
			}()
			return writeResult(out, data, err)
		}
	}

	root.AddCommand(
		newMeCmd(withAPI),
		newSetWebhookCmd(withAPI),
		newDeleteWebhookCmd(withAPI),
		newSendCmd(withAPI),
		newDownloadCmd(withAPI),
	)
	return root
}

type apiRunner func(run func(ctx context.Context, api *telegram.API, settings *config.Settings) (any, error)) func(*cobra.Command, []string) error

func newMeCmd(withAPI apiRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the bot account (checks the token)",
		Args:  cobra.NoArgs,
		RunE: withAPI(func(ctx context.Context, api *telegram.API, _ *config.Settings) (any, error) {
			return api.GetMe(ctx)
		}),
	}
}

func newSetWebhookCmd(withAPI apiRunner) *cobra.Command {
	var webhookURL string
	var allowedUpdates []string
	cmd := &cobra.Command{
		Use:   "set-webhook",
		Short: "Register the webhook URL with Telegram",
		Args:  cobra.NoArgs,
		RunE: withAPI(func(ctx context.Context, api *telegram.API, settings *config.Settings) (any, error) {
			if err := api.SetWebhook(ctx, webhookURL, settings.WebhookSecretToken, allowedUpdates); err != nil {
				return nil, err
			}
			return map[string]string{"url": webhookURL}, nil
		}),
	}
	cmd.Flags().StringVar(&webhookURL, "url", "", "public HTTPS URL of the webhook endpoint")
	cmd.Flags().StringSliceVar(&allowedUpdates, "allowed-updates", []string{"message"}, "update types to receive")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newDeleteWebhookCmd(withAPI apiRunner) *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete-webhook",
		Short: "Remove the webhook registration",
		Args:  cobra.NoArgs,
		RunE: withAPI(func(ctx context.Context, api *telegram.API, _ *config.Settings) (any, error) {
			return nil, api.DeleteWebhook(ctx, dropPending)
		}),
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop updates waiting for delivery")
	return cmd
}

func newSendCmd(withAPI apiRunner) *cobra.Command {
	var chatID, text string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a text message to a chat",
		Args:  cobra.NoArgs,
		RunE: withAPI(func(ctx context.Context, api *telegram.API, settings *config.Settings) (any, error) {
			if text == "" {
				text = settings.OfflineMessage
			}
			if err := api.SendMessage(ctx, telegram.ChatID(chatID), text); err != nil {
				return nil, err
			}
			return map[string]string{"chatId": chatID, "text": text}, nil
		}),
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "chat id or @channel username")
	cmd.Flags().StringVar(&text, "text", "", "message text (defaults to the offline message)")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}

func newDownloadCmd(withAPI apiRunner) *cobra.Command {
	var fileID, outputPath string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a file by file id into DOWNLOAD_DIR",
		Args:  cobra.NoArgs,
		RunE: withAPI(func(ctx context.Context, api *telegram.API, _ *config.Settings) (any, error) {
			return api.DownloadFile(ctx, fileID, outputPath)
		}),
	}
	cmd.Flags().StringVar(&fileID, "file-id", "", "file id from a message")
	cmd.Flags().StringVar(&outputPath, "out", "", "output path relative to DOWNLOAD_DIR")
	_ = cmd.MarkFlagRequired("file-id")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func writeResult(out io.Writer, data any, err error) error {
	res := result{Success: err == nil, Data: data}
	if err != nil {
		res.Error = err.Error()
	}
	if encErr := json.NewEncoder(out).Encode(res); encErr != nil {
		return encErr
	}
	return err
}
