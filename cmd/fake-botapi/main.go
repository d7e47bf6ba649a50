// Command fake-botapi is a local stand-in for the Telegram Bot API. Point
// TELEGRAM_API_URL at it to watch the replies the webhook sends.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type apiResponse struct {
	OK          bool   `json:"ok"`
	Result      any    `json:"result,omitempty"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

type sentMessage struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID string `json:"id"`
	} `json:"chat"`
}

func newHandler(logger zerolog.Logger) http.Handler {
	var nextID atomic.Int64
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /bot<token>/<method>
		_, method, found := strings.Cut(strings.TrimPrefix(r.URL.Path, "/bot"), "/")
		if !found || !strings.HasPrefix(r.URL.Path, "/bot") {
			writeJSON(w, http.StatusNotFound, apiResponse{Description: "Not Found", ErrorCode: http.StatusNotFound})
			return
		}
		query := r.URL.Query()
		logger.Info().Str("method", method).Str("query", query.Encode()).Msg("Bot API call received")

		switch method {
		case "sendMessage":
			if query.Get("chat_id") == "" {
				writeJSON(w, http.StatusBadRequest, apiResponse{Description: "Bad Request: chat_id is empty", ErrorCode: http.StatusBadRequest})
				return
			}
			msg := sentMessage{MessageID: nextID.Add(1), Text: query.Get("text")}
			msg.Chat.ID = query.Get("chat_id")
			writeJSON(w, http.StatusOK, apiResponse{OK: true, Result: msg})
		case "getMe":
			writeJSON(w, http.StatusOK, apiResponse{OK: true, Result: map[string]any{"id": 1, "is_bot": true, "first_name": "fake", "username": "fake_bot"}})
		case "setWebhook", "deleteWebhook":
			writeJSON(w, http.StatusOK, apiResponse{OK: true, Result: true})
		default:
			writeJSON(w, http.StatusNotFound, apiResponse{Description: "Not Found: method " + method, ErrorCode: http.StatusNotFound})
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("app", "fake-botapi").Logger()
	addr := ":" + strconv.Itoa(*port)
	logger.Info().Str("addr", addr).Msg("Fake Bot API listening")
	if err := http.ListenAndServe(addr, newHandler(logger)); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}
