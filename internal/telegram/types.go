package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatID identifies a conversation. The Bot API sends integers, but channel
// usernames such as "@channel" are accepted wherever a chat id is expected.
type ChatID string

// UnmarshalJSON accepts either a JSON integer or a JSON string.
func (id *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ChatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chat id must be a number or a string: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("chat id must be an integer: %w", err)
	}
	*id = ChatID(n.String())
	return nil
}

func (id ChatID) String() string {
	return string(id)
}

// Update is one inbound event pushed to the webhook.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is the subset of a Bot API message the bot reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      *Chat  `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   ChatID `json:"id"`
	Type string `json:"type"`
}

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// File is returned by getFile; FilePath is valid for download for at least an hour.
type File struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size"`
	FilePath     string `json:"file_path"`
}

// APIResponse is the envelope around every Bot API result.
type APIResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// APIError is a Bot API call answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	Err         error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed with code %d: %s", e.Method, e.Code, e.Description)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
