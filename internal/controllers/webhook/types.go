package webhook

// ErrMalformedUpdate is returned when an update cannot be decoded or lacks message.chat.id.
const ErrMalformedUpdate = constError("malformed update")

type constError string

func (e constError) Error() string {
	return string(e)
}

// UpdateDoc documents the part of a Telegram update this service reads.
type UpdateDoc struct {
	// UpdateID is the unique identifier of the update.
	UpdateID int64 `json:"update_id" example:"10000"`
	// Message is the new incoming message.
	Message MessageDoc `json:"message"`
}

// MessageDoc documents the part of a Telegram message this service reads.
type MessageDoc struct {
	// MessageID is the message identifier inside the chat.
	MessageID int64 `json:"message_id" example:"1365"`
	// Text is the UTF-8 text of the message.
	Text string `json:"text" example:"/start"`
	// Chat is the conversation the message belongs to.
	Chat ChatDoc `json:"chat"`
}

// ChatDoc documents a Telegram chat.
type ChatDoc struct {
	// ID is the chat identifier the reply is sent to.
	ID int64 `json:"id" example:"42"`
}
