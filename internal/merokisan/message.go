package merokisan

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message represents a single chat bubble. Messages are append-only.
type Message struct {
	Sender Sender `json:"sender"` // "user" or "bot"
	Text   string `json:"text"`
}

// UserMessage returns a message authored by the user.
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// BotMessage returns a message authored by the assistant.
func BotMessage(text string) Message {
	return Message{Sender: SenderBot, Text: text}
}

// IsBot reports whether the assistant authored the message.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}
