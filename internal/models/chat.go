// internal/models/chat.go
package models

import "time"

// ChatMessage is one entry of the assistant transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}
