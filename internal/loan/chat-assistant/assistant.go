// internal/loan/chat-assistant/assistant.go
package chatassistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "loan-approval-client/internal/common/errors"
	"loan-approval-client/internal/common/logger"
	"loan-approval-client/internal/common/metrics"
	"loan-approval-client/internal/models"
)

const ComponentName = "chat-assistant"

var (
	ErrEmptyMessage    = errors.New("EMPTY_MESSAGE")
	ErrRequestInFlight = errors.New("REQUEST_IN_FLIGHT")
)

// Chatbot is the part of the scoring client the assistant needs.
type Chatbot interface {
	ChatbotQuery(ctx context.Context, message, language string) (*models.ChatbotResponse, error)
}

// Recorder receives reply measurements.
type Recorder interface {
	RecordChatReply(ctx context.Context, fallback bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordChatReply(context.Context, bool) {}

type Option func(*Assistant)

func WithRecorder(r Recorder) Option {
	return func(a *Assistant) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

// Assistant keeps an append-only transcript with the service chatbot.
// Only one question may be outstanding at a time.
type Assistant struct {
	mu sync.Mutex

	chatbot  Chatbot
	recorder Recorder
	logger   logger.Logger
	now      func() time.Time

	language   string
	transcript []models.ChatMessage
	busy       bool
}

func NewAssistant(chatbot Chatbot, language string, log logger.Logger, opts ...Option) *Assistant {
	if language == "" {
		language = models.DefaultLanguage
	}
	a := &Assistant{
		chatbot:  chatbot,
		recorder: noopRecorder{},
		now:      time.Now,
		language: language,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.WithFields(map[string]interface{}{
		"component": ComponentName,
		"sessionId": uuid.NewString(),
	})
	a.transcript = []models.ChatMessage{{
		ID:        WelcomeID,
		Text:      WelcomeMessage,
		IsUser:    false,
		Timestamp: a.now(),
	}}
	return a
}

func (a *Assistant) Language() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

// SetLanguage changes the language sent with later questions.
func (a *Assistant) SetLanguage(language string) {
	if language == "" {
		return
	}
	a.mu.Lock()
	a.language = language
	a.mu.Unlock()
}

func (a *Assistant) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Transcript returns a copy of every entry so far, oldest first.
func (a *Assistant) Transcript() []models.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ChatMessage(nil), a.transcript...)
}

// Send appends the user's message, asks the service, and appends its reply or
// the fallback apology. It returns the appended reply entry. Blank messages and
// sends while a question is outstanding are refused without touching the transcript.
func (a *Assistant) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return models.ChatMessage{}, fmt.Errorf("%w: wait for the previous reply", ErrRequestInFlight)
	}
	a.busy = true
	language := a.language
	a.appendLocked(text, true)
	a.mu.Unlock()

	reply, err := a.chatbot.ChatbotQuery(ctx, text, language)

	answer := ""
	if err == nil && reply != nil {
		answer = strings.TrimSpace(reply.Response)
	}
	fallback := answer == ""
	if fallback {
		answer = FallbackMessage
		fields := map[string]interface{}{"language": language}
		if err != nil {
			fields["errorCode"] = string(apperrors.CodeOf(err))
			fields["error"] = err.Error()
		}
		a.logger.Warn("chatbot reply unavailable, using fallback", fields)
	}
	a.recorder.RecordChatReply(ctx, fallback)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = false
	return a.appendLocked(answer, false), nil
}

func (a *Assistant) appendLocked(text string, isUser bool) models.ChatMessage {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: a.now(),
	}
	a.transcript = append(a.transcript, msg)

	sender := "assistant"
	if isUser {
		sender = "user"
	}
	metrics.ChatMessagesTotal.WithLabelValues(sender).Inc()
	return msg
}
