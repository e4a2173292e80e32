package notify

import (
	"context"
	"sync"
)

// Level フラッシュメッセージの種別
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Message is one user-facing notification
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier receives user-facing notifications for the current request
type Notifier interface {
	Success(text string)
	Info(text string)
	Error(text string)
}

// Flash collects messages for a single request
type Flash struct {
	mu       sync.Mutex
	messages []Message
}

// NewFlash 空のコレクタを作成
func NewFlash() *Flash {
	return &Flash{}
}

func (f *Flash) add(level Level, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, Message{Level: level, Text: text})
}

func (f *Flash) Success(text string) { f.add(LevelSuccess, text) }
func (f *Flash) Info(text string)    { f.add(LevelInfo, text) }
func (f *Flash) Error(text string)   { f.add(LevelError, text) }

// Messages returns the collected messages in order; never nil
func (f *Flash) Messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

type discard struct{}

func (discard) Success(string) {}
func (discard) Info(string)    {}
func (discard) Error(string)   {}

// Discard drops every message
var Discard Notifier = discard{}

type ctxKey struct{}

// WithNotifier ctxにNotifierを設定
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// FromContext returns the request notifier, or Discard when none is set
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(ctxKey{}).(Notifier); ok && n != nil {
		return n
	}
	return Discard
}
