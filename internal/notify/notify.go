// Package notify delivers transient, user-visible notices: the confirmation
// that something worked, or the reason it did not.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level
	Message string
	Err     error
	At      time.Time
}

func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Message: message}
}

func Info(message string) Notice {
	return Notice{Level: LevelInfo, Message: message}
}

func Error(message string, err error) Notice {
	return Notice{Level: LevelError, Message: message, Err: err}
}

type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Hub fans notices out to subscribers and logs them.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]func(Notice)
	nextID int
	logger *slog.Logger
	now    func() time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[int]func(Notice)),
		logger: logger.With("component", "notify"),
		now:    time.Now,
	}
}

func (h *Hub) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = h.now()
	}
	if n.Level == LevelError {
		h.logger.Warn(n.Message, "error", n.Err)
	} else {
		h.logger.Debug(n.Message, "level", string(n.Level))
	}

	h.mu.Lock()
	subs := make([]func(Notice), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Subscribe registers fn for every future notice. The returned func removes it.
func (h *Hub) Subscribe(fn func(Notice)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}
