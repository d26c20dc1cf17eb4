// Package notify carries user-facing notifications (success, error, info).
// Delivery is fire-and-forget: a notifier never fails its caller.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
}

// LogNotifier emits notifications as structured log events. The request
// logger in ctx is preferred so notices carry request and user ids.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(l zerolog.Logger) *LogNotifier { return &LogNotifier{log: l} }

func (n *LogNotifier) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &n.log
}

func (n *LogNotifier) Success(ctx context.Context, msg string) {
	n.logger(ctx).Info().Str("notice", string(LevelSuccess)).Msg(msg)
}

func (n *LogNotifier) Error(ctx context.Context, msg string) {
	n.logger(ctx).Warn().Str("notice", string(LevelError)).Msg(msg)
}

func (n *LogNotifier) Info(ctx context.Context, msg string) {
	n.logger(ctx).Info().Str("notice", string(LevelInfo)).Msg(msg)
}

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder keeps notifications in memory and optionally forwards them.
type Recorder struct {
	next Notifier

	mu      sync.Mutex
	notices []Notice
}

func NewRecorder(next Notifier) *Recorder { return &Recorder{next: next} }

func (r *Recorder) add(ctx context.Context, lvl Level, msg string) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Level: lvl, Message: msg})
	r.mu.Unlock()
	if r.next == nil {
		return
	}
	switch lvl {
	case LevelSuccess:
		r.next.Success(ctx, msg)
	case LevelError:
		r.next.Error(ctx, msg)
	default:
		r.next.Info(ctx, msg)
	}
}

func (r *Recorder) Success(ctx context.Context, msg string) { r.add(ctx, LevelSuccess, msg) }
func (r *Recorder) Error(ctx context.Context, msg string)   { r.add(ctx, LevelError, msg) }
func (r *Recorder) Info(ctx context.Context, msg string)    { r.add(ctx, LevelInfo, msg) }

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

type discard struct{}

func (discard) Success(context.Context, string) {}
func (discard) Error(context.Context, string)   {}
func (discard) Info(context.Context, string)    {}

// Discard drops every notification.
var Discard Notifier = discard{}
