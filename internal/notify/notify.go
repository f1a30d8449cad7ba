// Package notify builds and delivers the transient success/error notices
// shown after a mutation. Notices are fire-and-forget: they are neither
// persisted nor queryable.
package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is the notice severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one user-facing message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Mutation verbs as they appear in notices.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var pastTense = map[string]string{OpCreate: "created", OpUpdate: "updated", OpDelete: "deleted"}
var gerund = map[string]string{OpCreate: "creating", OpUpdate: "updating", OpDelete: "deleting"}

// ForMutation returns the notice for a mutation of the entity labelled label.
//
//	ForMutation("Dispatch", "create", nil)  -> "Dispatch created successfully."
//	ForMutation("Dispatch", "create", err)  -> "Error creating dispatch: <err>"
func ForMutation(label, op string, err error) Notice {
	if err == nil {
		verb, ok := pastTense[op]
		if !ok {
			verb = op
		}
		return Notice{Level: LevelSuccess, Message: label + " " + verb + " successfully."}
	}
	verb, ok := gerund[op]
	if !ok {
		verb = op
	}
	return Notice{Level: LevelError, Message: "Error " + verb + " " + strings.ToLower(label) + ": " + err.Error()}
}

// Notifier delivers notices. Notify must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the request logger when one is attached to
// ctx, else to the global logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, n Notice) {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}
	ev := l.Info()
	if n.Level == LevelError {
		ev = l.Warn()
	}
	ev.Str("notice_level", string(n.Level)).Msg(n.Message)
}

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
