package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"remindbot/reminder"
)

// Notifier delivers a due reminder to its subscribers.
type Notifier interface {
	Notify(ctx context.Context, r *reminder.Reminder, users []string) error
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(ctx context.Context, r *reminder.Reminder, users []string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r *reminder.Reminder, users []string) error {
	return f(ctx, r, users)
}

// LogNotifier writes due reminders to a logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs the reminder.
func (n LogNotifier) Notify(_ context.Context, r *reminder.Reminder, users []string) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("reminder due",
		zap.Stringer("id", r.ID),
		zap.String("at", r.Display()),
		zap.String("message", r.Message),
		zap.Strings("users", users))
	return nil
}

// MultiNotifier fans a reminder out to several notifiers. Every notifier is
// called; their errors are joined.
type MultiNotifier []Notifier

// Notify calls each notifier in order.
func (m MultiNotifier) Notify(ctx context.Context, r *reminder.Reminder, users []string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r, users); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
