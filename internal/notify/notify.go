// Package notify implements dayguard's Notification Manager: it fans a
// single domain.Notification out to whichever delivery backends are
// configured, wrapping each attempt in bounded retry. Grounded on the
// teacher's bot.Bot (a thin wrapper over a single Telegram client), split
// here into one backend per transport and a manager that fans out to all
// of them instead of coupling the Telegram client directly to callers.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"dayguard/internal/domain"
)

// Backend delivers one Notification over one transport.
type Backend interface {
	Name() string
	Deliver(ctx context.Context, n domain.Notification) error
}

// Manager implements core.Notifier, fanning a Notification out to every
// registered backend and logging (never propagating) delivery failures:
// a notification backend outage must never block the operation that
// triggered it.
type Manager struct {
	backends []Backend
	logger   *slog.Logger
	retry    retry.Backoff
}

// NewManager builds a Manager with the given backends and a bounded
// exponential backoff (capped at 3 attempts, base 200ms) around each
// delivery, the idiom sethvargo/go-retry is built for.
func NewManager(logger *slog.Logger, backends ...Backend) *Manager {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithMaxRetries(2, b)
	return &Manager{backends: backends, logger: logger, retry: b}
}

// Notify implements core.Notifier. Delivery happens sequentially across
// backends rather than concurrently; a backend outage must never block the
// operation that triggered the notification, so failures are only logged.
func (m *Manager) Notify(ctx context.Context, n domain.Notification) {
	for _, backend := range m.backends {
		err := retry.Do(ctx, m.retry, func(ctx context.Context) error {
			if dErr := backend.Deliver(ctx, n); dErr != nil {
				return retry.RetryableError(dErr)
			}
			return nil
		})
		if err != nil {
			m.logger.Warn("notification delivery failed", "backend", backend.Name(), "title", n.Title, "error", err)
			continue
		}
		m.logger.Info("notification delivered", "backend", backend.Name(), "title", n.Title)
	}
}
