package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stress/internal/benchmark"
)

// Config selects the alert destinations. Empty fields are skipped.
type Config struct {
	SlackWebhook   string
	SlackToken     string
	SlackChannel   string
	DiscordWebhook string
}

// Manager fans regression alerts out to every configured notifier. It is a
// benchmark.Reporter that only acts when a suite ends with regressions.
type Manager struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *slog.Logger
}

// NewManager builds a Manager from cfg. It returns nil when no destination is
// configured.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	var notifiers []Notifier
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, NewSlackNotifier(cfg.SlackWebhook))
	}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		notifiers = append(notifiers, NewSlackBotNotifier(cfg.SlackToken, cfg.SlackChannel))
	} else if cfg.SlackToken != "" && logger != nil {
		logger.Warn("slack token set without a channel, bot notifications disabled")
	}
	if cfg.DiscordWebhook != "" {
		notifiers = append(notifiers, NewDiscordNotifier(cfg.DiscordWebhook))
	}
	if len(notifiers) == 0 {
		return nil
	}
	return New(logger, notifiers...)
}

// New returns a Manager over the given notifiers.
func New(logger *slog.Logger, notifiers ...Notifier) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{notifiers: notifiers, timeout: 30 * time.Second, logger: logger}
}

// Send delivers alert to every notifier and joins their errors.
func (m *Manager) Send(ctx context.Context, alert Alert) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			m.logger.Warn("regression notification failed", "suite", alert.Suite, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) SuiteStart(string, benchmark.RunConfig) error { return nil }
func (m *Manager) BenchStart(string) error                      { return nil }
func (m *Manager) BenchEnd(benchmark.Result) error              { return nil }

func (m *Manager) SuiteEnd(s *benchmark.Suite) error {
	alert, ok := NewAlert(s)
	if !ok {
		return nil
	}
	return m.Send(context.Background(), alert)
}
