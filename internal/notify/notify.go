// Package notify announces finished builds to external subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/retry"
)

// BuildCompleted is the message published when a build finishes.
type BuildCompleted struct {
	BuildID    string         `json:"build_id"`
	Outcome    string         `json:"outcome"`
	Mode       string         `json:"mode"`
	Commit     string         `json:"commit,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DurationMS int64          `json:"duration_ms"`
	Chunks     map[string]int `json:"chunks,omitempty"`
	Warnings   int            `json:"warnings"`
	Error      string         `json:"error,omitempty"`
}

// Publisher delivers build notifications.
type Publisher interface {
	PublishBuildCompleted(ctx context.Context, evt BuildCompleted) error
	Close() error
}

// NoopPublisher discards notifications.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildCompleted(context.Context, BuildCompleted) error { return nil }
func (NoopPublisher) Close() error                                                { return nil }

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes notifications as JSON on a NATS subject.
type NATSPublisher struct {
	logger  *slog.Logger
	conn    conn
	subject string
	timeout time.Duration
	policy  retry.Policy
}

// New returns a NATS publisher when cfg names a server, else a NoopPublisher.
// A nil logger means slog.Default().
func New(cfg config.NotifyConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		return NoopPublisher{}, nil
	}
	return NewNATSPublisher(cfg, logger)
}

// NewNATSPublisher connects to cfg.NATSURL.
func NewNATSPublisher(cfg config.NotifyConfig, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("sitebuild"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotify, "connect to NATS").
			WithContext("url", cfg.NATSURL).
			Retryable().
			Build()
	}
	p := newNATSPublisher(nc, cfg).WithLogger(logger)
	p.logger.Info("NATS publisher initialized", "url", cfg.NATSURL, "subject", p.subject)
	return p, nil
}

func newNATSPublisher(c conn, cfg config.NotifyConfig) *NATSPublisher {
	subject := cfg.Subject
	if subject == "" {
		subject = config.DefaultNotifySubject
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultNotifyTimeout
	}
	// A retry delay above the default cap raises the cap instead of being clipped.
	maxDelay := max(retry.DefaultPolicy().Max, cfg.RetryDelay)
	return &NATSPublisher{
		logger:  slog.Default(),
		conn:    c,
		subject: subject,
		timeout: timeout,
		policy:  retry.NewPolicy(retry.BackoffExponential, cfg.RetryDelay, maxDelay, cfg.Retries),
	}
}

// WithLogger sets the publisher's logger. A nil logger is ignored.
func (p *NATSPublisher) WithLogger(l *slog.Logger) *NATSPublisher {
	if l != nil {
		p.logger = l
	}
	return p
}

// PublishBuildCompleted publishes evt and waits for the server to acknowledge
// the flush. Transient failures are retried according to the configured policy.
func (p *NATSPublisher) PublishBuildCompleted(ctx context.Context, evt BuildCompleted) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal build notification").Build()
	}
	if err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
		return p.publish(ctx, data)
	}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "Published build notification",
		logfields.BuildID(evt.BuildID),
		"subject", p.subject,
		"outcome", evt.Outcome)
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "publish build notification").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "flush build notification").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
