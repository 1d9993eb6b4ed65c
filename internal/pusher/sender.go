package pusher

import (
	"context"
	"time"

	"cryptopusher/internal/alert"
	"cryptopusher/internal/notification"
	"cryptopusher/pkg/notify"

	"go.uber.org/zap"
)

// Sender emits at most one notification burst per interval, and only when
// the gate recorded a new edge since the last burst and some symbol is still
// alerting.
type Sender struct {
	store    StateReader
	gate     *alert.Gate
	throttle *alert.Throttle
	composer *notification.Composer
	notifier notify.Service
	ids      *notify.IDGenerator

	interval    time.Duration
	sendTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type SenderConfig struct {
	Interval    time.Duration
	SendTimeout time.Duration
}

func NewSender(
	store StateReader,
	gate *alert.Gate,
	throttle *alert.Throttle,
	composer *notification.Composer,
	notifier notify.Service,
	ids *notify.IDGenerator,
	cfg SenderConfig,
	logger *zap.Logger,
) *Sender {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Sender{
		store:       store,
		gate:        gate,
		throttle:    throttle,
		composer:    composer,
		notifier:    notifier,
		ids:         ids,
		interval:    cfg.Interval,
		sendTimeout: cfg.SendTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

// SetClock overrides the time source.
func (s *Sender) SetClock(now func() time.Time) {
	s.now = now
}

// Step attempts one burst. Delivery failures are logged and still advance
// the throttle, so Step itself only fails on a cancelled context.
func (s *Sender) Step(ctx context.Context) error {
	now := s.now()
	if !s.throttle.Ready(now, s.interval) || !s.gate.HasPending() {
		return nil
	}

	states := s.store.GetAll()
	if !notification.AnyAlerting(states) {
		// every edge since the last burst already recovered to NORMAL
		s.gate.ClearPending()
		return nil
	}

	n, ok := s.composer.Compose(states, now)
	if !ok {
		return nil
	}

	msg := notify.Message{
		ID:        s.ids.Next(),
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Payload.Data(),
		CreatedAt: now,
	}
	triggered := s.gate.Pending()

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	err := s.notifier.Send(sendCtx, msg)
	cancel()

	s.throttle.MarkSent(now)
	s.gate.ClearPending()

	if err != nil {
		s.logger.Error("notification delivery failed",
			zap.Stringer("id", msg.ID),
			zap.Strings("triggered_by", triggered),
			zap.Error(err),
		)
		return ctx.Err()
	}

	s.logger.Info("notification sent",
		zap.Stringer("id", msg.ID),
		zap.Strings("triggered_by", triggered),
		zap.String("body", msg.Body),
	)
	return nil
}
