package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/internal/infrastructure/outbox"
	"github.com/paresh-enterprises/backend/usecase"
)

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxProcessor delivers queued notification emails on a schedule. It also
// implements usecase.ContactNotifier: new notifications are sent immediately
// when possible and parked in the outbox otherwise.
type OutboxProcessor struct {
	store      *outbox.Store
	sender     Sender
	ownerEmail string
	logger     *zap.Logger
	cron       *cron.Cron
	cfg        ProcessorConfig
}

func NewOutboxProcessor(
	store *outbox.Store,
	sender Sender,
	ownerEmail string,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *OutboxProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &OutboxProcessor{
		store:      store,
		sender:     sender,
		ownerEmail: ownerEmail,
		logger:     logger,
		cfg:        cfg,
		cron:       cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = p.cron.AddFunc(schedule, func() {
		if err := p.Drain(); err != nil {
			p.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return p
}

var _ usecase.ContactNotifier = (*OutboxProcessor)(nil)

// Start launches the cron scheduler.
func (p *OutboxProcessor) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("outbox processor started")
}

// Stop gracefully stops the scheduler.
func (p *OutboxProcessor) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("outbox processor stopped")
}

// NotifyContact forwards a stored submission to the site owner. Immediate
// delivery is attempted first; on failure the email is parked durably.
func (p *OutboxProcessor) NotifyContact(_ context.Context, contact *domain.Contact) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("outbox processor not configured")
	}
	if contact == nil {
		return domain.ErrInvalidPayload
	}

	email := outbox.Email{
		To:      p.ownerEmail,
		Subject: "New Contact Form Submission",
		Body:    renderContactEmail(contact),
	}

	if p.sender != nil && p.sender.Reachable() {
		if err := p.sender.Send(email.To, email.Subject, email.Body); err == nil {
			return nil
		} else {
			p.logger.Warn("immediate delivery failed, queueing", zap.Error(err))
		}
	}
	return p.store.Enqueue(email)
}

// Drain sends queued emails, dropping items that exhausted their retries.
func (p *OutboxProcessor) Drain() error {
	if p == nil || p.store == nil {
		return nil
	}
	if p.sender == nil || !p.sender.Reachable() {
		p.logger.Debug("skipping outbox drain (smtp unreachable)")
		return nil
	}

	emails, err := p.store.GetBatch(p.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, email := range emails {
		if err := p.sender.Send(email.To, email.Subject, email.Body); err != nil {
			p.logger.Error("failed to deliver queued email",
				zap.String("email_id", email.ID),
				zap.Error(err))

			email.Retries++
			if email.Retries >= p.cfg.MaxRetries {
				p.logger.Warn("dropping email (max retries reached)", zap.String("email_id", email.ID))
				_ = p.store.Remove(email)
				continue
			}

			if err := p.store.Requeue(email); err != nil {
				p.logger.Error("failed to requeue email", zap.Error(err))
			}
			continue
		}

		if err := p.store.Remove(email); err != nil {
			p.logger.Warn("failed to purge delivered email", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued emails.
func (p *OutboxProcessor) Size() int {
	if p == nil || p.store == nil {
		return 0
	}
	size, err := p.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func renderContactEmail(contact *domain.Contact) string {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}
	return fmt.Sprintf(
		"New contact submission:\n\n"+
			"Name: %s\nEmail: %s\nCompany: %s\nPhone: %s\nSubject: %s\n\nMessage:\n%s\n",
		contact.Name,
		contact.Email,
		orNA(contact.Company),
		orNA(contact.Phone),
		orNA(contact.Subject),
		contact.Message,
	)
}
