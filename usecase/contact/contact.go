package contact

import (
	"context"

	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/repository"
	"github.com/paresh-enterprises/backend/usecase"
)

// UseCase persists contact-form submissions and forwards them by email.
type UseCase struct {
	contacts repository.ContactRepository
	notifier usecase.ContactNotifier
	logger   *zap.Logger
}

func New(contacts repository.ContactRepository, notifier usecase.ContactNotifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		contacts: contacts,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit stores the submission and queues the owner notification. The email
// is best effort: once the record is persisted, a notification failure is
// logged but never surfaced to the submitter.
func (uc *UseCase) Submit(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	stored, err := uc.contacts.Insert(ctx, contact)
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyContact(ctx, stored); err != nil {
			uc.logger.Warn("contact notification failed",
				zap.String("contact_id", stored.ID),
				zap.Error(err))
		}
	}

	uc.logger.Info("contact submission stored", zap.String("contact_id", stored.ID))
	return stored, nil
}
