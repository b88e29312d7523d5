package usecase

import (
	"context"

	"github.com/paresh-enterprises/backend/domain"
)

// ContactNotifier hands a stored contact submission to the delivery pipeline.
// Implementations must be durable enough that a transient mail outage does
// not lose the notification.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, contact *domain.Contact) error
}
