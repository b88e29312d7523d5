package repository

import (
	"context"

	"github.com/paresh-enterprises/backend/domain"
)

type ContactRepository interface {
	// Insert persists a contact submission, assigning ID and timestamp.
	Insert(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
}
