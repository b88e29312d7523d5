package handler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/paresh-enterprises/backend/api/handler"
	"github.com/paresh-enterprises/backend/domain"
	contactUC "github.com/paresh-enterprises/backend/usecase/contact"
)

type memoryContactRepo struct {
	mu       sync.Mutex
	contacts []*domain.Contact
}

func (r *memoryContactRepo) Insert(_ context.Context, contact *domain.Contact) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := *contact
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	r.contacts = append(r.contacts, &record)
	copied := record
	return &copied, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []*domain.Contact
}

func (n *recordingNotifier) NotifyContact(_ context.Context, contact *domain.Contact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, contact)
	return nil
}

func TestContactSubmit(t *testing.T) {
	t.Run("persists and acknowledges", func(t *testing.T) {
		repo := &memoryContactRepo{}
		notifier := &recordingNotifier{}
		h := handler.NewContactHandler(contactUC.New(repo, notifier, nil), nil, nil)

		ctx := doPost(h.Submit, "/api/contact",
			`{"name":"Jane","email":"jane@x.com","subject":"Quote","message":"Need pricing."}`)

		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "Contact form submitted successfully!")

		require.Len(t, repo.contacts, 1)
		assert.Equal(t, "jane@x.com", repo.contacts[0].Email)
		require.Len(t, notifier.notified, 1)
	})

	t.Run("rejects missing message", func(t *testing.T) {
		h := handler.NewContactHandler(contactUC.New(&memoryContactRepo{}, &recordingNotifier{}, nil), nil, nil)

		ctx := doPost(h.Submit, "/api/contact", `{"name":"Jane","email":"jane@x.com"}`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		h := handler.NewContactHandler(contactUC.New(&memoryContactRepo{}, &recordingNotifier{}, nil), nil, nil)

		ctx := doPost(h.Submit, "/api/contact", `{"name":"Jane","email":"not-an-email","message":"hi"}`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})
}
