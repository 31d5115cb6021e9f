// Package auditmem keeps audit events in memory for no-db mode and tests.
package auditmem

import (
	"context"
	"errors"
	"sync"
	"time"

	"provamark/internal/domain"

	"github.com/google/uuid"
)

type Repository struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func New() *Repository {
	return &Repository{}
}

func (r *Repository) Append(_ context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if event.EventType == "" {
		return domain.AuditEvent{}, errors.New("event_type is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Payload == nil {
		event.Payload = map[string]any{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return event, nil
}

func (r *Repository) ListRecent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.events)
	if limit > n {
		limit = n
	}
	out := make([]domain.AuditEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}
