package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/observability"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// lookupErr turns a repository miss into a NOT_FOUND naming the resource.
func lookupErr(resource, id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func isPrivileged(actor *domain.Employee) bool {
	return actor != nil && (actor.Role == domain.EmployeeRoleManager || actor.Role == domain.EmployeeRoleAdmin)
}

// ticketWriter runs load, mutate, write-back cycles on a ticket document,
// reloading and re-applying the mutation when the write loses a version race.
type ticketWriter struct {
	tickets repository.TicketRepository
	retries int
	logger  *zap.Logger
	metrics *observability.Metrics
}

func newTicketWriter(tickets repository.TicketRepository, retries int, logger *zap.Logger, metrics *observability.Metrics) *ticketWriter {
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ticketWriter{tickets: tickets, retries: retries, logger: logger, metrics: metrics}
}

// mutate applies fn to a freshly loaded ticket and persists it. fn may run
// more than once and must only touch the ticket it is given.
func (w *ticketWriter) mutate(ctx context.Context, ticketID, kind string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	for attempt := 0; ; attempt++ {
		ticket, err := w.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return nil, lookupErr("ticket", ticketID, err)
		}
		if err := fn(ticket); err != nil {
			return nil, err
		}
		err = w.tickets.Update(ctx, ticket)
		if err == nil {
			w.metrics.RecordLedgerMutation(kind)
			return ticket, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) || attempt >= w.retries {
			return nil, apperrors.MapError(err)
		}
		w.logger.Debug("ticket update lost version race, retrying",
			zap.String("ticket_id", ticketID),
			zap.String("kind", kind),
			zap.Int("attempt", attempt+1))
	}
}
