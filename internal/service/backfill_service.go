package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/observability"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// BackfillService reconstructs missing contributor tiers on legacy tickets.
type BackfillService struct {
	tickets         repository.TicketRepository
	functionalities repository.FunctionalityRepository
	resolver        *credit.Resolver
	writer          *ticketWriter
	cache           ContributionCache
	logger          *zap.Logger
	now             func() time.Time
}

// BackfillChange describes one repaired ticket.
type BackfillChange struct {
	TicketID string
	Key      string
	Entries  int
}

// BackfillReport summarizes a backfill run.
type BackfillReport struct {
	Scanned int
	Changes []BackfillChange
	DryRun  bool
}

// Entries is the total number of repaired ledger entries.
func (r BackfillReport) Entries() int {
	total := 0
	for _, c := range r.Changes {
		total += c.Entries
	}
	return total
}

// NewBackfillService constructs the service.
func NewBackfillService(tickets repository.TicketRepository, functionalities repository.FunctionalityRepository, logger *zap.Logger, metrics *observability.Metrics, retries int) *BackfillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackfillService{
		tickets:         tickets,
		functionalities: functionalities,
		resolver:        credit.NewResolver(logger),
		writer:          newTicketWriter(tickets, retries, logger, metrics),
		logger:          logger,
		now:             time.Now,
	}
}

// WithCache makes a writing run drop cached contribution dashboards.
func (s *BackfillService) WithCache(cache ContributionCache) *BackfillService {
	s.cache = cache
	return s
}

// Run scans every ticket and repairs the ones that need it. With dryRun the
// report is produced without writing.
func (s *BackfillService) Run(ctx context.Context, dryRun bool) (BackfillReport, error) {
	report := BackfillReport{DryRun: dryRun}
	firstNodes, err := s.firstNodes(ctx)
	if err != nil {
		return report, err
	}

	var pending []string
	err = s.tickets.ForEach(ctx, func(t *domain.Ticket) error {
		report.Scanned++
		first := firstNodes[t.FunctionalityID]
		if _, changed := credit.Backfill(t, first, s.now()); changed > 0 {
			pending = append(pending, t.ID)
			if dryRun {
				report.Changes = append(report.Changes, BackfillChange{TicketID: t.ID, Key: t.Key, Entries: changed})
			}
		}
		return nil
	})
	if err != nil {
		return report, apperrors.MapError(err)
	}
	if dryRun {
		return report, nil
	}

	for _, id := range pending {
		var change BackfillChange
		_, err := s.writer.mutate(ctx, id, "backfilled", func(t *domain.Ticket) error {
			ledger, changed := credit.Backfill(t, firstNodes[t.FunctionalityID], s.now())
			t.Contributors = ledger
			change = BackfillChange{TicketID: t.ID, Key: t.Key, Entries: changed}
			return nil
		})
		if err != nil {
			return report, err
		}
		report.Changes = append(report.Changes, change)
		s.logger.Info("contributors backfilled",
			zap.String("ticket_id", change.TicketID),
			zap.Int("entries", change.Entries))
	}
	if len(report.Changes) > 0 {
		if err := InvalidateContributions(ctx, s.cache); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}
	return report, nil
}

// firstNodes resolves the first employee node of every stored workflow up
// front so the ticket scan performs no nested reads.
func (s *BackfillService) firstNodes(ctx context.Context) (map[string]string, error) {
	items, err := s.functionalities.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make(map[string]string, len(items))
	for i := range items {
		if first, ok := s.resolver.FirstEmployeeNode(items[i].Workflow); ok {
			out[items[i].ID] = first
		}
	}
	return out, nil
}
