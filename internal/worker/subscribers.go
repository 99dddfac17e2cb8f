package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/events"
)

// Subscriber attaches its event handlers to a dispatcher.
type Subscriber interface {
	RegisterHandlers(dispatcher events.Dispatcher)
}

// StartSubscribers registers every non-nil subscriber on the dispatcher.
func StartSubscribers(dispatcher events.Dispatcher, logger *zap.Logger, subscribers ...Subscriber) int {
	if dispatcher == nil {
		return 0
	}
	started := 0
	for _, sub := range subscribers {
		if sub == nil {
			continue
		}
		sub.RegisterHandlers(dispatcher)
		started++
	}
	if logger != nil {
		logger.Info("event subscribers started", zap.Int("count", started))
	}
	return started
}
