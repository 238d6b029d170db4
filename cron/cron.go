package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TicketPurger removes spent and expired verification tickets.
type TicketPurger interface {
	PurgeTickets(ctx context.Context) (int64, error)
}

const jobTimeout = time.Minute

// Start schedules the housekeeping jobs and starts the scheduler. Callers stop
// it with Stop on shutdown.
func Start(spec string, purger TicketPurger, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { purgeTickets(purger, log) }); err != nil {
		return nil, fmt.Errorf("schedule ticket purge %q: %w", spec, err)
	}
	c.Start()
	log.Info("cron scheduler started", zap.String("ticket_purge", spec))
	return c, nil
}

func purgeTickets(purger TicketPurger, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := purger.PurgeTickets(ctx)
	if err != nil {
		log.Error("purge verification tickets", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("purged verification tickets", zap.Int64("count", n))
	}
}
