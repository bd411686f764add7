// Package scheduler runs car-order generation for the current session on
// a cron schedule.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zulandar/waybill/internal/carorder"
	"github.com/zulandar/waybill/internal/store"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler fires carorder.Generate for the current session on a cron
// expression. Duplicate suppression in the generator makes repeated
// firings within one session harmless.
type Scheduler struct {
	store store.Store
	expr  string
}

// New builds a scheduler. The expression is validated up front.
func New(st store.Store, expr string) (*Scheduler, error) {
	if _, err := cronParser.Parse(expr); err != nil {
		return nil, err
	}
	return &Scheduler{store: st, expr: expr}, nil
}

// Run blocks, generating orders at each cron fire time until the context
// is cancelled. Generation failures are logged and the loop continues.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("scheduler: generating car orders on %q", s.expr)
	for {
		d := s.nextFire()
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
		}

		res, err := carorder.Generate(ctx, s.store, carorder.GenerateOpts{})
		if err != nil {
			log.Printf("scheduler: generate failed: %v", err)
			continue
		}
		log.Printf("scheduler: session %d: %d orders generated across %d industries",
			res.SessionNumber, res.OrdersGenerated, res.IndustriesProcessed)
	}
}

// nextFire returns the duration until the next fire time.
func (s *Scheduler) nextFire() time.Duration {
	sched, err := cronParser.Parse(s.expr)
	if err != nil {
		return 0
	}
	d := time.Until(sched.Next(time.Now()))
	if d < 0 {
		return 0
	}
	return d
}
