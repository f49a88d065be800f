// Package poller runs the fetch, diff, notify, persist cycle.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cian_bot/internal/fetcher"
	"cian_bot/internal/model"
	"cian_bot/internal/store"
)

// Sender is the interface for delivering offer notifications.
type Sender interface {
	Notify(offer model.Offer, recipients map[int64]string)
}

// Poller drives the polling loop: fetch all offers, keep the ones not yet
// known, notify recipients, record, sleep, repeat.
type Poller struct {
	fetcher    *fetcher.Fetcher
	store      store.Store
	sender     Sender
	recipients map[int64]string
	delay      time.Duration
	log        *slog.Logger
}

// New creates a Poller.
func New(f *fetcher.Fetcher, st store.Store, sender Sender, recipients map[int64]string, delay time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		fetcher:    f,
		store:      st,
		sender:     sender,
		recipients: recipients,
		delay:      delay,
		log:        log,
	}
}

// Run loops until ctx is cancelled or a cycle fails fatally. A fetch that
// exhausts its retry budget (or a session that cannot be established) aborts
// the loop with an error; restarting is the supervisor's job.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := p.cycle(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.delay):
		}
	}
}

func (p *Poller) cycle(ctx context.Context) error {
	offers, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch offers: %w", err)
	}

	// Diff against the store as it stood at cycle start, preserving
	// fetch order.
	var fresh []model.Offer
	for _, o := range offers {
		known, err := p.store.IsKnown(ctx, o)
		if err != nil {
			return fmt.Errorf("check known offer %d: %w", o.ID, err)
		}
		if !known {
			fresh = append(fresh, o)
		}
	}

	if len(fresh) == 0 {
		p.log.Debug("cycle complete", "fetched", len(offers), "new", 0)
		return nil
	}

	for _, o := range fresh {
		p.sender.Notify(o, p.recipients)
	}

	// The offers are recorded once delivery has been attempted, whatever
	// the per-recipient outcome. A failed persist is logged and the loop
	// keeps going; the in-memory record already advanced.
	if err := p.store.RecordAll(ctx, fresh); err != nil {
		p.log.Error("persist known offers", "count", len(fresh), "error", err)
	}

	p.log.Info("cycle complete", "fetched", len(offers), "new", len(fresh))
	return nil
}
