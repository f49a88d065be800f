// Package store defines the known-offer record and its implementations.
package store

import (
	"context"

	"cian_bot/internal/model"
)

// Store is the durable record of offers that have already been notified.
// Membership is full-record identity: an offer counts as known only if an
// offer with the same fingerprint was recorded before.
type Store interface {
	IsKnown(ctx context.Context, offer model.Offer) (bool, error)
	RecordAll(ctx context.Context, offers []model.Offer) error
	Close() error
}
