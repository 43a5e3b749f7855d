// Package sequence issues the human-facing display numbers stamped on every
// new record and ledger transaction, one monotonically increasing counter per
// organization and entity kind.
package sequence

import "context"

// Kind identifies which counter a display number is drawn from.
type Kind string

const (
	KindPurchase    Kind = "purchase"
	KindOrder       Kind = "order"
	KindSale        Kind = "sale"
	KindTransaction Kind = "transaction"
)

//go:generate mockgen -source=sequence.go -destination=repository_mock.go -package=sequence
type Repository interface {
	// Increment atomically bumps the (org, kind) counter and returns the
	// new value.
	Increment(ctx context.Context, org string, kind Kind) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Next returns the next display number for the organization and kind.
func (s *Service) Next(ctx context.Context, org string, kind Kind) (int64, error) {
	return s.repo.Increment(ctx, org, kind)
}
