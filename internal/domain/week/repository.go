package week

import "context"

// Repository exposes week read and ingestion operations.
type Repository interface {
	List(ctx context.Context) ([]Week, error)
	GetByNumber(ctx context.Context, number int) (Week, bool, error)
	UpsertWeeks(ctx context.Context, weeks []Week) error
}
