package waitlist

import "context"

// Repo persists waitlist requests.
type Repo interface {
	Create(ctx context.Context, req Request) error
	Count(ctx context.Context) (int, error)
}
