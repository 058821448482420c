package waitlist

import (
	"context"
	"strings"
	"sync"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	requests []Request
	emails   map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{emails: make(map[string]struct{})}
}

func (r *MemoryRepo) Create(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strings.ToLower(req.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.emails[key]; ok {
		return ErrDuplicate
	}
	r.emails[key] = struct{}{}
	r.requests = append(r.requests, req)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests), nil
}
