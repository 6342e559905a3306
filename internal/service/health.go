package service

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/sync/errgroup"

	"itemvault/internal/domain"
)

// HealthService reports backing-store reachability for the health endpoint.
type HealthService struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewHealthService creates a new HealthService over both SQLite pools.
func NewHealthService(writeDB, readDB *sql.DB) *HealthService {
	return &HealthService{writeDB: writeDB, readDB: readDB}
}

// Check pings the write and read pools concurrently. Any failure surfaces as
// UnavailableError.
func (s *HealthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.writeDB.PingContext(ctx) })
	g.Go(func() error { return s.readDB.PingContext(ctx) })

	if err := g.Wait(); err != nil {
		return domain.ErrUnavailable("backing store unreachable: %v", err)
	}
	return nil
}
