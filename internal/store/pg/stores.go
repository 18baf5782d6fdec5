package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Vistas delgadas para satisfacer las interfaces de core sobre un solo Store.

type clusters struct{ s *Store }

func (c clusters) Get(ctx context.Context, id uuid.UUID) (*core.Cluster, error) {
	return c.s.GetCluster(ctx, id)
}

func (c clusters) Add(ctx context.Context, cl *core.Cluster) (bool, error) {
	return c.s.AddCluster(ctx, cl)
}

type registrations struct{ s *Store }

func (r registrations) Add(ctx context.Context, reg *core.NodeRegistration) error {
	return r.s.AddRegistration(ctx, reg)
}

func (r registrations) Get(ctx context.Context, g core.Group, max int) ([]core.NodeRegistration, error) {
	return r.s.GetRegistrations(ctx, g, max)
}

func (r registrations) Evict(ctx context.Context, g core.Group, maxPerGroup int) (int64, error) {
	return r.s.EvictRegistrations(ctx, g, maxPerGroup)
}

// Stores empaqueta el Store como el par de interfaces que consume el core.
func (s *Store) Stores() *core.Stores {
	return &core.Stores{
		Clusters:      clusters{s},
		Registrations: registrations{s},
		Ping:          s.Ping,
		Close:         func() error { s.Close(); return nil },
	}
}
