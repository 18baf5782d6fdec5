// Package memory implementa los stores en memoria (desarrollo/testing).
//
// Disciplina de locking: un solo mutex por store sobre el map; el orden
// secundario se calcula en lectura. Es intercambiable con el store pg:
// mismo contrato observable (orden, unicidad atómica, evict por conjunto).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/google/uuid"
)

type ClusterStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID][]byte
}

func NewClusterStore() *ClusterStore {
	return &ClusterStore{rows: make(map[uuid.UUID][]byte)}
}

func (s *ClusterStore) Get(ctx context.Context, id uuid.UUID) (*core.Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	pk, ok := s.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := make([]byte, len(pk))
	copy(out, pk)
	return &core.Cluster{ID: id, PublicKey: out}, nil
}

func (s *ClusterStore) Add(ctx context.Context, c *core.Cluster) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// check-then-insert bajo el mismo lock: atómico respecto a unicidad
	if _, ok := s.rows[c.ID]; ok {
		return false, nil
	}
	pk := make([]byte, len(c.PublicKey))
	copy(pk, c.PublicKey)
	s.rows[c.ID] = pk
	return true, nil
}

type RegistrationStore struct {
	mu     sync.Mutex
	rows   map[core.Group][]core.NodeRegistration
	nextID int64
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{rows: make(map[core.Group][]core.NodeRegistration)}
}

func groupOf(r *core.NodeRegistration) core.Group {
	return core.Group{
		ClusterID:     r.ClusterID,
		VersionName:   r.VersionName,
		VersionNumber: r.VersionNumber,
	}
}

func (s *RegistrationStore) Add(ctx context.Context, r *core.NodeRegistration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID

	row := *r
	row.EncryptedPayload = make([]byte, len(r.EncryptedPayload))
	copy(row.EncryptedPayload, r.EncryptedPayload)

	g := groupOf(r)
	s.rows[g] = append(s.rows[g], row)
	return nil
}

func (s *RegistrationStore) Get(ctx context.Context, g core.Group, max int) ([]core.NodeRegistration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.rows[g]
	out := make([]core.NodeRegistration, len(rows))
	copy(out, rows)

	// ServerTimestamp desc, empates por ID desc
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServerTimestamp != out[j].ServerTimestamp {
			return out[i].ServerTimestamp > out[j].ServerTimestamp
		}
		return out[i].ID > out[j].ID
	})

	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

func (s *RegistrationStore) Evict(ctx context.Context, g core.Group, maxPerGroup int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.rows[g]
	excess := len(rows) - maxPerGroup
	if excess <= 0 {
		return 0, nil
	}

	// más viejas primero: ServerTimestamp asc, empates por ID asc
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ServerTimestamp != rows[j].ServerTimestamp {
			return rows[i].ServerTimestamp < rows[j].ServerTimestamp
		}
		return rows[i].ID < rows[j].ID
	})

	kept := make([]core.NodeRegistration, len(rows)-excess)
	copy(kept, rows[excess:])
	s.rows[g] = kept
	return int64(excess), nil
}

// NewStores arma el par de stores en memoria listo para el factory.
func NewStores() *core.Stores {
	return &core.Stores{
		Clusters:      NewClusterStore(),
		Registrations: NewRegistrationStore(),
		Ping:          func(ctx context.Context) error { return ctx.Err() },
		Close:         func() error { return nil },
	}
}
