package core

import (
	"context"

	"github.com/google/uuid"
)

// ClusterStore persiste el binding cluster_id → public_key.
type ClusterStore interface {
	// Get devuelve el cluster o ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Cluster, error)

	// Add inserta el cluster. Debe ser atómico respecto a la unicidad de ID:
	// bajo dos Add concurrentes con el mismo id, exactamente uno persiste
	// y el otro retorna inserted=false.
	Add(ctx context.Context, c *Cluster) (inserted bool, err error)
}

// RegistrationStore persiste las filas de discovery por grupo.
type RegistrationStore interface {
	// Add inserta la fila y rellena ID. EncryptedPayload y ServerTimestamp
	// vienen ya construidos por el caller.
	Add(ctx context.Context, r *NodeRegistration) error

	// Get devuelve hasta max filas del grupo, ordenadas por
	// ServerTimestamp descendente (empates por ID descendente).
	Get(ctx context.Context, g Group, max int) ([]NodeRegistration, error)

	// Evict borra las (count - maxPerGroup) filas más viejas del grupo si
	// count > maxPerGroup. Orden de borrado: ServerTimestamp asc, ID asc.
	// Devuelve cuántas filas eliminó.
	Evict(ctx context.Context, g Group, maxPerGroup int) (int64, error)
}

// Stores agrupa ambos stores más el cierre del backend.
type Stores struct {
	Clusters      ClusterStore
	Registrations RegistrationStore
	Ping          func(ctx context.Context) error
	Close         func() error
}
