// Package clusters implementa el registro trust-on-first-use de claves.
package clusters

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"

	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
	"github.com/dropDatabas3/nodereg/internal/observability/logger"
	"github.com/dropDatabas3/nodereg/internal/security/signature"
	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/google/uuid"
)

// Outcome del registro; el controller lo mapea a 201/200.
type Outcome int

const (
	Created Outcome = iota
	AlreadyExists
)

type Service struct {
	store core.ClusterStore
}

func NewService(store core.ClusterStore) *Service {
	return &Service{store: store}
}

// Register vincula (cluster_id → public_key). El primer escritor es dueño
// del id; re-registro byte-idéntico es no-op, cualquier otra clave se
// rechaza. La carrera entre escritores la resuelve la unicidad del store.
func (s *Service) Register(ctx context.Context, clusterIDText, publicKeyB64 string) (Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("clusters.Register"))

	id, err := uuid.Parse(clusterIDText)
	if err != nil {
		return 0, httperrors.ErrInvalidGUIDFormat
	}

	pk, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return 0, httperrors.ErrInvalidPublicKey
	}
	if !signature.ValidatePublicKey(pk) {
		return 0, httperrors.ErrInvalidPublicKey
	}

	existing, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		if bytes.Equal(existing.PublicKey, pk) {
			return AlreadyExists, nil
		}
		return 0, httperrors.ErrPublicKeyMismatch
	case errors.Is(err, core.ErrNotFound):
		// sigue al insert
	default:
		return 0, httperrors.ErrInternal.WithCause(err)
	}

	inserted, err := s.store.Add(ctx, &core.Cluster{ID: id, PublicKey: pk})
	if err != nil {
		return 0, httperrors.ErrInternal.WithCause(err)
	}
	if inserted {
		log.Info("cluster registered", logger.ClusterID(id.String()))
		return Created, nil
	}

	// Perdimos la carrera: otro escritor insertó entre el Get y el Add.
	// Releer para decidir idempotencia vs mismatch.
	winner, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, httperrors.ErrInternal.WithCause(err)
	}
	if bytes.Equal(winner.PublicKey, pk) {
		return AlreadyExists, nil
	}
	return 0, httperrors.ErrPublicKeyMismatch
}
