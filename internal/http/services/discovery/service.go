// Package discovery implementa la pipeline de admisión de POST /discover.
//
// El orden de los pasos es obligatorio y corta en el primer fallo: los
// chequeos posteriores dependen de datos anteriores o exponen otra clase
// de fallo al caller.
package discovery

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"

	"github.com/dropDatabas3/nodereg/internal/eviction"
	"github.com/dropDatabas3/nodereg/internal/http/dto"
	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
	"github.com/dropDatabas3/nodereg/internal/observability/logger"
	"github.com/dropDatabas3/nodereg/internal/replay"
	"github.com/dropDatabas3/nodereg/internal/security/signature"
	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/google/uuid"
)

const (
	NonceSize      = 4
	MaxPayloadSize = 10240
)

type Service struct {
	clusters    core.ClusterStore
	regs        core.RegistrationStore
	replay      *replay.Cache
	hints       *eviction.Queue
	maxPerGroup int
	ts          ordinal
}

func NewService(clusters core.ClusterStore, regs core.RegistrationStore, rc *replay.Cache, hints *eviction.Queue, maxPerGroup int) *Service {
	if maxPerGroup <= 0 {
		maxPerGroup = eviction.DefaultMaxPerGroup
	}
	return &Service{
		clusters:    clusters,
		regs:        regs,
		replay:      rc,
		hints:       hints,
		maxPerGroup: maxPerGroup,
	}
}

// Discover ejecuta la pipeline completa y devuelve los blobs de los pares
// del grupo (base64), excluyendo siempre la fila que este mismo request
// inserta: la lectura ocurre antes del insert.
func (s *Service) Discover(ctx context.Context, req dto.DiscoverRequest) ([]string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("discovery.Discover"))

	// 1. cluster_id como GUID
	clusterID, err := uuid.Parse(req.ClusterID)
	if err != nil {
		return nil, httperrors.ErrInvalidGUIDFormat
	}

	// 2. lookup del cluster; su clave se necesita en el paso 8
	cluster, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, httperrors.ErrClusterNotFound
		}
		return nil, httperrors.ErrInternal.WithCause(err)
	}

	// 3. decodificar los tres campos base64
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		return nil, httperrors.ErrInvalidBase64
	}
	nonce, err := base64.StdEncoding.DecodeString(req.Nonce)
	if err != nil {
		return nil, httperrors.ErrInvalidBase64
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return nil, httperrors.ErrInvalidBase64
	}

	// 4. nonce de exactamente 4 bytes
	if len(nonce) != NonceSize {
		return nil, httperrors.ErrInvalidNonceSize
	}

	// 5. payload acotado
	if len(payload) > MaxPayloadSize {
		return nil, httperrors.ErrPayloadTooLarge
	}

	// 6. version_name requerido
	if req.VersionName == "" {
		return nil, httperrors.ErrInvalidPayload
	}

	// 7. anti-replay sobre (nonce_text, signature_text). La huella queda
	// registrada aunque un paso posterior falle: una firma válida sobre un
	// nonce repetido sigue siendo replay, y una firma inválida sólo quema
	// ese nonce.
	if !s.replay.CheckAndRecord(req.Nonce, req.Signature) {
		log.Warn("replay detected", logger.ClusterID(req.ClusterID))
		return nil, httperrors.ErrReplayAttackDetected
	}

	// 8. verificación de firma sobre la concatenación exacta de los cinco
	// campos en su forma textual, sin separadores
	msg := req.ClusterID + req.VersionName + strconv.FormatInt(req.VersionNumber, 10) + req.Payload + req.Nonce
	if !signature.Verify(cluster.PublicKey, []byte(msg), sig) {
		return nil, httperrors.ErrSignatureVerificationFailed
	}

	group := core.Group{
		ClusterID:     clusterID,
		VersionName:   req.VersionName,
		VersionNumber: req.VersionNumber,
	}

	// 9. leer pares ANTES de insertar: el caller nunca ve su propia fila
	peers, err := s.regs.Get(ctx, group, s.maxPerGroup)
	if err != nil {
		return nil, httperrors.ErrInternal.WithCause(err)
	}

	// 10. persistir con el nonce como prefijo para que el cliente pueda
	// descifrar entradas ajenas sin un campo aparte
	blob := make([]byte, 0, len(nonce)+len(payload))
	blob = append(blob, nonce...)
	blob = append(blob, payload...)

	reg := &core.NodeRegistration{
		ClusterID:        clusterID,
		VersionName:      req.VersionName,
		VersionNumber:    req.VersionNumber,
		EncryptedPayload: blob,
		ServerTimestamp:  s.ts.next(),
	}
	if err := s.regs.Add(ctx, reg); err != nil {
		return nil, httperrors.ErrInternal.WithCause(err)
	}

	// 11. hint de eviction, fire-and-forget: la respuesta no espera la poda
	s.hints.Enqueue(group)

	// 12. responder con los blobs ordenados
	nodes := make([]string, 0, len(peers))
	for _, p := range peers {
		nodes = append(nodes, base64.StdEncoding.EncodeToString(p.EncryptedPayload))
	}
	return nodes, nil
}
