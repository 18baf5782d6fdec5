package clusters

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dropDatabas3/nodereg/internal/http/dto"
	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
	svc "github.com/dropDatabas3/nodereg/internal/http/services/clusters"
	"github.com/dropDatabas3/nodereg/internal/observability/logger"
)

const maxBodySize = 64 * 1024 // 64KB: una SPKI P-256 en base64 entra de sobra

// Controller maneja POST /clusters.
type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("clusters.Register"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithDetail("Content-Type debe ser application/json"))
		return
	}

	var req dto.RegisterClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	outcome, err := c.service.Register(ctx, req.ClusterID, req.PublicKey)
	if err != nil {
		log.Debug("register rejected", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	switch outcome {
	case svc.Created:
		httperrors.WriteJSON(w, http.StatusCreated, dto.RegisterClusterResponse{Result: "created"})
	default:
		httperrors.WriteJSON(w, http.StatusOK, dto.RegisterClusterResponse{Result: "already_exists"})
	}
}
