package discovery

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dropDatabas3/nodereg/internal/http/dto"
	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
	"github.com/dropDatabas3/nodereg/internal/http/metrics"
	svc "github.com/dropDatabas3/nodereg/internal/http/services/discovery"
	"github.com/dropDatabas3/nodereg/internal/observability/logger"
)

// 10 KiB de payload + overhead base64 del resto de los campos
const maxBodySize = 32 * 1024

// Controller maneja POST /discover.
type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) Discover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("discovery.Discover"))

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

	var req dto.DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	nodes, err := c.service.Discover(ctx, req)
	if err != nil {
		appErr := httperrors.FromError(err)
		metrics.RecordDiscoverOutcome(appErr.Code)
		if appErr.HTTPStatus >= 500 {
			log.Error("discover failed", logger.Err(err), logger.ClusterID(req.ClusterID))
		} else {
			log.Debug("discover rejected", logger.Outcome(appErr.Code), logger.ClusterID(req.ClusterID))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	metrics.RecordDiscoverOutcome("success")
	if nodes == nil {
		nodes = []string{}
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.DiscoverResponse{Nodes: nodes})
}
