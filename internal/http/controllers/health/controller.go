package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/nodereg/internal/http/errors"
)

// Controller expone /healthz (vivo) y /readyz (store alcanzable).
type Controller struct {
	ping func(ctx context.Context) error
}

func NewController(ping func(ctx context.Context) error) *Controller {
	return &Controller{ping: ping}
}

func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if c.ping != nil {
		if err := c.ping(ctx); err != nil {
			httperrors.WriteError(w, httperrors.New(http.StatusServiceUnavailable, "not_ready", "store unreachable").WithCause(err))
			return
		}
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
