// Package eviction poda en background las filas que exceden el cupo por
// grupo. El cupo es eventual por diseño: entre el insert y la próxima
// pasada del worker un grupo puede exceder MaxPerGroup transitoriamente.
package eviction

import (
	"context"
	"time"

	"github.com/dropDatabas3/nodereg/internal/observability/logger"
	"github.com/dropDatabas3/nodereg/internal/store/core"
	"go.uber.org/zap"
)

const DefaultMaxPerGroup = 5

// tiempo máximo para drenar hints pendientes en shutdown
const drainTimeout = 5 * time.Second

type Worker struct {
	q           *Queue
	regs        core.RegistrationStore
	maxPerGroup int
	log         *zap.Logger

	// OnEvicted se invoca con el número de filas borradas (>0). Opcional.
	OnEvicted func(n int64)
}

func NewWorker(q *Queue, regs core.RegistrationStore, maxPerGroup int) *Worker {
	if maxPerGroup <= 0 {
		maxPerGroup = DefaultMaxPerGroup
	}
	return &Worker{
		q:           q,
		regs:        regs,
		maxPerGroup: maxPerGroup,
		log:         logger.Named("eviction"),
	}
}

// Run consume hints hasta que ctx se cancele; entonces drena lo pendiente
// con un presupuesto acotado y retorna. Fallos por hint se loguean y se
// tragan: el worker nunca muere por un hint.
func (w *Worker) Run(ctx context.Context) error {
	for {
		g, ok := w.q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				w.drain()
				return nil
			case <-w.q.signal:
				continue
			}
		}
		w.process(ctx, g)

		select {
		case <-ctx.Done():
			w.drain()
			return nil
		default:
		}
	}
}

func (w *Worker) process(ctx context.Context, g core.Group) {
	// un hint ya desencolado se procesa aunque el ctx del Run haya muerto
	// en el medio: el delete corre con un presupuesto propio acotado
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
	}
	n, err := w.regs.Evict(ctx, g, w.maxPerGroup)
	if err != nil {
		w.log.Error("evict failed",
			logger.ClusterID(g.ClusterID.String()),
			logger.Group(g.VersionName, g.VersionNumber),
			logger.Err(err),
		)
		return
	}
	if n > 0 {
		w.log.Debug("evicted",
			logger.ClusterID(g.ClusterID.String()),
			logger.Group(g.VersionName, g.VersionNumber),
			zap.Int64("rows", n),
		)
		if w.OnEvicted != nil {
			w.OnEvicted(n)
		}
	}
}

// drain procesa los hints ya encolados con un contexto fresco: el ctx del
// Run llega cancelado y los deletes necesitan uno vivo.
func (w *Worker) drain() {
	dctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		g, ok := w.q.pop()
		if !ok {
			return
		}
		if dctx.Err() != nil {
			w.log.Warn("drain budget exhausted", zap.Int("pending", w.q.Len()+1))
			return
		}
		w.process(dctx, g)
	}
}
