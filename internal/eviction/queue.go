package eviction

import (
	"sync"

	"github.com/dropDatabas3/nodereg/internal/store/core"
)

// Queue es la cola de hints: múltiples productores que nunca bloquean,
// un solo consumidor. Capacidad ilimitada: los hints son registros chicos
// de tamaño fijo y la tasa de producción la acota el throughput de requests.
type Queue struct {
	mu     sync.Mutex
	items  []core.Group
	signal chan struct{}
}

func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Enqueue agrega un hint. Nunca bloquea.
func (q *Queue) Enqueue(g core.Group) {
	q.mu.Lock()
	q.items = append(q.items, g)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop saca el hint más viejo, o false si la cola está vacía.
func (q *Queue) pop() (core.Group, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return core.Group{}, false
	}
	g := q.items[0]
	q.items = q.items[1:]
	return g, true
}

// Len devuelve los hints pendientes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
