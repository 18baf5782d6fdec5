// Package http arma el servidor del registry sobre el router cableado.
package http

import (
	"context"
	"net/http"
	"time"
)

// NewServer devuelve el http.Server con los timeouts del servicio.
// El timeout a nivel request lo impone esta capa, no la pipeline.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Shutdown cierra el server con un presupuesto acotado.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
