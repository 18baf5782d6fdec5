// Package middlewares agrupa los decoradores HTTP del registry.
package middlewares

import "net/http"

// Middleware es un decorador de http.Handler; la firma coincide con la que
// espera chi.Router.Use.
type Middleware func(http.Handler) http.Handler
