// Package replay implementa el seen-set anti-replay con ventana deslizante.
//
// La huella es nonce_base64 + signature_base64 (texto de wire, sin decodificar).
// Es un mecanismo de denegación de replay en proceso, no una barrera de
// correctitud entre reinicios: al reiniciar la ventana queda vacía.
package replay

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const DefaultWindow = 24 * time.Hour

type Cache struct {
	window time.Duration
	c      *gocache.Cache
}

func New(window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{
		window: window,
		c:      gocache.New(window, 10*time.Minute),
	}
}

func (r *Cache) Window() time.Duration { return r.window }

// CheckAndRecord registra la huella si es nueva y devuelve true.
// Si ya estaba, extiende su expiración una ventana desde ahora (sliding)
// y devuelve false. Argumentos vacíos son siempre false.
//
// Add de go-cache es atómico bajo el lock interno: con requests idénticos
// concurrentes exactamente un caller ve true.
func (r *Cache) CheckAndRecord(nonceText, signatureText string) bool {
	if nonceText == "" || signatureText == "" {
		return false
	}
	fp := nonceText + signatureText
	if err := r.c.Add(fp, struct{}{}, r.window); err != nil {
		// ya vista: re-touch para la semántica deslizante
		r.c.Set(fp, struct{}{}, r.window)
		return false
	}
	return true
}

// Len devuelve cuántas huellas no expiradas hay (visibilidad para tests/metrics).
func (r *Cache) Len() int { return r.c.ItemCount() }
