package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError convierte un error genérico en AppError. Si no lo es, devuelve
// un interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail agrega detalle (devuelve una COPIA para no mutar los globales).
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega la causa (devuelve una COPIA).
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// TAXONOMÍA CERRADA
//
// Cada kind mapea a exactamente un status y un token de wire; el mapping es
// parte del contrato público y no debe moverse.
// =================================================================================

var (
	// 400
	ErrInvalidGUIDFormat = New(http.StatusBadRequest, "invalid_guid_format", "cluster id must be a valid GUID")
	ErrInvalidBase64     = New(http.StatusBadRequest, "invalid_base64", "payload, nonce and signature must be valid base64")
	ErrInvalidNonceSize  = New(http.StatusBadRequest, "nonce_must_be_4_bytes", "nonce must decode to exactly 4 bytes")
	ErrInvalidPayload    = New(http.StatusBadRequest, "version_name_required", "version name must not be empty")
	ErrInvalidPublicKey  = New(http.StatusBadRequest, "invalid_public_key", "public key must be a base64 SPKI P-256 key")
	ErrInvalidJSON       = New(http.StatusBadRequest, "invalid_json", "request body must be valid JSON")

	// 401
	ErrSignatureVerificationFailed = New(http.StatusUnauthorized, "signature_verification_failed", "request signature does not verify against the cluster key")

	// 403
	ErrReplayAttackDetected = New(http.StatusForbidden, "replay_attack_detected", "nonce and signature were already used inside the validation window")

	// 404
	ErrClusterNotFound = New(http.StatusNotFound, "cluster_not_found", "cluster is not registered")

	// 409
	ErrPublicKeyMismatch = New(http.StatusConflict, "public_key_mismatch", "cluster is already registered with a different key")

	// 413
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "payload_too_large", "payload exceeds the 10 KiB limit")

	// 429
	ErrRateLimited = New(http.StatusTooManyRequests, "rate_limited", "too many requests")

	// 405 / 500
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	ErrInternal         = New(http.StatusInternalServerError, "internal_error", "internal error")
)
