package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controla exactamente qué campos viajan al cliente.
// El wire usa "error" como token corto; el detalle es opcional.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError escribe la respuesta HTTP para el error dado. Errores que no
// son AppError colapsan al interno genérico.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:            appErr.Code,
		ErrorDescription: appErr.Detail,
	})
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
