package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// setIf agrega la clave al parche solo si el puntero viene presente.
func setIf[T any](patch map[string]any, key string, v *T) {
	if v != nil {
		patch[key] = *v
	}
}
