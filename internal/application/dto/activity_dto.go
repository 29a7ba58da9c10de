package dto

// CreateActivityRequest entrada para registrar una acción en el historial.
type CreateActivityRequest struct {
	Action string `json:"action" validate:"required,min=1,max=500"`
	Actor  string `json:"actor" validate:"required,min=1,max=200"`
}
