package entity

import "time"

// Activity es una entrada del historial de acciones visible en el panel.
// Es un registro de solo-agregado: nunca se edita.
type Activity struct {
	ID        string    `json:"id,omitempty"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}
