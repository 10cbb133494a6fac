package chat

import "time"

// Session captures a mounted widget instance.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
	// Open and Minimized are presentational and never affect the transcript.
	Open      bool `json:"open"`
	Minimized bool `json:"minimized"`
}
