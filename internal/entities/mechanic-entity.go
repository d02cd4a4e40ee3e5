package entities

import (
	"time"

	"github.com/google/uuid"
)

type Mechanic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"nome"`
	Active    bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}
