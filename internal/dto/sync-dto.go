package dto

import "oficina-system/internal/entities"

// SyncResultDTO - итог одного прохода синхронизации доски.
type SyncResultDTO struct {
	Success bool `json:"success"`
	Synced  int  `json:"synced"`
	Errors  int  `json:"errors"`
}

type MoveCardDTO struct {
	ListID string `json:"list_id" validate:"required"`
}

type PatioColumnDTO struct {
	Position entities.PatioPosition `json:"posicao"`
	Cards    []entities.BoardCard   `json:"cards"`
}
