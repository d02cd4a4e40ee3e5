package dto

type CreateMechanicDTO struct {
	Name   string `json:"nome" validate:"required,max=120"`
	Active *bool  `json:"ativo,omitempty"`
}
