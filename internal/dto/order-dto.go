package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oficina-system/internal/entities"
)

type CreateOrderDTO struct {
	Plate        string     `json:"placa" validate:"required,placa"`
	Vehicle      string     `json:"veiculo" validate:"required,max=200"`
	Km           *int       `json:"km,omitempty" validate:"omitempty,gte=0"`
	ClientName   string     `json:"cliente_nome" validate:"required,max=200"`
	ClientPhone  string     `json:"cliente_telefone" validate:"omitempty,max=30"`
	ProblemDesc  string     `json:"descricao_problema" validate:"required"`
	PhotosURL    *string    `json:"fotos_url,omitempty" validate:"omitempty,url"`
	MechanicID   *uuid.UUID `json:"mecanico_id,omitempty"`
	TrelloCardID *string    `json:"trello_card_id,omitempty" validate:"omitempty,max=64"`
}

// UpdateOrderDTO - частичное обновление. Fields хранит ключи, которые реально пришли в теле:
// пришедший null очищает поле, отсутствующий ключ оставляет его как есть.
type UpdateOrderDTO struct {
	Plate        null.String         `json:"placa" validate:"omitempty,placa"`
	Vehicle      null.String         `json:"veiculo" validate:"omitempty,max=200"`
	Km           null.Int            `json:"km" validate:"omitempty,gte=0"`
	ClientName   null.String         `json:"cliente_nome" validate:"omitempty,max=200"`
	ClientPhone  null.String         `json:"cliente_telefone" validate:"omitempty,max=30"`
	ProblemDesc  null.String         `json:"descricao_problema"`
	Diagnosis    null.String         `json:"diagnostico"`
	Notes        null.String         `json:"observacoes"`
	PhotosURL    null.String         `json:"fotos_url" validate:"omitempty,url"`
	TrelloCardID null.String         `json:"trello_card_id" validate:"omitempty,max=64"`
	FinalTotal   decimal.NullDecimal `json:"valor_final" validate:"omitempty,gte=0"`

	Fields map[string]bool `json:"-"`
}

func (d UpdateOrderDTO) Has(field string) bool {
	return d.Fields[field]
}

type UpdateStatusDTO struct {
	Status          string  `json:"status" validate:"required,order_status"`
	RejectionReason *string `json:"motivo_recusa,omitempty"`
}

type UpdateChecklistDTO struct {
	Items map[string]bool `json:"itens" validate:"required"`
}

type AssignMechanicDTO struct {
	MechanicID *uuid.UUID `json:"mecanico_id"`
}

type OrderDetailsDTO struct {
	entities.Order
	Items    []entities.OrderItem `json:"itens"`
	Mechanic *entities.Mechanic   `json:"mecanico,omitempty"`
}
