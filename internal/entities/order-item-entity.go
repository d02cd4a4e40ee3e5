package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	ItemPeca      ItemKind = "peca"
	ItemMaoDeObra ItemKind = "mao_de_obra"
)

type ItemStatus string

const (
	ItemPendente ItemStatus = "pendente"
	ItemAprovado ItemStatus = "aprovado"
	ItemRecusado ItemStatus = "recusado"
)

func (s ItemStatus) IsValid() bool {
	return s == ItemPendente || s == ItemAprovado || s == ItemRecusado
}

// ItemPriority - критичность позиции: vermelho срочно, amarelo средне, verde профилактика.
type ItemPriority string

const (
	PriorityVermelho ItemPriority = "vermelho"
	PriorityAmarelo  ItemPriority = "amarelo"
	PriorityVerde    ItemPriority = "verde"
)

func (p ItemPriority) IsValid() bool {
	return p == PriorityVermelho || p == PriorityAmarelo || p == PriorityVerde
}

// RequiresReturnDate - для всего, кроме verde, нужна дата возврата клиента.
func (p ItemPriority) RequiresReturnDate() bool {
	return p != PriorityVerde
}

type OrderItem struct {
	ID                    uuid.UUID       `json:"id"`
	OrderID               uuid.UUID       `json:"ordem_id"`
	Kind                  ItemKind        `json:"tipo"`
	Description           string          `json:"descricao"`
	Quantity              int             `json:"quantidade"`
	UnitCost              decimal.Decimal `json:"valor_custo"`
	UnitPrice             decimal.Decimal `json:"valor_unitario"`
	Total                 decimal.Decimal `json:"valor_total"`
	Margin                decimal.Decimal `json:"margem_aplicada"`
	Status                ItemStatus      `json:"status"`
	RejectionReason       *string         `json:"motivo_recusa"`
	Priority              ItemPriority    `json:"prioridade"`
	EstimatedReturnDate   *time.Time      `json:"data_retorno_estimada"`
	DiscountJustification *string         `json:"justificativa_desconto"`
	CreatedAt             time.Time       `json:"created_at"`
}
