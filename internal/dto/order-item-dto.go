package dto

import (
	"github.com/shopspring/decimal"

	"oficina-system/internal/entities"
	"oficina-system/internal/pricing"
)

// Результат добавления позиции.
const (
	OutcomeCommitted          = "COMMITTED"
	OutcomeNeedsJustification = "REJECTED_NEEDS_JUSTIFICATION"
)

// AddPartDTO: margem или valor_unitario; второе выводится из себестоимости.
type AddPartDTO struct {
	Description           string           `json:"descricao" validate:"required,max=255"`
	Quantity              int              `json:"quantidade" validate:"required,gte=1"`
	UnitCost              decimal.Decimal  `json:"valor_custo" validate:"gte=0"`
	Margin                *decimal.Decimal `json:"margem,omitempty"`
	UnitPrice             *decimal.Decimal `json:"valor_unitario,omitempty"`
	Priority              string           `json:"prioridade" validate:"required,item_priority"`
	EstimatedReturnDate   *string          `json:"data_retorno_estimada,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DiscountJustification *string          `json:"justificativa_desconto,omitempty"`
}

type AddLaborDTO struct {
	Description         string          `json:"descricao" validate:"required,max=255"`
	Quantity            int             `json:"quantidade" validate:"required,gte=1"`
	UnitPrice           decimal.Decimal `json:"valor_unitario" validate:"gte=0"`
	Priority            string          `json:"prioridade" validate:"required,item_priority"`
	EstimatedReturnDate *string         `json:"data_retorno_estimada,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateItemStatusDTO struct {
	Status string  `json:"status" validate:"required,item_status"`
	Reason *string `json:"motivo_recusa,omitempty"`
}

// AddItemResultDTO - либо позиция сохранена (COMMITTED), либо нужна justificativa и ничего не записано.
type AddItemResultDTO struct {
	Outcome   string                `json:"resultado"`
	Quote     pricing.Quote         `json:"calculo"`
	MinMargin decimal.Decimal       `json:"margem_minima"`
	Item      *entities.OrderItem   `json:"item,omitempty"`
	Totals    *entities.OrderTotals `json:"totais,omitempty"`
}

type ItemMutationResultDTO struct {
	Item   *entities.OrderItem  `json:"item,omitempty"`
	Totals entities.OrderTotals `json:"totais"`
}
