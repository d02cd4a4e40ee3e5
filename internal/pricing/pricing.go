// Package pricing считает цену, маржу и сумму позиций заказа. Все функции чистые.
package pricing

import (
	"github.com/shopspring/decimal"

	apperrors "oficina-system/pkg/errors"
)

var (
	hundred = decimal.NewFromInt(100)

	// LaborMargin - у работ нет себестоимости, маржа по определению 100.
	LaborMargin = hundred

	// MaxAmount - предел колонок NUMERIC(12,2) для цен и сумм.
	MaxAmount = decimal.RequireFromString("9999999999.99")
	// MaxMargin - предел колонки margem_aplicada NUMERIC(17,2).
	MaxMargin = decimal.RequireFromString("999999999999999.99")
)

// checkLimits не пропускает значения, которые не поместятся в колонки позиции.
func checkLimits(q Quote) error {
	if q.UnitCost.GreaterThan(MaxAmount) || q.UnitPrice.GreaterThan(MaxAmount) || q.Total.GreaterThan(MaxAmount) {
		return apperrors.NewInvalidInputError("valor acima do limite permitido (R$ %s)", MaxAmount.StringFixed(2))
	}
	if q.Margin.Abs().GreaterThan(MaxMargin) {
		return apperrors.NewInvalidInputError("margem fora do limite permitido")
	}
	return nil
}

// PartInput - либо Margin, либо UnitPrice; второе выводится из себестоимости.
// Если заданы оба, приоритет у UnitPrice.
type PartInput struct {
	Quantity  int
	UnitCost  decimal.Decimal
	Margin    *decimal.Decimal
	UnitPrice *decimal.Decimal
}

type Quote struct {
	Quantity  int             `json:"quantidade"`
	UnitCost  decimal.Decimal `json:"valor_custo"`
	UnitPrice decimal.Decimal `json:"valor_unitario"`
	Total     decimal.Decimal `json:"valor_total"`
	Margin    decimal.Decimal `json:"margem_aplicada"`
}

// SuggestedPrice = cost × (1 + margin/100), округление до центов.
func SuggestedPrice(cost, margin decimal.Decimal) decimal.Decimal {
	return cost.Mul(hundred.Add(margin)).Div(hundred).Round(2)
}

// MarginOf = (price − cost) / cost × 100 без округления. При нулевой себестоимости возвращает false.
func MarginOf(cost, price decimal.Decimal) (decimal.Decimal, bool) {
	if !cost.IsPositive() {
		return decimal.Zero, false
	}
	return price.Sub(cost).Mul(hundred).Div(cost), true
}

func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// QuotePart считает позицию-запчасть.
func QuotePart(in PartInput) (Quote, error) {
	if in.Quantity < 1 {
		return Quote{}, apperrors.NewInvalidInputError("quantidade deve ser maior ou igual a 1")
	}
	if in.UnitCost.IsNegative() {
		return Quote{}, apperrors.NewInvalidInputError("custo unitário não pode ser negativo")
	}

	var price, nominal decimal.Decimal
	switch {
	case in.UnitPrice != nil:
		if in.UnitPrice.IsNegative() {
			return Quote{}, apperrors.NewInvalidInputError("preço unitário não pode ser negativo")
		}
		price = in.UnitPrice.Round(2)
		nominal = hundred
		if in.Margin != nil {
			nominal = *in.Margin
		}
	case in.Margin != nil:
		if in.Margin.LessThanOrEqual(hundred.Neg()) {
			return Quote{}, apperrors.NewInvalidInputError("margem deve ser maior que -100%%")
		}
		price = SuggestedPrice(in.UnitCost, *in.Margin)
		nominal = *in.Margin
	default:
		return Quote{}, apperrors.NewInvalidInputError("informe a margem ou o preço unitário")
	}

	margin, ok := MarginOf(in.UnitCost, price)
	if !ok {
		margin = nominal
	}

	q := Quote{
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost.Round(2),
		UnitPrice: price,
		Total:     LineTotal(in.Quantity, price),
		Margin:    margin.Round(2),
	}
	if err := checkLimits(q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// LaborQuote - работа без себестоимости, маржа 100.
func LaborQuote(quantity int, unitPrice decimal.Decimal) (Quote, error) {
	if quantity < 1 {
		return Quote{}, apperrors.NewInvalidInputError("quantidade deve ser maior ou igual a 1")
	}
	if unitPrice.IsNegative() {
		return Quote{}, apperrors.NewInvalidInputError("preço unitário não pode ser negativo")
	}
	price := unitPrice.Round(2)
	q := Quote{
		Quantity:  quantity,
		UnitCost:  decimal.Zero,
		UnitPrice: price,
		Total:     LineTotal(quantity, price),
		Margin:    LaborMargin,
	}
	if err := checkLimits(q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// NeedsJustification - маржа ниже порога при ненулевой себестоимости требует обоснования скидки.
// Сравнение идёт по точной марже, а не по округлённой.
func NeedsJustification(q Quote, minMargin decimal.Decimal) bool {
	margin, ok := MarginOf(q.UnitCost, q.UnitPrice)
	return ok && margin.LessThan(minMargin)
}
