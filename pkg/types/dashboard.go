package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardCountByGroup struct {
	Group string `json:"group"`
	Count int64  `json:"count"`
}

// DashboardOpenTotals - заказы, которые ещё не entregue и не recusado.
type DashboardOpenTotals struct {
	Count    int64           `json:"count"`
	Quoted   decimal.Decimal `json:"valor_orcado"`
	Approved decimal.Decimal `json:"valor_aprovado"`
}

type DashboardRevenue struct {
	Delivered     int64           `json:"entregues"`
	Revenue       decimal.Decimal `json:"faturamento"`
	AverageTicket decimal.Decimal `json:"ticket_medio"`
}

type DashboardStats struct {
	OrdersByStatus  []DashboardCountByGroup `json:"ordens_por_status"`
	Open            DashboardOpenTotals     `json:"em_aberto"`
	Month           DashboardRevenue        `json:"mes_atual"`
	CardsByPosition []DashboardCountByGroup `json:"patio_por_posicao"`
	GeneratedAt     time.Time               `json:"gerado_em"`
}
