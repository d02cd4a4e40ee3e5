package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusDiagnostico         OrderStatus = "diagnostico"
	StatusOrcamento           OrderStatus = "orcamento"
	StatusAguardandoAprovacao OrderStatus = "aguardando_aprovacao"
	StatusAprovado            OrderStatus = "aprovado"
	StatusParcial             OrderStatus = "parcial"
	StatusRecusado            OrderStatus = "recusado"
	StatusEmExecucao          OrderStatus = "em_execucao"
	StatusConcluido           OrderStatus = "concluido"
	StatusEntregue            OrderStatus = "entregue"
)

// AllOrderStatuses в порядке движения заказа по мастерской.
var AllOrderStatuses = []OrderStatus{
	StatusDiagnostico,
	StatusOrcamento,
	StatusAguardandoAprovacao,
	StatusAprovado,
	StatusParcial,
	StatusRecusado,
	StatusEmExecucao,
	StatusConcluido,
	StatusEntregue,
}

func (s OrderStatus) IsValid() bool {
	for _, st := range AllOrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal - практические финальные статусы. Переход из них не запрещён.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusEntregue || s == StatusRecusado
}

type Order struct {
	ID                   uuid.UUID           `json:"id"`
	Number               string              `json:"numero_os"`
	Plate                string              `json:"placa"`
	Vehicle              string              `json:"veiculo"`
	Km                   *int                `json:"km"`
	ClientName           string              `json:"cliente_nome"`
	ClientPhone          string              `json:"cliente_telefone"`
	Status               OrderStatus         `json:"status"`
	EnteredAt            time.Time           `json:"data_entrada"`
	QuotedAt             *time.Time          `json:"data_orcamento"`
	ApprovedAt           *time.Time          `json:"data_aprovacao"`
	CompletedAt          *time.Time          `json:"data_conclusao"`
	DeliveredAt          *time.Time          `json:"data_entrega"`
	QuotedTotal          decimal.Decimal     `json:"valor_orcado"`
	ApprovedTotal        decimal.Decimal     `json:"valor_aprovado"`
	FinalTotal           decimal.NullDecimal `json:"valor_final"`
	ProblemDesc          string              `json:"descricao_problema"`
	Diagnosis            *string             `json:"diagnostico"`
	Notes                *string             `json:"observacoes"`
	RejectionReason      *string             `json:"motivo_recusa"`
	EntryChecklist       Checklist           `json:"checklist_entrada"`
	DynoChecklist        Checklist           `json:"checklist_dinamometro"`
	PrePurchaseChecklist Checklist           `json:"checklist_precompra"`
	PhotosURL            *string             `json:"fotos_url"`
	MechanicID           *uuid.UUID          `json:"mecanico_id"`
	TrelloCardID         *string             `json:"trello_card_id"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// ApplyStatus выставляет статус и проставляет дату, которую он подразумевает, только если она ещё пуста.
// Возвращает true, если какая-то дата была проставлена.
func (o *Order) ApplyStatus(next OrderStatus, now time.Time) bool {
	o.Status = next

	var target **time.Time
	switch next {
	case StatusOrcamento:
		target = &o.QuotedAt
	case StatusAprovado, StatusParcial:
		target = &o.ApprovedAt
	case StatusConcluido:
		target = &o.CompletedAt
	case StatusEntregue:
		target = &o.DeliveredAt
	default:
		return false
	}

	if *target != nil {
		return false
	}
	stamp := now
	*target = &stamp
	return true
}

// Checklist возвращает чек-лист заказа нужного вида.
func (o *Order) Checklist(kind ChecklistKind) Checklist {
	switch kind {
	case ChecklistEntrada:
		return o.EntryChecklist
	case ChecklistDinamometro:
		return o.DynoChecklist
	case ChecklistPrecompra:
		return o.PrePurchaseChecklist
	}
	return nil
}

func (o *Order) SetChecklist(kind ChecklistKind, c Checklist) {
	switch kind {
	case ChecklistEntrada:
		o.EntryChecklist = c
	case ChecklistDinamometro:
		o.DynoChecklist = c
	case ChecklistPrecompra:
		o.PrePurchaseChecklist = c
	}
}

type OrderTotals struct {
	Quoted   decimal.Decimal `json:"valor_orcado"`
	Approved decimal.Decimal `json:"valor_aprovado"`
}

// ComputeTotals: orçado - сумма всех позиций, aprovado - сумма одобренных.
func ComputeTotals(items []OrderItem) OrderTotals {
	totals := OrderTotals{Quoted: decimal.Zero, Approved: decimal.Zero}
	for _, it := range items {
		totals.Quoted = totals.Quoted.Add(it.Total)
		if it.Status == ItemAprovado {
			totals.Approved = totals.Approved.Add(it.Total)
		}
	}
	return totals
}
