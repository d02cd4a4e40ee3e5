package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PatioPosition - позиция машины на площадке (колонка канбана).
type PatioPosition string

const (
	PositionEntrada             PatioPosition = "entrada"
	PositionDiagnostico         PatioPosition = "diagnostico"
	PositionOrcamento           PatioPosition = "orcamento"
	PositionAguardandoAprovacao PatioPosition = "aguardando_aprovacao"
	PositionAguardandoPecas     PatioPosition = "aguardando_pecas"
	PositionEmExecucao          PatioPosition = "em_execucao"
	PositionTeste               PatioPosition = "teste"
	PositionPronto              PatioPosition = "pronto"
	PositionEntregue            PatioPosition = "entregue"
)

var AllPatioPositions = []PatioPosition{
	PositionEntrada, PositionDiagnostico, PositionOrcamento, PositionAguardandoAprovacao,
	PositionAguardandoPecas, PositionEmExecucao, PositionTeste, PositionPronto, PositionEntregue,
}

func (p PatioPosition) IsValid() bool {
	for _, pos := range AllPatioPositions {
		if p == pos {
			return true
		}
	}
	return false
}

type CardPriority string

const (
	CardUrgente CardPriority = "urgente"
	CardAlta    CardPriority = "alta"
	CardMedia   CardPriority = "media"
	CardBaixa   CardPriority = "baixa"
)

// Rank - чем больше, тем важнее.
func (p CardPriority) Rank() int {
	switch p {
	case CardUrgente:
		return 4
	case CardAlta:
		return 3
	case CardMedia:
		return 2
	case CardBaixa:
		return 1
	}
	return 0
}

type BoardList struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BoardID string `json:"board_id"`
}

type BoardLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// BoardCard - зеркало карточки внешней доски. SyncedAt служебное поле и не входит в производные данные.
type BoardCard struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	ListID            string              `json:"list_id"`
	ListName          string              `json:"list_name"`
	Labels            []BoardLabel        `json:"labels"`
	DateLastActivity  *time.Time          `json:"date_last_activity"`
	Plate             *string             `json:"placa"`
	Model             *string             `json:"modelo"`
	Technician        *string             `json:"tecnico"`
	ApprovedValue     decimal.NullDecimal `json:"valor_aprovado"`
	EstimatedDelivery *time.Time          `json:"previsao_entrega"`
	Position          PatioPosition       `json:"posicao_patio"`
	Priority          CardPriority        `json:"prioridade"`
	Color             string              `json:"cor"`
	SyncedAt          time.Time           `json:"synced_at"`
}
