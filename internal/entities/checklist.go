package entities

import (
	"encoding/json"
	"fmt"
	"sort"
)

type ChecklistKind string

const (
	ChecklistEntrada     ChecklistKind = "entrada"
	ChecklistDinamometro ChecklistKind = "dinamometro"
	ChecklistPrecompra   ChecklistKind = "precompra"
)

func (k ChecklistKind) IsValid() bool {
	_, ok := checklistItems[k]
	return ok
}

// ChecklistItem - ключ пункта чек-листа. Набор пунктов закрыт для каждого вида.
type ChecklistItem string

var checklistItems = map[ChecklistKind][]ChecklistItem{
	ChecklistEntrada: {
		"nivel_oleo", "nivel_agua", "pneus", "estepe", "macaco", "triangulo",
		"documentos", "radio", "avarias_lataria", "luzes_painel", "combustivel",
	},
	ChecklistDinamometro: {
		"aquecimento", "pressao_pneus", "amarracao", "ventilacao", "sensor_rotacao",
		"potencia_medida", "torque_medido", "afr_verificado",
	},
	ChecklistPrecompra: {
		"estrutura", "pintura", "motor", "cambio", "suspensao", "freios",
		"eletrica", "scanner", "historico_manutencao", "teste_rodagem",
	},
}

// ChecklistItems возвращает допустимые пункты для вида чек-листа.
func ChecklistItems(kind ChecklistKind) []ChecklistItem {
	return append([]ChecklistItem(nil), checklistItems[kind]...)
}

// Checklist хранится в БД как jsonb key->bool.
type Checklist map[ChecklistItem]bool

// NewChecklist строит чек-лист из произвольной карты, отклоняя неизвестные пункты.
func NewChecklist(kind ChecklistKind, raw map[string]bool) (Checklist, error) {
	allowed, ok := checklistItems[kind]
	if !ok {
		return nil, fmt.Errorf("tipo de checklist desconhecido: %s", kind)
	}
	known := make(map[ChecklistItem]struct{}, len(allowed))
	for _, it := range allowed {
		known[it] = struct{}{}
	}

	var unknown []string
	c := make(Checklist, len(raw))
	for k, v := range raw {
		item := ChecklistItem(k)
		if _, ok := known[item]; !ok {
			unknown = append(unknown, k)
			continue
		}
		c[item] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("itens desconhecidos no checklist %s: %v", kind, unknown)
	}
	return c, nil
}

func (c Checklist) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, len(c))
	for k, v := range c {
		m[string(k)] = v
	}
	return json.Marshal(m)
}

// ScanChecklist разбирает jsonb-колонку. NULL и пустое значение дают пустой чек-лист.
func ScanChecklist(raw []byte) (Checklist, error) {
	c := Checklist{}
	if len(raw) == 0 {
		return c, nil
	}
	var m map[string]bool
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for k, v := range m {
		c[ChecklistItem(k)] = v
	}
	return c, nil
}
