package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oficina-system/internal/entities"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "AGUARD PECAS", normalizeName("Aguard. Peças"))
	assert.Equal(t, "EM EXECUCAO", normalizeName("  em   execução "))
	assert.Equal(t, "", normalizeName(" ... "))
}

func TestMapListToPosition(t *testing.T) {
	cases := map[string]entities.PatioPosition{
		"AGUARD. PEÇAS":        entities.PositionAguardandoPecas,
		"Aguardando aprovação": entities.PositionAguardandoAprovacao,
		"Em Execução":          entities.PositionEmExecucao,
		"Teste de rodagem":     entities.PositionTeste,
		"Pronto para retirada": entities.PositionPronto,
		"Entregue":             entities.PositionEntregue,
		"Diagnóstico":          entities.PositionDiagnostico,
		"Orçamento":            entities.PositionOrcamento,
		"Lista do João":        entities.PositionEntrada,
		"":                     entities.PositionEntrada,
	}
	for name, expected := range cases {
		assert.Equal(t, expected, MapListToPosition(name), name)
	}
}

func TestMapLabelToPriority(t *testing.T) {
	assert.Equal(t, entities.CardUrgente, MapLabelToPriority("URGENTE"))
	assert.Equal(t, entities.CardAlta, MapLabelToPriority("Prioridade alta"))
	assert.Equal(t, entities.CardBaixa, MapLabelToPriority("sem pressa"))
	assert.Equal(t, entities.CardMedia, MapLabelToPriority("Cliente VIP"))
}

func TestPriorityFromLabels(t *testing.T) {
	assert.Equal(t, entities.CardMedia, PriorityFromLabels(nil))
	assert.Equal(t, entities.CardBaixa, PriorityFromLabels([]entities.BoardLabel{{Name: "Baixa"}, {Name: "Retorno"}}))
	assert.Equal(t, entities.CardUrgente, PriorityFromLabels([]entities.BoardLabel{
		{Name: "Baixa"}, {Name: "Urgente"}, {Name: "Alta"},
	}))
}

func TestCardColor(t *testing.T) {
	assert.Equal(t, DefaultCardColor, CardColor(nil))
	assert.Equal(t, DefaultCardColor, CardColor([]entities.BoardLabel{{Name: "x", Color: ""}}))
	assert.Equal(t, "#61BD4F", CardColor([]entities.BoardLabel{{Color: "magenta"}, {Color: "Green"}}))
	assert.Equal(t, "fallback", MapLabelColor("unknown", "fallback"))
}
