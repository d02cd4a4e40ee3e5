package sync

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oficina-system/internal/entities"
	"oficina-system/internal/integrations/dto"
	"oficina-system/pkg/config"
)

var fieldNames = config.TrelloFieldNames{
	Technician:        "Técnico",
	ApprovedValue:     "Valor Aprovado",
	EstimatedDelivery: "Previsão de Entrega",
}

func TestExtractPlateModel(t *testing.T) {
	cases := []struct {
		name  string
		plate *string
		model string
	}{
		{"ABC1234 - Civic 2020", strPtr("ABC1234"), "Civic 2020"},
		{"abc1d23 - VW Gol 1.6", strPtr("ABC1D23"), "VW Gol 1.6"},
		{"ABC-1234 - Fiat Uno - azul", strPtr("ABC-1234"), "Fiat Uno - azul"},
		{"Gol sem placa", nil, "Gol sem placa"},
		{"ABC1234-Uno", nil, "ABC1234-Uno"},
	}
	for _, tc := range cases {
		plate, model := ExtractPlateModel(tc.name)
		assert.Equal(t, tc.plate, plate, tc.name)
		require.NotNil(t, model, tc.name)
		assert.Equal(t, tc.model, *model, tc.name)
	}

	plate, model := ExtractPlateModel("   ")
	assert.Nil(t, plate)
	assert.Nil(t, model)
}

func strPtr(s string) *string { return &s }

func TestParseMoney(t *testing.T) {
	cases := map[string]string{
		"1500.5":      "1500.50",
		"R$ 1.500,50": "1500.50",
		"R$ 89,9":     "89.90",
		" 12 ":        "12",
		"0,005":       "0.01",
		"R$ 1.500":    "1500",
		"1.500":       "1500",
		"1.250.000":   "1250000",
		"R$ 1.500,00": "1500",
		"1500.505":    "1500.51",
	}
	for in, expected := range cases {
		v, err := ParseMoney(in)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(expected).Equal(v), "%s -> %s", in, v)
	}

	_, err := ParseMoney("muito")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-08-15", "15/08/2024", "2024-08-15T00:00:00.000Z", "2024-08-14T21:00:00-03:00"} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, expected.Equal(d), in)
	}

	_, err := ParseDate("amanhã")
	assert.Error(t, err)
}

func TestFieldIndexResolve(t *testing.T) {
	idx := NewFieldIndex([]dto.IntegrationCustomFieldDTO{
		{ID: "f1", Name: "TECNICO", Type: "list", Options: []dto.IntegrationFieldOptionDTO{{ID: "o1", Value: "Carlos"}, {ID: "o2", Value: "Marcos"}}},
		{ID: "f2", Name: "Valor aprovado", Type: "number"},
	})
	card := dto.IntegrationCardDTO{
		ID: "c1",
		FieldValues: []dto.IntegrationFieldValueDTO{
			{FieldID: "f1", OptionID: "o2"},
			{FieldID: "f2", Number: "  "},
		},
	}

	v, ok := idx.Resolve(card, "Técnico")
	assert.True(t, ok)
	assert.Equal(t, "Marcos", v)

	_, ok = idx.Resolve(card, "Valor Aprovado")
	assert.False(t, ok, "пустое значение")

	_, ok = idx.Resolve(card, "Previsão de Entrega")
	assert.False(t, ok, "нет такого поля")
}

func TestBuildCard(t *testing.T) {
	activity := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	fields := NewFieldIndex([]dto.IntegrationCustomFieldDTO{
		{ID: "f-tec", Name: "Técnico", Type: "text"},
		{ID: "f-val", Name: "Valor Aprovado", Type: "number"},
		{ID: "f-due", Name: "Previsão de Entrega", Type: "date"},
	})
	card := dto.IntegrationCardDTO{
		ID:               "card-1",
		Name:             " QWE9A87 - Honda Civic ",
		ListID:           "l1",
		Labels:           []dto.IntegrationLabelDTO{{Name: "Alta", Color: "orange"}, {Name: "Retorno", Color: "blue"}},
		DateLastActivity: &activity,
		FieldValues: []dto.IntegrationFieldValueDTO{
			{FieldID: "f-tec", Text: "Rafael"},
			{FieldID: "f-val", Number: "2350.75"},
			{FieldID: "f-due", Date: "2024-08-20T15:00:00.000Z"},
		},
	}

	result, err := BuildCard(card, map[string]string{"l1": "Em teste"}, fields, fieldNames)
	require.NoError(t, err)

	assert.Equal(t, "QWE9A87 - Honda Civic", result.Name)
	assert.Equal(t, "Em teste", result.ListName)
	assert.Equal(t, entities.PositionTeste, result.Position)
	assert.Equal(t, entities.CardAlta, result.Priority)
	assert.Equal(t, "#FF9F1A", result.Color)
	assert.Equal(t, "QWE9A87", *result.Plate)
	assert.Equal(t, "Honda Civic", *result.Model)
	assert.Equal(t, "Rafael", *result.Technician)
	require.True(t, result.ApprovedValue.Valid)
	assert.True(t, decimal.RequireFromString("2350.75").Equal(result.ApprovedValue.Decimal))
	require.NotNil(t, result.EstimatedDelivery)
	assert.True(t, time.Date(2024, 8, 20, 15, 0, 0, 0, time.UTC).Equal(*result.EstimatedDelivery))
	assert.True(t, result.SyncedAt.IsZero())
}

func TestBuildCardDefaults(t *testing.T) {
	result, err := BuildCard(dto.IntegrationCardDTO{ID: "c", Name: "Sem placa", ListID: "desconhecida"}, nil, NewFieldIndex(nil), fieldNames)
	require.NoError(t, err)

	assert.Equal(t, entities.PositionEntrada, result.Position)
	assert.Equal(t, entities.CardMedia, result.Priority)
	assert.Equal(t, DefaultCardColor, result.Color)
	assert.Nil(t, result.Plate)
	assert.Nil(t, result.Technician)
	assert.False(t, result.ApprovedValue.Valid)
	assert.Nil(t, result.EstimatedDelivery)
	assert.NotNil(t, result.Labels)
}

func TestBuildCardRejectsBadValues(t *testing.T) {
	fields := NewFieldIndex([]dto.IntegrationCustomFieldDTO{{ID: "f-due", Name: "Previsão de Entrega", Type: "date"}})
	card := dto.IntegrationCardDTO{ID: "c", Name: "x", FieldValues: []dto.IntegrationFieldValueDTO{{FieldID: "f-due", Date: "ontem"}}}

	_, err := BuildCard(card, nil, fields, fieldNames)
	assert.Error(t, err)

	_, err = BuildCard(dto.IntegrationCardDTO{ID: " "}, nil, fields, fieldNames)
	assert.Error(t, err)
}
