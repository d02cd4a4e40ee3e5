package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatus_StampsOnlyOnFirstEntry(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	o := &Order{Status: StatusDiagnostico}

	assert.True(t, o.ApplyStatus(StatusOrcamento, first))
	require.NotNil(t, o.QuotedAt)
	assert.Equal(t, first, *o.QuotedAt)

	assert.False(t, o.ApplyStatus(StatusOrcamento, second))
	assert.Equal(t, first, *o.QuotedAt)
	assert.Equal(t, StatusOrcamento, o.Status)
}

func TestApplyStatus_StampMapping(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		status OrderStatus
		field  func(o *Order) *time.Time
	}{
		{StatusOrcamento, func(o *Order) *time.Time { return o.QuotedAt }},
		{StatusAprovado, func(o *Order) *time.Time { return o.ApprovedAt }},
		{StatusParcial, func(o *Order) *time.Time { return o.ApprovedAt }},
		{StatusConcluido, func(o *Order) *time.Time { return o.CompletedAt }},
		{StatusEntregue, func(o *Order) *time.Time { return o.DeliveredAt }},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := &Order{}
			o.ApplyStatus(tt.status, now)
			require.NotNil(t, tt.field(o))
			assert.Equal(t, now, *tt.field(o))
		})
	}

	o := &Order{}
	for _, st := range []OrderStatus{StatusDiagnostico, StatusAguardandoAprovacao, StatusRecusado, StatusEmExecucao} {
		assert.False(t, o.ApplyStatus(st, now), st)
	}
	assert.Nil(t, o.QuotedAt)
	assert.Nil(t, o.ApprovedAt)
	assert.Nil(t, o.CompletedAt)
	assert.Nil(t, o.DeliveredAt)
}

func TestApplyStatus_ParcialAfterAprovadoKeepsApprovalDate(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &Order{}
	o.ApplyStatus(StatusAprovado, first)
	o.ApplyStatus(StatusParcial, first.Add(time.Hour))
	assert.Equal(t, first, *o.ApprovedAt)
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, StatusEntregue.IsTerminal())
	assert.True(t, StatusRecusado.IsTerminal())
	assert.False(t, StatusConcluido.IsTerminal())
	assert.False(t, OrderStatus("cancelado").IsValid())
}

func TestComputeTotals(t *testing.T) {
	items := []OrderItem{
		{Total: decimal.RequireFromString("100.50"), Status: ItemAprovado},
		{Total: decimal.RequireFromString("20"), Status: ItemPendente},
		{Total: decimal.RequireFromString("30.25"), Status: ItemRecusado},
		{Total: decimal.RequireFromString("9.50"), Status: ItemAprovado},
	}
	totals := ComputeTotals(items)
	assert.True(t, decimal.RequireFromString("160.25").Equal(totals.Quoted))
	assert.True(t, decimal.RequireFromString("110").Equal(totals.Approved))

	empty := ComputeTotals(nil)
	assert.True(t, empty.Quoted.IsZero())
	assert.True(t, empty.Approved.IsZero())
}

func TestItemPriority_RequiresReturnDate(t *testing.T) {
	assert.True(t, PriorityVermelho.RequiresReturnDate())
	assert.True(t, PriorityAmarelo.RequiresReturnDate())
	assert.False(t, PriorityVerde.RequiresReturnDate())
}

func TestNewChecklist(t *testing.T) {
	c, err := NewChecklist(ChecklistEntrada, map[string]bool{"nivel_oleo": true, "estepe": false})
	require.NoError(t, err)
	assert.Equal(t, Checklist{"nivel_oleo": true, "estepe": false}, c)

	_, err = NewChecklist(ChecklistEntrada, map[string]bool{"nivel_oleo": true, "turbo": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turbo")

	_, err = NewChecklist(ChecklistKind("outro"), nil)
	assert.Error(t, err)
}

func TestChecklist_JSONRoundTripThroughScan(t *testing.T) {
	c := Checklist{"motor": true, "freios": false}
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	back, err := ScanChecklist(raw)
	require.NoError(t, err)
	assert.Equal(t, c, back)

	empty, err := ScanChecklist(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
