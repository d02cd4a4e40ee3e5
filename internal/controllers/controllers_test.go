package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/entities"
	"oficina-system/internal/pricing"
	"oficina-system/internal/services"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/validation"
)

// stubOrderService реализует только нужные тестам методы; остальные паникуют через встроенный интерфейс.
type stubOrderService struct {
	services.OrderServiceInterface

	created  *dto.CreateOrderDTO
	patched  *dto.UpdateOrderDTO
	addPart  func(dto.AddPartDTO) (*dto.AddItemResultDTO, error)
	statusTo string
}

func (s *stubOrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error) {
	s.created = &payload
	return &entities.Order{ID: uuid.New(), Plate: payload.Plate, Status: entities.StatusDiagnostico}, nil
}

func (s *stubOrderService) UpdateOrderDetails(ctx context.Context, id uuid.UUID, payload dto.UpdateOrderDTO) (*entities.Order, error) {
	s.patched = &payload
	return &entities.Order{ID: id}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, payload dto.UpdateStatusDTO) (*entities.Order, error) {
	s.statusTo = payload.Status
	return nil, apperrors.ErrNotFound
}

func (s *stubOrderService) AddPart(ctx context.Context, id uuid.UUID, payload dto.AddPartDTO) (*dto.AddItemResultDTO, error) {
	return s.addPart(payload)
}

type stubRunner struct {
	result dto.SyncResultDTO
	ran    bool
}

func (r stubRunner) RunOnce(ctx context.Context) (dto.SyncResultDTO, bool) {
	return r.result, r.ran
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

func call(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestOrderController_CreateOrder(t *testing.T) {
	e := newTestEcho()
	svc := &stubOrderService{}
	ctrl := NewOrderController(svc, zap.NewNop())
	e.POST("/orders", ctrl.CreateOrder)

	rec := call(e, http.MethodPost, "/orders",
		`{"placa":"ABC1D23","veiculo":"Gol","cliente_nome":"Maria","descricao_problema":"Barulho"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "ABC1D23", svc.created.Plate)

	rec = call(e, http.MethodPost, "/orders",
		`{"placa":"12","veiculo":"Gol","cliente_nome":"Maria","descricao_problema":"Barulho"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "placa")

	rec = call(e, http.MethodPost, "/orders", `{"placa":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderController_UpdateOrderTracksSentFields(t *testing.T) {
	e := newTestEcho()
	svc := &stubOrderService{}
	e.PATCH("/orders/:id", NewOrderController(svc, zap.NewNop()).UpdateOrder)

	rec := call(e, http.MethodPatch, "/orders/"+uuid.NewString(), `{"km":120500,"diagnostico":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.patched)

	assert.True(t, svc.patched.Has("km"))
	assert.True(t, svc.patched.Has("diagnostico"))
	assert.False(t, svc.patched.Has("placa"))
	assert.Equal(t, 120500, svc.patched.Km.Int)
	assert.False(t, svc.patched.Diagnosis.Valid)

	rec = call(e, http.MethodPatch, "/orders/"+uuid.NewString(), `{"km":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderController_InvalidID(t *testing.T) {
	e := newTestEcho()
	svc := &stubOrderService{}
	e.PATCH("/orders/:id/status", NewOrderController(svc, zap.NewNop()).UpdateStatus)

	rec := call(e, http.MethodPatch, "/orders/nao-e-uuid/status", `{"status":"aprovado"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.statusTo)

	rec = call(e, http.MethodPatch, "/orders/"+uuid.NewString()+"/status", `{"status":"voando"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPatch, "/orders/"+uuid.NewString()+"/status", `{"status":"aprovado"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "aprovado", svc.statusTo)
}

func TestOrderController_AddPartNeedsJustification(t *testing.T) {
	e := newTestEcho()
	svc := &stubOrderService{
		addPart: func(p dto.AddPartDTO) (*dto.AddItemResultDTO, error) {
			result := &dto.AddItemResultDTO{
				Outcome:   dto.OutcomeNeedsJustification,
				Quote:     pricing.Quote{Quantity: 1, UnitCost: p.UnitCost, UnitPrice: *p.UnitPrice},
				MinMargin: decimal.NewFromInt(40),
			}
			return nil, apperrors.NewHttpError(http.StatusUnprocessableEntity, "Margem abaixo do mínimo", nil, nil).WithDetails(result)
		},
	}
	e.POST("/orders/:id/items/parts", NewOrderController(svc, zap.NewNop()).AddPart)

	rec := call(e, http.MethodPost, "/orders/"+uuid.NewString()+"/items/parts",
		`{"descricao":"Kit embreagem","quantidade":1,"valor_custo":300,"valor_unitario":419.99,"prioridade":"verde"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, false, out["status"])
	body, ok := out["body"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, dto.OutcomeNeedsJustification, body["resultado"])
	assert.NotContains(t, body, "item")
}

func TestSyncController_HandleSyncTrello(t *testing.T) {
	cases := []struct {
		name   string
		runner stubRunner
		code   int
		body   string
	}{
		{"success", stubRunner{result: dto.SyncResultDTO{Success: true, Synced: 9, Errors: 1}, ran: true}, http.StatusOK, `{"success":true,"synced":9,"errors":1}`},
		{"failure", stubRunner{result: dto.SyncResultDTO{Success: false, Synced: 0, Errors: 1}, ran: true}, http.StatusBadGateway, `{"success":false,"synced":0,"errors":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			e.POST("/sync/trello", NewSyncController(tc.runner, nil, zap.NewNop()).HandleSyncTrello)

			rec := call(e, http.MethodPost, "/sync/trello", "")
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}

	e := newTestEcho()
	e.POST("/sync/trello", NewSyncController(stubRunner{ran: false}, nil, zap.NewNop()).HandleSyncTrello)
	rec := call(e, http.MethodPost, "/sync/trello", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type stubSyncService struct {
	services.SyncServiceInterface

	moveErr error
}

func (s stubSyncService) MoveCardToList(ctx context.Context, cardID, listID string) error {
	return s.moveErr
}

func TestSyncController_MoveCardPartialHidesDetails(t *testing.T) {
	upstream := fmt.Errorf("%w: POST /cards/c1/actions/comments вернул статус 500: {\"trace\":\"x\"}", apperrors.ErrExternalAPI)
	svc := stubSyncService{moveErr: fmt.Errorf("%w: comentário não adicionado: %v", apperrors.ErrPartiallyApplied, upstream)}

	e := newTestEcho()
	e.POST("/trello/cards/:cardId/move", NewSyncController(stubRunner{}, svc, zap.NewNop()).MoveCard)

	rec := call(e, http.MethodPost, "/trello/cards/c1/move", `{"list_id":"l2"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, "Ação aplicada parcialmente: o card foi movido, mas a etapa seguinte falhou", out["message"])
	assert.NotContains(t, rec.Body.String(), "trace")
	assert.NotContains(t, rec.Body.String(), "/cards/")
}
