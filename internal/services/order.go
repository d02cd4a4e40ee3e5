package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/entities"
	"oficina-system/internal/events"
	"oficina-system/internal/pricing"
	"oficina-system/internal/repositories"
	"oficina-system/pkg/config"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/eventbus"
	"oficina-system/pkg/types"
	"oficina-system/pkg/utils"
)

const returnDateLayout = "2006-01-02"

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error)
	GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*dto.OrderDetailsDTO, error)
	UpdateOrderDetails(ctx context.Context, id uuid.UUID, payload dto.UpdateOrderDTO) (*entities.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, payload dto.UpdateStatusDTO) (*entities.Order, error)
	UpdateChecklist(ctx context.Context, id uuid.UUID, kind entities.ChecklistKind, payload dto.UpdateChecklistDTO) (*entities.Order, error)
	AssignMechanic(ctx context.Context, id uuid.UUID, payload dto.AssignMechanicDTO) (*entities.Order, error)

	AddPart(ctx context.Context, orderID uuid.UUID, payload dto.AddPartDTO) (*dto.AddItemResultDTO, error)
	AddLabor(ctx context.Context, orderID uuid.UUID, payload dto.AddLaborDTO) (*dto.AddItemResultDTO, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, payload dto.UpdateItemStatusDTO) (*dto.ItemMutationResultDTO, error)
	DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) (*dto.ItemMutationResultDTO, error)
}

// EventPublisher - то, что нужно сервису от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type OrderService struct {
	txManager    repositories.TxManagerInterface
	orderRepo    repositories.OrderRepositoryInterface
	itemRepo     repositories.OrderItemRepositoryInterface
	mechanicRepo repositories.MechanicRepositoryInterface
	publisher    EventPublisher
	minMargin    decimal.Decimal
	location     *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewOrderService: publisher может быть nil, тогда события не публикуются.
func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	itemRepo repositories.OrderItemRepositoryInterface,
	mechanicRepo repositories.MechanicRepositoryInterface,
	publisher EventPublisher,
	cfg config.WorkOrderConfig,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		mechanicRepo: mechanicRepo,
		publisher:    publisher,
		minMargin:    decimal.NewFromFloat(cfg.MinMarginPercent),
		location:     utils.LoadLocation(cfg.Timezone),
		now:          time.Now,
		logger:       logger.Named("order_service"),
	}
}

// orderNumber: "OS" + yyMMddHHmmss + миллисекунды.
func orderNumber(now time.Time) string {
	return fmt.Sprintf("OS%s%03d", now.Format("060102150405"), now.Nanosecond()/int(time.Millisecond))
}

func (s *OrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error) {
	now := s.now()
	order := &entities.Order{
		ID:            uuid.New(),
		Number:        orderNumber(now.In(s.location)),
		Plate:         utils.NormalizePlate(payload.Plate),
		Vehicle:       strings.TrimSpace(payload.Vehicle),
		Km:            payload.Km,
		ClientName:    strings.TrimSpace(payload.ClientName),
		ClientPhone:   utils.NormalizeBRPhoneNumber(payload.ClientPhone),
		Status:        entities.StatusDiagnostico,
		EnteredAt:     now,
		QuotedTotal:   decimal.Zero,
		ApprovedTotal: decimal.Zero,
		ProblemDesc:   strings.TrimSpace(payload.ProblemDesc),
		PhotosURL:     utils.TrimPtr(payload.PhotosURL),
		MechanicID:    payload.MechanicID,
		TrelloCardID:  utils.TrimPtr(payload.TrelloCardID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.ProblemDesc == "" {
		return nil, apperrors.NewInvalidInputError("descrição do problema é obrigatória")
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if order.MechanicID != nil {
			if err := s.checkActiveMechanic(ctx, tx, *order.MechanicID); err != nil {
				return err
			}
		}
		return s.orderRepo.CreateOrderInTx(ctx, tx, order)
	})
	if err != nil {
		s.logger.Error("Не удалось создать заказ", zap.String("plate", order.Plate), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заказ создан", zap.String("id", order.ID.String()), zap.String("number", order.Number))
	return order, nil
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	return s.orderRepo.GetOrders(ctx, filter)
}

func (s *OrderService) FindOrder(ctx context.Context, id uuid.UUID) (*dto.OrderDetailsDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &dto.OrderDetailsDTO{Order: *order, Items: items}
	if order.MechanicID != nil {
		mechanic, err := s.mechanicRepo.FindMechanic(ctx, *order.MechanicID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		details.Mechanic = mechanic
	}
	return details, nil
}

// applyDetailsPatch переносит в заказ только те поля, что пришли в теле запроса.
func applyDetailsPatch(order *entities.Order, p dto.UpdateOrderDTO) error {
	required := func(field string, v string, target *string) error {
		if !p.Has(field) {
			return nil
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return apperrors.NewInvalidInputError("o campo %s não pode ficar vazio", field)
		}
		*target = v
		return nil
	}
	optional := func(field string, valid bool, v string, target **string) {
		if !p.Has(field) {
			return
		}
		if !valid {
			*target = nil
			return
		}
		*target = utils.StringToPtr(v)
	}

	if err := required("placa", p.Plate.String, &order.Plate); err != nil {
		return err
	}
	order.Plate = utils.NormalizePlate(order.Plate)
	if err := required("veiculo", p.Vehicle.String, &order.Vehicle); err != nil {
		return err
	}
	if err := required("cliente_nome", p.ClientName.String, &order.ClientName); err != nil {
		return err
	}
	if err := required("descricao_problema", p.ProblemDesc.String, &order.ProblemDesc); err != nil {
		return err
	}
	if p.Has("cliente_telefone") {
		order.ClientPhone = utils.NormalizeBRPhoneNumber(p.ClientPhone.String)
	}
	if p.Has("km") {
		if p.Km.Valid {
			km := p.Km.Int
			order.Km = &km
		} else {
			order.Km = nil
		}
	}
	optional("diagnostico", p.Diagnosis.Valid, p.Diagnosis.String, &order.Diagnosis)
	optional("observacoes", p.Notes.Valid, p.Notes.String, &order.Notes)
	optional("fotos_url", p.PhotosURL.Valid, p.PhotosURL.String, &order.PhotosURL)
	optional("trello_card_id", p.TrelloCardID.Valid, p.TrelloCardID.String, &order.TrelloCardID)
	if p.Has("valor_final") {
		if p.FinalTotal.Valid && p.FinalTotal.Decimal.IsNegative() {
			return apperrors.NewInvalidInputError("valor final não pode ser negativo")
		}
		order.FinalTotal = p.FinalTotal
		if order.FinalTotal.Valid {
			order.FinalTotal.Decimal = order.FinalTotal.Decimal.Round(2)
		}
	}
	return nil
}

func (s *OrderService) UpdateOrderDetails(ctx context.Context, id uuid.UUID, payload dto.UpdateOrderDTO) (*entities.Order, error) {
	var order *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyDetailsPatch(order, payload); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		return s.orderRepo.UpdateDetailsInTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, payload dto.UpdateStatusDTO) (*entities.Order, error) {
	next := entities.OrderStatus(payload.Status)
	if !next.IsValid() {
		return nil, apperrors.NewInvalidInputError("status inválido: %s", payload.Status)
	}
	reason := utils.TrimPtr(payload.RejectionReason)
	if next == entities.StatusRecusado && reason == nil {
		return nil, apperrors.NewInvalidInputError("motivo da recusa é obrigatório")
	}

	var (
		order *entities.Order
		prev  entities.OrderStatus
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		prev = order.Status
		now := s.now()
		order.ApplyStatus(next, now)
		if next == entities.StatusRecusado {
			order.RejectionReason = reason
		}
		order.UpdatedAt = now
		return s.orderRepo.UpdateLifecycleInTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Статус заказа изменен",
		zap.String("id", id.String()),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	if prev != next && s.publisher != nil {
		s.publisher.Publish(ctx, events.OrderStatusChangedEvent{
			OrderID:      order.ID,
			Number:       order.Number,
			TrelloCardID: order.TrelloCardID,
			From:         prev,
			To:           next,
		})
	}
	return order, nil
}

func (s *OrderService) UpdateChecklist(ctx context.Context, id uuid.UUID, kind entities.ChecklistKind, payload dto.UpdateChecklistDTO) (*entities.Order, error) {
	checklist, err := entities.NewChecklist(kind, payload.Items)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("%s", err.Error())
	}

	var order *entities.Order
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.orderRepo.UpdateChecklistInTx(ctx, tx, id, kind, checklist); err != nil {
			return err
		}
		order.SetChecklist(kind, checklist)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) checkActiveMechanic(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	mechanic, err := s.mechanicRepo.FindMechanicInTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("mecânico não encontrado")
		}
		return err
	}
	if !mechanic.Active {
		return apperrors.NewInvalidInputError("mecânico %s está inativo", mechanic.Name)
	}
	return nil
}

func (s *OrderService) AssignMechanic(ctx context.Context, id uuid.UUID, payload dto.AssignMechanicDTO) (*entities.Order, error) {
	var order *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if payload.MechanicID != nil {
			if err := s.checkActiveMechanic(ctx, tx, *payload.MechanicID); err != nil {
				return err
			}
		}
		if err := s.orderRepo.SetMechanicInTx(ctx, tx, id, payload.MechanicID); err != nil {
			return err
		}
		order.MechanicID = payload.MechanicID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) parseReturnDate(priority entities.ItemPriority, raw *string) (*time.Time, error) {
	raw = utils.TrimPtr(raw)
	if raw == nil {
		if priority.RequiresReturnDate() {
			return nil, apperrors.NewInvalidInputError("data de retorno estimada é obrigatória para prioridade %s", priority)
		}
		return nil, nil
	}
	date, err := time.ParseInLocation(returnDateLayout, *raw, s.location)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("data de retorno estimada inválida: use o formato AAAA-MM-DD")
	}
	return &date, nil
}

func (s *OrderService) AddPart(ctx context.Context, orderID uuid.UUID, payload dto.AddPartDTO) (*dto.AddItemResultDTO, error) {
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		return nil, apperrors.NewInvalidInputError("descrição do item é obrigatória")
	}
	priority := entities.ItemPriority(payload.Priority)
	if !priority.IsValid() {
		return nil, apperrors.NewInvalidInputError("prioridade inválida: %s", payload.Priority)
	}
	returnDate, err := s.parseReturnDate(priority, payload.EstimatedReturnDate)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.QuotePart(pricing.PartInput{
		Quantity:  payload.Quantity,
		UnitCost:  payload.UnitCost,
		Margin:    payload.Margin,
		UnitPrice: payload.UnitPrice,
	})
	if err != nil {
		return nil, err
	}

	justification := utils.TrimPtr(payload.DiscountJustification)
	if justification == nil && pricing.NeedsJustification(quote, s.minMargin) {
		result := &dto.AddItemResultDTO{
			Outcome:   dto.OutcomeNeedsJustification,
			Quote:     quote,
			MinMargin: s.minMargin,
		}
		s.logger.Info("Позиция не сохранена: маржа ниже минимальной",
			zap.String("order_id", orderID.String()),
			zap.String("margin", quote.Margin.String()),
			zap.String("min_margin", s.minMargin.String()),
		)
		return nil, apperrors.NewHttpError(
			http.StatusUnprocessableEntity,
			fmt.Sprintf("Margem de %s%% abaixo do mínimo de %s%%: informe a justificativa do desconto", quote.Margin.StringFixed(2), s.minMargin.String()),
			nil,
			map[string]interface{}{"order_id": orderID.String()},
		).WithDetails(result)
	}

	item := &entities.OrderItem{
		Kind:                  entities.ItemPeca,
		Description:           description,
		Priority:              priority,
		EstimatedReturnDate:   returnDate,
		DiscountJustification: justification,
	}
	return s.commitItem(ctx, orderID, item, quote)
}

func (s *OrderService) AddLabor(ctx context.Context, orderID uuid.UUID, payload dto.AddLaborDTO) (*dto.AddItemResultDTO, error) {
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		return nil, apperrors.NewInvalidInputError("descrição do item é obrigatória")
	}
	priority := entities.ItemPriority(payload.Priority)
	if !priority.IsValid() {
		return nil, apperrors.NewInvalidInputError("prioridade inválida: %s", payload.Priority)
	}
	returnDate, err := s.parseReturnDate(priority, payload.EstimatedReturnDate)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.LaborQuote(payload.Quantity, payload.UnitPrice)
	if err != nil {
		return nil, err
	}

	item := &entities.OrderItem{
		Kind:                entities.ItemMaoDeObra,
		Description:         description,
		Priority:            priority,
		EstimatedReturnDate: returnDate,
	}
	return s.commitItem(ctx, orderID, item, quote)
}

// commitItem сохраняет позицию и пересчитывает итоги в одной транзакции под блокировкой заказа.
func (s *OrderService) commitItem(ctx context.Context, orderID uuid.UUID, item *entities.OrderItem, quote pricing.Quote) (*dto.AddItemResultDTO, error) {
	item.ID = uuid.New()
	item.OrderID = orderID
	item.Quantity = quote.Quantity
	item.UnitCost = quote.UnitCost
	item.UnitPrice = quote.UnitPrice
	item.Total = quote.Total
	item.Margin = quote.Margin
	item.Status = entities.ItemPendente
	item.CreatedAt = s.now()

	var totals entities.OrderTotals
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.itemRepo.CreateItemInTx(ctx, tx, item); err != nil {
			return err
		}
		var err error
		totals, err = s.orderRepo.RecomputeTotalsInTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Позиция добавлена в заказ",
		zap.String("order_id", orderID.String()),
		zap.String("kind", string(item.Kind)),
		zap.String("total", item.Total.String()),
	)
	return &dto.AddItemResultDTO{
		Outcome:   dto.OutcomeCommitted,
		Quote:     quote,
		MinMargin: s.minMargin,
		Item:      item,
		Totals:    &totals,
	}, nil
}

func (s *OrderService) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, payload dto.UpdateItemStatusDTO) (*dto.ItemMutationResultDTO, error) {
	status := entities.ItemStatus(payload.Status)
	if !status.IsValid() {
		return nil, apperrors.NewInvalidInputError("status do item inválido: %s", payload.Status)
	}
	reason := utils.TrimPtr(payload.Reason)
	if status == entities.ItemRecusado && reason == nil {
		return nil, apperrors.NewInvalidInputError("motivo da recusa do item é obrigatório")
	}
	if status != entities.ItemRecusado {
		reason = nil
	}

	result := &dto.ItemMutationResultDTO{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.itemRepo.UpdateItemStatusInTx(ctx, tx, orderID, itemID, status, reason); err != nil {
			return err
		}
		item, err := s.itemRepo.FindItemInTx(ctx, tx, orderID, itemID)
		if err != nil {
			return err
		}
		result.Item = item
		result.Totals, err = s.orderRepo.RecomputeTotalsInTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) (*dto.ItemMutationResultDTO, error) {
	result := &dto.ItemMutationResultDTO{}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.itemRepo.DeleteItemInTx(ctx, tx, orderID, itemID); err != nil {
			return err
		}
		var err error
		result.Totals, err = s.orderRepo.RecomputeTotalsInTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Позиция удалена из заказа", zap.String("order_id", orderID.String()), zap.String("item_id", itemID.String()))
	return result, nil
}
