// Файл: internal/sync/handler.go
package sync

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"oficina-system/internal/entities"
	"oficina-system/internal/integrations/dto"
	"oficina-system/internal/repositories"
	"oficina-system/pkg/config"
)

// HandlerInterface записывает состояние доски в зеркало.
type HandlerInterface interface {
	// ProcessLists сохраняет колонки одной транзакцией и возвращает карту id -> имя.
	ProcessLists(ctx context.Context, lists []dto.IntegrationListDTO) (map[string]string, error)
	// ProcessCards сохраняет карточки по одной. Ошибка одной карточки не останавливает остальные.
	ProcessCards(ctx context.Context, cards []dto.IntegrationCardDTO, listNames map[string]string, fields FieldIndex) (synced int, failed int)
}

type DBHandler struct {
	txManager repositories.TxManagerInterface
	boardRepo repositories.BoardRepositoryInterface
	cfg       config.TrelloConfig
	logger    *zap.Logger
}

func NewDBHandler(
	txManager repositories.TxManagerInterface,
	boardRepo repositories.BoardRepositoryInterface,
	cfg config.TrelloConfig,
	logger *zap.Logger,
) HandlerInterface {
	return &DBHandler{
		txManager: txManager,
		boardRepo: boardRepo,
		cfg:       cfg,
		logger:    logger.Named("board_sync_handler"),
	}
}

func (h *DBHandler) ProcessLists(ctx context.Context, data []dto.IntegrationListDTO) (map[string]string, error) {
	names := make(map[string]string, len(data))
	lists := make([]entities.BoardList, 0, len(data))
	for _, item := range data {
		boardID := item.BoardID
		if boardID == "" {
			boardID = h.cfg.BoardID
		}
		lists = append(lists, entities.BoardList{ID: item.ID, Name: item.Name, BoardID: boardID})
		names[item.ID] = item.Name
	}

	err := h.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, l := range lists {
			if err := h.boardRepo.UpsertListInTx(ctx, tx, l); err != nil {
				return fmt.Errorf("upsert list %s: %w", l.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("📊 КОЛОНКИ", zap.Int("Всего", len(lists)))
	return names, nil
}

func (h *DBHandler) ProcessCards(ctx context.Context, cards []dto.IntegrationCardDTO, listNames map[string]string, fields FieldIndex) (int, int) {
	synced, failed := 0, 0

	for _, item := range cards {
		if ctx.Err() != nil {
			failed += len(cards) - synced - failed
			h.logger.Warn("Синхронизация карточек прервана", zap.Error(ctx.Err()))
			break
		}

		card, err := BuildCard(item, listNames, fields, h.cfg.Fields)
		if err != nil {
			failed++
			h.logger.Warn("Карточка не разобрана, пропущена", zap.String("card_id", item.ID), zap.Error(err))
			continue
		}

		if err := h.boardRepo.UpsertCard(ctx, card); err != nil {
			failed++
			h.logger.Error("Ошибка сохранения карточки", zap.String("card_id", item.ID), zap.Error(err))
			continue
		}
		synced++
	}

	h.logger.Info("📊 КАРТОЧКИ", zap.Int("Всего", len(cards)), zap.Int("Сохранено", synced), zap.Int("Ошибок", failed))
	return synced, failed
}
