package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/entities"
	"oficina-system/internal/repositories"
	apperrors "oficina-system/pkg/errors"
)

type PatioServiceInterface interface {
	// GetColumns возвращает карточки зеркала, сгруппированные по позиции во дворе.
	GetColumns(ctx context.Context, position string) ([]dto.PatioColumnDTO, error)
	FindCard(ctx context.Context, id string) (*entities.BoardCard, error)
}

type PatioService struct {
	boardRepo repositories.BoardRepositoryInterface
	logger    *zap.Logger
}

func NewPatioService(boardRepo repositories.BoardRepositoryInterface, logger *zap.Logger) PatioServiceInterface {
	return &PatioService{boardRepo: boardRepo, logger: logger.Named("patio_service")}
}

func (s *PatioService) GetColumns(ctx context.Context, position string) ([]dto.PatioColumnDTO, error) {
	var filter *entities.PatioPosition
	if position != "" {
		p := entities.PatioPosition(position)
		if !p.IsValid() {
			return nil, apperrors.NewInvalidInputError("posição do pátio inválida: %s", position)
		}
		filter = &p
	}

	cards, err := s.boardRepo.GetCards(ctx, filter)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[entities.PatioPosition][]entities.BoardCard)
	for _, c := range cards {
		byPosition[c.Position] = append(byPosition[c.Position], c)
	}

	positions := entities.AllPatioPositions
	if filter != nil {
		positions = []entities.PatioPosition{*filter}
	}
	columns := make([]dto.PatioColumnDTO, 0, len(positions))
	for _, p := range positions {
		list := byPosition[p]
		if list == nil {
			list = []entities.BoardCard{}
		}
		// Сначала срочные, затем по последней активности
		sort.SliceStable(list, func(i, j int) bool {
			ri, rj := list[i].Priority.Rank(), list[j].Priority.Rank()
			if ri != rj {
				return ri > rj
			}
			return activity(list[i]) > activity(list[j])
		})
		columns = append(columns, dto.PatioColumnDTO{Position: p, Cards: list})
	}
	return columns, nil
}

func activity(c entities.BoardCard) int64 {
	if c.DateLastActivity == nil {
		return 0
	}
	return c.DateLastActivity.Unix()
}

func (s *PatioService) FindCard(ctx context.Context, id string) (*entities.BoardCard, error) {
	return s.boardRepo.FindCard(ctx, id)
}
