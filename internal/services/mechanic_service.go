package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/entities"
	"oficina-system/internal/repositories"
	apperrors "oficina-system/pkg/errors"
)

// DefaultMechanics - стартовый состав мастерской для команды seed.
var DefaultMechanics = []string{"Carlos", "João", "Marcos", "Rafael"}

type MechanicServiceInterface interface {
	GetMechanics(ctx context.Context, onlyActive bool) ([]entities.Mechanic, error)
	CreateMechanic(ctx context.Context, payload dto.CreateMechanicDTO) (*entities.Mechanic, error)
	// Seed добавляет механиков, которых ещё нет. Возвращает число добавленных.
	Seed(ctx context.Context, names []string) (int, error)
}

type MechanicService struct {
	repo   repositories.MechanicRepositoryInterface
	logger *zap.Logger
}

func NewMechanicService(repo repositories.MechanicRepositoryInterface, logger *zap.Logger) MechanicServiceInterface {
	return &MechanicService{repo: repo, logger: logger.Named("mechanic_service")}
}

func (s *MechanicService) GetMechanics(ctx context.Context, onlyActive bool) ([]entities.Mechanic, error) {
	return s.repo.GetMechanics(ctx, onlyActive)
}

func (s *MechanicService) CreateMechanic(ctx context.Context, payload dto.CreateMechanicDTO) (*entities.Mechanic, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("nome do mecânico é obrigatório")
	}
	mechanic := entities.Mechanic{ID: uuid.New(), Name: name, Active: true}
	if payload.Active != nil {
		mechanic.Active = *payload.Active
	}

	created, err := s.repo.CreateMechanic(ctx, mechanic)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperrors.ErrConflict
	}
	return &mechanic, nil
}

func (s *MechanicService) Seed(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		created, err := s.repo.CreateMechanic(ctx, entities.Mechanic{ID: uuid.New(), Name: name, Active: true})
		if err != nil {
			return added, err
		}
		if created {
			added++
			s.logger.Info("Механик добавлен", zap.String("name", name))
		}
	}
	return added, nil
}
