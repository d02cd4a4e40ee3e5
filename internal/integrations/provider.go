package integrations

import (
	"context"

	"oficina-system/internal/integrations/dto"
)

// BoardProvider - внешняя канбан-доска, которую мы зеркалируем и на которой двигаем карточки.
type BoardProvider interface {
	Name() string
	GetLists(ctx context.Context) ([]dto.IntegrationListDTO, error)
	GetCustomFields(ctx context.Context) ([]dto.IntegrationCustomFieldDTO, error)
	GetCards(ctx context.Context) ([]dto.IntegrationCardDTO, error)
	MoveCard(ctx context.Context, cardID, listID string) error
	ClearCustomField(ctx context.Context, cardID, fieldID string) error
	AddComment(ctx context.Context, cardID, text string) error
}
