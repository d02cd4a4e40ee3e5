package trello

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	apperrors "oficina-system/pkg/errors"
)

// MoveCard переносит карточку в другую колонку.
func (p *Provider) MoveCard(ctx context.Context, cardID, listID string) error {
	if err := p.checkCredentials(); err != nil {
		return err
	}
	if listID == "" {
		return fmt.Errorf("%w: lista de destino não configurada", apperrors.ErrIntegrationNotConfigured)
	}
	if _, err := p.doRequest(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID), url.Values{"idList": {listID}}, nil); err != nil {
		return fmt.Errorf("не удалось переместить карточку %s: %w", cardID, err)
	}
	p.logger.Info("Карточка перемещена", zap.String("card_id", cardID), zap.String("list_id", listID))
	return nil
}

// ClearCustomField очищает значение пользовательского поля карточки.
func (p *Provider) ClearCustomField(ctx context.Context, cardID, fieldID string) error {
	if err := p.checkCredentials(); err != nil {
		return err
	}
	if fieldID == "" {
		return fmt.Errorf("%w: campo personalizado não configurado", apperrors.ErrIntegrationNotConfigured)
	}
	path := "/cards/" + url.PathEscape(cardID) + "/customField/" + url.PathEscape(fieldID) + "/item"
	body := map[string]interface{}{"value": "", "idValue": ""}
	if _, err := p.doRequest(ctx, http.MethodPut, path, nil, body); err != nil {
		return fmt.Errorf("не удалось очистить поле %s карточки %s: %w", fieldID, cardID, err)
	}
	return nil
}

// AddComment добавляет комментарий в историю карточки.
func (p *Provider) AddComment(ctx context.Context, cardID, text string) error {
	if err := p.checkCredentials(); err != nil {
		return err
	}
	path := "/cards/" + url.PathEscape(cardID) + "/actions/comments"
	if _, err := p.doRequest(ctx, http.MethodPost, path, url.Values{"text": {text}}, nil); err != nil {
		return fmt.Errorf("не удалось добавить комментарий к карточке %s: %w", cardID, err)
	}
	return nil
}
