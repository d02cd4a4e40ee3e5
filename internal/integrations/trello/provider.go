package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"oficina-system/internal/integrations"
	dto_internal "oficina-system/internal/integrations/dto"
	"oficina-system/pkg/config"
	apperrors "oficina-system/pkg/errors"
)

const ProviderName = "trello"

// Provider - клиент Trello REST API для одной доски.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	boardID    string
	logger     *zap.Logger
}

func New(cfg config.TrelloConfig, logger *zap.Logger) integrations.BoardProvider {
	return &Provider{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		token:      cfg.Token,
		boardID:    cfg.BoardID,
		logger:     logger.Named("trello_provider"),
	}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) checkCredentials() error {
	if p.apiKey == "" || p.token == "" {
		return fmt.Errorf("%w: TRELLO_API_KEY/TRELLO_TOKEN não definidos", apperrors.ErrIntegrationNotConfigured)
	}
	return nil
}

func (p *Provider) checkBoard() error {
	if err := p.checkCredentials(); err != nil {
		return err
	}
	if p.boardID == "" {
		return fmt.Errorf("%w: TRELLO_BOARD_ID não definido", apperrors.ErrIntegrationNotConfigured)
	}
	return nil
}

// processEntity получает список сущностей, разбирает JSON и переводит каждую во внутренний DTO.
// Сущность, которую не удалось перевести, пропускается с предупреждением.
func processEntity[Ext interface{ GetID() string }, Int any](
	p *Provider,
	ctx context.Context,
	endpoint string,
	query url.Values,
	mapper func(Ext) (Int, error),
) ([]Int, error) {
	if err := p.checkBoard(); err != nil {
		return nil, err
	}

	rawData, err := p.fetchData(ctx, endpoint, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения данных для эндпоинта %s: %w", endpoint, err)
	}

	var externalEntities []Ext
	if err := json.Unmarshal(rawData, &externalEntities); err != nil {
		return nil, fmt.Errorf("%w: ошибка парсинга JSON для эндпоинта %s: %v", apperrors.ErrExternalAPI, endpoint, err)
	}
	p.logger.Debug("Успешно получено и распарсено",
		zap.String("endpoint", endpoint),
		zap.Int("count", len(externalEntities)),
	)

	internalEntities := make([]Int, 0, len(externalEntities))
	for _, entity := range externalEntities {
		internal, err := mapper(entity)
		if err != nil {
			p.logger.Warn("Ошибка конвертации сущности, запись пропущена",
				zap.String("endpoint", endpoint),
				zap.String("external_id", entity.GetID()),
				zap.Error(err),
			)
			continue
		}
		internalEntities = append(internalEntities, internal)
	}
	return internalEntities, nil
}

func (p *Provider) GetLists(ctx context.Context) ([]dto_internal.IntegrationListDTO, error) {
	return processEntity(p, ctx, "/boards/"+p.boardID+"/lists", url.Values{"filter": {"open"}}, mapListToInternal)
}

func (p *Provider) GetCustomFields(ctx context.Context) ([]dto_internal.IntegrationCustomFieldDTO, error) {
	return processEntity(p, ctx, "/boards/"+p.boardID+"/customFields", nil, mapCustomFieldToInternal)
}

func (p *Provider) GetCards(ctx context.Context) ([]dto_internal.IntegrationCardDTO, error) {
	return processEntity(p, ctx, "/boards/"+p.boardID+"/cards", url.Values{"customFieldItems": {"true"}}, mapCardToInternal)
}
