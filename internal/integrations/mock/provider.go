package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"oficina-system/internal/integrations/dto"
)

const ProviderName = "mock"

var ErrMockFailure = errors.New("mock: falha simulada")

type Move struct {
	CardID string
	ListID string
}

type Comment struct {
	CardID string
	Text   string
}

type ClearedField struct {
	CardID  string
	FieldID string
}

// MockProvider - доска в памяти. Используется в тестах и при BOARD_PROVIDER=mock.
type MockProvider struct {
	mu sync.Mutex

	ShouldFail bool
	// FailOn - имена методов, которые должны вернуть ошибку.
	FailOn map[string]bool

	Lists  []dto.IntegrationListDTO
	Fields []dto.IntegrationCustomFieldDTO
	Cards  []dto.IntegrationCardDTO

	Moves         []Move
	Comments      []Comment
	ClearedFields []ClearedField
}

func NewMockProvider() *MockProvider {
	return &MockProvider{FailOn: map[string]bool{}}
}

func (m *MockProvider) Name() string {
	return ProviderName
}

func (m *MockProvider) fail(method string) error {
	if m.ShouldFail || m.FailOn[method] {
		return fmt.Errorf("%s: %w", method, ErrMockFailure)
	}
	return nil
}

func (m *MockProvider) GetLists(ctx context.Context) ([]dto.IntegrationListDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetLists"); err != nil {
		return nil, err
	}
	return append([]dto.IntegrationListDTO(nil), m.Lists...), nil
}

func (m *MockProvider) GetCustomFields(ctx context.Context) ([]dto.IntegrationCustomFieldDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetCustomFields"); err != nil {
		return nil, err
	}
	return append([]dto.IntegrationCustomFieldDTO(nil), m.Fields...), nil
}

func (m *MockProvider) GetCards(ctx context.Context) ([]dto.IntegrationCardDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetCards"); err != nil {
		return nil, err
	}
	return append([]dto.IntegrationCardDTO(nil), m.Cards...), nil
}

func (m *MockProvider) MoveCard(ctx context.Context, cardID, listID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("MoveCard"); err != nil {
		return err
	}
	for i := range m.Cards {
		if m.Cards[i].ID == cardID {
			m.Cards[i].ListID = listID
		}
	}
	m.Moves = append(m.Moves, Move{CardID: cardID, ListID: listID})
	return nil
}

func (m *MockProvider) ClearCustomField(ctx context.Context, cardID, fieldID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ClearCustomField"); err != nil {
		return err
	}
	for i := range m.Cards {
		if m.Cards[i].ID != cardID {
			continue
		}
		kept := m.Cards[i].FieldValues[:0]
		for _, v := range m.Cards[i].FieldValues {
			if v.FieldID != fieldID {
				kept = append(kept, v)
			}
		}
		m.Cards[i].FieldValues = kept
	}
	m.ClearedFields = append(m.ClearedFields, ClearedField{CardID: cardID, FieldID: fieldID})
	return nil
}

func (m *MockProvider) AddComment(ctx context.Context, cardID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AddComment"); err != nil {
		return err
	}
	m.Comments = append(m.Comments, Comment{CardID: cardID, Text: text})
	return nil
}

// Snapshot возвращает копии записанных действий.
func (m *MockProvider) Snapshot() ([]Move, []Comment, []ClearedField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Move(nil), m.Moves...),
		append([]Comment(nil), m.Comments...),
		append([]ClearedField(nil), m.ClearedFields...)
}
