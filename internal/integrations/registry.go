// Файл: internal/integrations/registry.go
package integrations

import (
	"fmt"
	"sort"
	"sync"

	apperrors "oficina-system/pkg/errors"
)

type RegistryInterface interface {
	Register(provider BoardProvider) error
	Get(name string) (BoardProvider, error)
	// SetActive выбирает доску, с которой работают синхронизация и действия с карточками.
	SetActive(name string) error
	GetActive() (BoardProvider, error)
	Names() []string
}

// Registry хранит провайдеров досок. Активный выбирается из конфигурации (BOARD_PROVIDER).
type Registry struct {
	providers map[string]BoardProvider
	active    string
	mu        sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		providers: make(map[string]BoardProvider),
	}
}

func (r *Registry) Register(provider BoardProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("провайдер доски '%s' уже зарегистрирован", name)
	}
	r.providers[name] = provider
	return nil
}

func (r *Registry) Get(name string) (BoardProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: провайдер доски '%s' не найден", apperrors.ErrIntegrationNotConfigured, name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("невозможно сделать активным провайдера '%s': он не зарегистрирован", name)
	}
	r.active = name
	return nil
}

func (r *Registry) GetActive() (BoardProvider, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("%w: активный провайдер доски не выбран", apperrors.ErrIntegrationNotConfigured)
	}
	return r.Get(activeName)
}

// Names возвращает зарегистрированные имена в алфавитном порядке.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
