// Файл: internal/integrations/dto/board.go
package dto

import "time"

// Внутренние DTO доски. Провайдер (Trello, mock) переводит в них свой формат.

type IntegrationListDTO struct {
	ID      string
	Name    string
	BoardID string
}

type IntegrationFieldOptionDTO struct {
	ID    string
	Value string
}

// IntegrationCustomFieldDTO - определение пользовательского поля доски.
// Type: text, number, date, list, checkbox.
type IntegrationCustomFieldDTO struct {
	ID      string
	Name    string
	Type    string
	Options []IntegrationFieldOptionDTO
}

type IntegrationLabelDTO struct {
	Name  string
	Color string
}

// IntegrationFieldValueDTO - значение поля на карточке. Заполнено ровно одно из значений.
type IntegrationFieldValueDTO struct {
	FieldID  string
	Text     string
	Number   string
	Date     string
	Checked  string
	OptionID string
}

type IntegrationCardDTO struct {
	ID               string
	Name             string
	Description      string
	ListID           string
	Labels           []IntegrationLabelDTO
	DateLastActivity *time.Time
	FieldValues      []IntegrationFieldValueDTO
}
