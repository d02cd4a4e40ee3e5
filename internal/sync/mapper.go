package sync

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oficina-system/internal/entities"
	"oficina-system/internal/integrations/dto"
	"oficina-system/pkg/config"
	"oficina-system/pkg/utils"
)

// Имя карточки: "<ПЛАТА> - <модель>". Плата - буквы, цифры и дефисы.
var plateModelRe = regexp.MustCompile(`^([A-Za-z0-9-]+)\s+-\s+(.+)$`)

// ExtractPlateModel разбирает имя карточки. Без разделителя плата пустая, а модель - всё имя.
func ExtractPlateModel(name string) (plate *string, model *string) {
	name = strings.TrimSpace(name)
	m := plateModelRe.FindStringSubmatch(name)
	if m == nil {
		return nil, utils.StringToPtr(name)
	}
	return utils.StringToPtr(strings.ToUpper(m[1])), utils.StringToPtr(m[2])
}

// FieldIndex ищет определения пользовательских полей по имени (без учёта регистра и диакритики).
type FieldIndex struct {
	byName map[string]dto.IntegrationCustomFieldDTO
}

func NewFieldIndex(fields []dto.IntegrationCustomFieldDTO) FieldIndex {
	idx := FieldIndex{byName: make(map[string]dto.IntegrationCustomFieldDTO, len(fields))}
	for _, f := range fields {
		key := normalizeName(f.Name)
		if _, dup := idx.byName[key]; !dup {
			idx.byName[key] = f
		}
	}
	return idx
}

// Resolve возвращает значение поля fieldName на карточке в виде строки.
func (idx FieldIndex) Resolve(card dto.IntegrationCardDTO, fieldName string) (string, bool) {
	field, ok := idx.byName[normalizeName(fieldName)]
	if !ok {
		return "", false
	}

	for _, v := range card.FieldValues {
		if v.FieldID != field.ID {
			continue
		}
		var raw string
		switch field.Type {
		case "text":
			raw = v.Text
		case "number":
			raw = v.Number
		case "date":
			raw = v.Date
		case "checkbox":
			raw = v.Checked
		case "list":
			for _, o := range field.Options {
				if o.ID == v.OptionID {
					raw = o.Value
					break
				}
			}
		default:
			raw = firstNonEmpty(v.Text, v.Number, v.Date, v.Checked)
		}
		raw = strings.TrimSpace(raw)
		return raw, raw != ""
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var thousandsOnlyRe = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// ParseMoney понимает и "1500.5" (числовое поле), и "R$ 1.500,50" / "R$ 1.500" (текстовое).
func ParseMoney(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")
	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case thousandsOnlyRe.MatchString(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("valor monetário inválido %q: %w", s, err)
	}
	return v.Round(2), nil
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02", "02/01/2006"}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("data inválida %q", s)
}

// BuildCard переводит карточку доски в запись зеркала. SyncedAt не заполняется.
func BuildCard(card dto.IntegrationCardDTO, listNames map[string]string, fields FieldIndex, names config.TrelloFieldNames) (entities.BoardCard, error) {
	if strings.TrimSpace(card.ID) == "" {
		return entities.BoardCard{}, fmt.Errorf("cartão sem id")
	}

	labels := make([]entities.BoardLabel, 0, len(card.Labels))
	for _, l := range card.Labels {
		labels = append(labels, entities.BoardLabel{Name: strings.TrimSpace(l.Name), Color: l.Color})
	}

	plate, model := ExtractPlateModel(card.Name)
	listName := listNames[card.ListID]

	result := entities.BoardCard{
		ID:               card.ID,
		Name:             strings.TrimSpace(card.Name),
		Description:      card.Description,
		ListID:           card.ListID,
		ListName:         listName,
		Labels:           labels,
		DateLastActivity: card.DateLastActivity,
		Plate:            plate,
		Model:            model,
		Position:         MapListToPosition(listName),
		Priority:         PriorityFromLabels(labels),
		Color:            CardColor(labels),
	}

	if tech, ok := fields.Resolve(card, names.Technician); ok {
		result.Technician = &tech
	}

	if raw, ok := fields.Resolve(card, names.ApprovedValue); ok {
		value, err := ParseMoney(raw)
		if err != nil {
			return entities.BoardCard{}, fmt.Errorf("cartão %s: %w", card.ID, err)
		}
		result.ApprovedValue = decimal.NewNullDecimal(value)
	}

	if raw, ok := fields.Resolve(card, names.EstimatedDelivery); ok {
		due, err := ParseDate(raw)
		if err != nil {
			return entities.BoardCard{}, fmt.Errorf("cartão %s: %w", card.ID, err)
		}
		result.EstimatedDelivery = &due
	}

	return result, nil
}
