package trello

import (
	"fmt"
	"strings"

	internalDTO "oficina-system/internal/integrations/dto"
)

func mapListToInternal(ext ListDTO) (internalDTO.IntegrationListDTO, error) {
	if ext.ID == "" {
		return internalDTO.IntegrationListDTO{}, fmt.Errorf("lista sem id")
	}
	return internalDTO.IntegrationListDTO{
		ID:      ext.ID,
		Name:    strings.TrimSpace(ext.Name),
		BoardID: ext.IDBoard,
	}, nil
}

func mapCustomFieldToInternal(ext CustomFieldDTO) (internalDTO.IntegrationCustomFieldDTO, error) {
	if ext.ID == "" {
		return internalDTO.IntegrationCustomFieldDTO{}, fmt.Errorf("campo personalizado sem id")
	}
	options := make([]internalDTO.IntegrationFieldOptionDTO, 0, len(ext.Options))
	for _, o := range ext.Options {
		options = append(options, internalDTO.IntegrationFieldOptionDTO{ID: o.ID, Value: o.Value.Text})
	}
	return internalDTO.IntegrationCustomFieldDTO{
		ID:      ext.ID,
		Name:    strings.TrimSpace(ext.Name),
		Type:    ext.Type,
		Options: options,
	}, nil
}

// mapCardToInternal не отбрасывает карточки: некорректную отклоняет sync.BuildCard и учитывает в errors.
func mapCardToInternal(ext CardDTO) (internalDTO.IntegrationCardDTO, error) {
	labels := make([]internalDTO.IntegrationLabelDTO, 0, len(ext.Labels))
	for _, l := range ext.Labels {
		labels = append(labels, internalDTO.IntegrationLabelDTO{Name: l.Name, Color: l.Color})
	}

	values := make([]internalDTO.IntegrationFieldValueDTO, 0, len(ext.CustomFieldItems))
	for _, item := range ext.CustomFieldItems {
		values = append(values, internalDTO.IntegrationFieldValueDTO{
			FieldID:  item.IDCustomField,
			Text:     item.Value.Text,
			Number:   item.Value.Number,
			Date:     item.Value.Date,
			Checked:  item.Value.Checked,
			OptionID: item.IDValue,
		})
	}

	return internalDTO.IntegrationCardDTO{
		ID:               ext.ID,
		Name:             ext.Name,
		Description:      ext.Desc,
		ListID:           ext.IDList,
		Labels:           labels,
		DateLastActivity: ext.DateLastActivity,
		FieldValues:      values,
	}, nil
}
