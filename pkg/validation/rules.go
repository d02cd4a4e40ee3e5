package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"oficina-system/internal/entities"
	"oficina-system/pkg/utils"
)

var plateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"placa":         isPlate,
		"order_status":  isOrderStatus,
		"item_status":   isItemStatus,
		"item_priority": isItemPriority,
		"checklist":     isChecklistKind,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// isPlate - старый формат ABC1234 и Mercosul ABC1D23, разделители допускаются
func isPlate(fl validator.FieldLevel) bool {
	return plateRegex.MatchString(utils.NormalizePlate(fl.Field().String()))
}

func isOrderStatus(fl validator.FieldLevel) bool {
	return entities.OrderStatus(fl.Field().String()).IsValid()
}

func isItemStatus(fl validator.FieldLevel) bool {
	return entities.ItemStatus(fl.Field().String()).IsValid()
}

func isItemPriority(fl validator.FieldLevel) bool {
	return entities.ItemPriority(fl.Field().String()).IsValid()
}

func isChecklistKind(fl validator.FieldLevel) bool {
	return entities.ChecklistKind(fl.Field().String()).IsValid()
}
