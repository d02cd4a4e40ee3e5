// Файл: utils/patcher.go
package utils

import (
	"encoding/json"
)

// SentFields возвращает ключи верхнего уровня, которые клиент прислал в JSON-теле.
// Нужен, чтобы отличить "поле не прислано" от "поле прислано как null".
func SentFields(rawRequestBody []byte) (map[string]bool, error) {
	var sent map[string]json.RawMessage
	if err := json.Unmarshal(rawRequestBody, &sent); err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(sent))
	for k := range sent {
		fields[k] = true
	}
	return fields, nil
}
