package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// NormalizeBRPhoneNumber оставляет DDD и номер (10 или 11 цифр), код страны 55 отбрасывается.
// Нераспознанный номер возвращается как есть (обрезанным): телефон клиента - только копия для связи.
func NormalizeBRPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	digits := nonDigitRegexp.ReplaceAllString(phone, "")
	if len(digits) > 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	digits = strings.TrimPrefix(digits, "0")
	if len(digits) == 10 || len(digits) == 11 {
		return digits
	}
	return phone
}
