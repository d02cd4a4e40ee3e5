package utils

import (
	"strings"
	"time"
)

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func ToPtr[T any](v T) *T {
	return &v
}

// StringToPtr возвращает nil для пустой (после обрезки пробелов) строки.
func StringToPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimPtr обрезает пробелы и превращает пустую строку в nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return StringToPtr(*s)
}

func TimeToPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
