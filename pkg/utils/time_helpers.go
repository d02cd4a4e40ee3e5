package utils

import (
	"time"
)

// Бразилия без летнего времени с 2019 года, UTC-3.
var fixedBRT = time.FixedZone("BRT", -3*60*60)

// LoadLocation загружает часовой пояс по имени. Если tzdata в образе нет, возвращает фиксированный UTC-3.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fixedBRT
	}
	return loc
}

// FormatBRDateTime форматирует время как принято в pt-BR: "02/01/2006 às 15:04".
func FormatBRDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = fixedBRT
	}
	return t.In(loc).Format("02/01/2006 às 15:04")
}
