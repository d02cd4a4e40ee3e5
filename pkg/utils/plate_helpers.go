package utils

import "strings"

var plateSeparators = strings.NewReplacer(" ", "", "-", "", ".", "")

// NormalizePlate приводит номер к виду ABC1234 / ABC1D23: без пробелов и дефисов, в верхнем регистре.
func NormalizePlate(plate string) string {
	return strings.ToUpper(plateSeparators.Replace(strings.TrimSpace(plate)))
}
