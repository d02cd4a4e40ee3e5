package sync

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"oficina-system/internal/entities"
)

// DefaultCardColor - цвет карточки, когда у меток нет известного цвета.
const DefaultCardColor = "#B3BAC5"

// Таблицы соответствия хранятся в нормализованном виде (см. normalizeName).
var listPositions = map[string]entities.PatioPosition{
	"ENTRADA":              entities.PositionEntrada,
	"CHEGADA":              entities.PositionEntrada,
	"RECEPCAO":             entities.PositionEntrada,
	"DIAGNOSTICO":          entities.PositionDiagnostico,
	"EM DIAGNOSTICO":       entities.PositionDiagnostico,
	"AVALIACAO":            entities.PositionDiagnostico,
	"ORCAMENTO":            entities.PositionOrcamento,
	"FAZER ORCAMENTO":      entities.PositionOrcamento,
	"AGUARD APROVACAO":     entities.PositionAguardandoAprovacao,
	"AGUARDANDO APROVACAO": entities.PositionAguardandoAprovacao,
	"AGUARD PECAS":         entities.PositionAguardandoPecas,
	"AGUARDANDO PECAS":     entities.PositionAguardandoPecas,
	"EM EXECUCAO":          entities.PositionEmExecucao,
	"EXECUCAO":             entities.PositionEmExecucao,
	"EM SERVICO":           entities.PositionEmExecucao,
	"EM ANDAMENTO":         entities.PositionEmExecucao,
	"TESTE":                entities.PositionTeste,
	"EM TESTE":             entities.PositionTeste,
	"TESTE DE RODAGEM":     entities.PositionTeste,
	"DINAMOMETRO":          entities.PositionTeste,
	"PRONTO":               entities.PositionPronto,
	"PRONTO PARA RETIRADA": entities.PositionPronto,
	"FINALIZADO":           entities.PositionPronto,
	"ENTREGUE":             entities.PositionEntregue,
}

var labelPriorities = map[string]entities.CardPriority{
	"URGENTE":         entities.CardUrgente,
	"ALTA":            entities.CardAlta,
	"PRIORIDADE ALTA": entities.CardAlta,
	"IMPORTANTE":      entities.CardAlta,
	"MEDIA":           entities.CardMedia,
	"NORMAL":          entities.CardMedia,
	"BAIXA":           entities.CardBaixa,
	"SEM PRESSA":      entities.CardBaixa,
}

// Палитра меток Trello.
var labelColors = map[string]string{
	"green":  "#61BD4F",
	"yellow": "#F2D600",
	"orange": "#FF9F1A",
	"red":    "#EB5A46",
	"purple": "#C377E0",
	"blue":   "#0079BF",
	"sky":    "#00C2E0",
	"lime":   "#51E898",
	"pink":   "#FF78CB",
	"black":  "#344563",
}

// normalizeName: без диакритики, верхний регистр, пунктуация заменена пробелами, пробелы схлопнуты.
// "Aguard. Peças" -> "AGUARD PECAS".
func normalizeName(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MapListToPosition переводит имя колонки доски в позицию на площадке. Неизвестное имя - entrada.
func MapListToPosition(name string) entities.PatioPosition {
	if pos, ok := listPositions[normalizeName(name)]; ok {
		return pos
	}
	return entities.PositionEntrada
}

// MapLabelToPriority переводит имя метки в приоритет. Неизвестная метка - media.
func MapLabelToPriority(name string) entities.CardPriority {
	if p, ok := labelPriorities[normalizeName(name)]; ok {
		return p
	}
	return entities.CardMedia
}

// PriorityFromLabels берёт самый высокий приоритет среди меток, которые удалось распознать.
// Нет распознанных меток - media.
func PriorityFromLabels(labels []entities.BoardLabel) entities.CardPriority {
	best := entities.CardPriority("")
	for _, l := range labels {
		p, ok := labelPriorities[normalizeName(l.Name)]
		if ok && p.Rank() > best.Rank() {
			best = p
		}
	}
	if best == "" {
		return entities.CardMedia
	}
	return best
}

// MapLabelColor возвращает hex-цвет для цвета метки Trello, иначе fallback.
func MapLabelColor(color, fallback string) string {
	if hex, ok := labelColors[strings.ToLower(strings.TrimSpace(color))]; ok {
		return hex
	}
	return fallback
}

// CardColor - цвет первой метки с известным цветом.
func CardColor(labels []entities.BoardLabel) string {
	for _, l := range labels {
		if hex := MapLabelColor(l.Color, ""); hex != "" {
			return hex
		}
	}
	return DefaultCardColor
}
