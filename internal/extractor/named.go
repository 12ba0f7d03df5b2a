package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// между числами и маркером допускаются неразрывные пробелы (U+00A0, U+202F)
var cellPattern = regexp.MustCompile(`(?i)(\d+)[\s\x{00A0}\x{202F}]*` + Marker + `[\s\x{00A0}\x{202F}]*(\d+)`)

// Named ищет колонку по точному имени заголовка (первая строка таблицы)
// и извлекает из каждой её ячейки все вхождения "<количество> taille <размер>".
// Количество не делится между размерами.
type Named struct {
	Column string
}

func (n Named) column() string {
	if n.Column == "" {
		return DefaultColumn
	}
	return n.Column
}

// Index возвращает индекс колонки или -1. Имена сравниваются после
// NFC-нормализации и обрезки пробелов.
func (n Named) Index(header []string) int {
	want := normalizeHeader(n.column())
	for i, h := range header {
		if normalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

func (n Named) Extract(t Table) ([]sizes.Observation, error) {
	col := n.Index(t.Header())
	if col < 0 {
		return nil, fmt.Errorf("%w: нет колонки %q", ErrColumnsNotLocated, n.column())
	}

	var out []sizes.Observation
	for r := 1; r < len(t); r++ {
		out = append(out, MatchCell(t.Cell(r, col))...)
	}
	return out, nil
}

// MatchCell извлекает все непересекающиеся вхождения шаблона из текста ячейки.
func MatchCell(text string) []sizes.Observation {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []sizes.Observation
	for _, m := range cellPattern.FindAllStringSubmatch(text, -1) {
		qty, ok := parseInt(m[1])
		if !ok {
			continue
		}
		size, ok := parseInt(m[2])
		if !ok {
			continue
		}
		out = append(out, sizes.Observation{Quantity: qty, Size: size})
	}
	return out
}

func normalizeHeader(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
