// Package extractor находит в произвольной таблице колонки
// "количество / taille / размер" и превращает строки в наблюдения.
//
// Поддерживаются две стратегии: поиск колонки по точному имени заголовка
// (Named) и позиционная эвристика (Positional). Auto пробует имя, а при
// отсутствии колонки переходит к эвристике.
package extractor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// Marker - литерал, по которому определяется колонка размеров.
const Marker = "taille"

const DefaultColumn = "Quantité par taille"

// ErrColumnsNotLocated возвращается, когда ни одна стратегия не нашла колонки.
var ErrColumnsNotLocated = errors.New("не удалось найти колонки количества и размера")

type Extractor interface {
	Extract(t Table) ([]sizes.Observation, error)
}

// Имена стратегий для конфигурации.
const (
	ModeNamed      = "named"
	ModePositional = "positional"
	ModeAuto       = "auto"
)

// Strategy строит экстрактор по имени режима. Пустое имя колонки
// заменяется на DefaultColumn.
func Strategy(mode, column string) (Extractor, error) {
	if column == "" {
		column = DefaultColumn
	}
	switch mode {
	case ModeNamed:
		return Named{Column: column}, nil
	case ModePositional:
		return Positional{}, nil
	case ModeAuto, "":
		return Auto{Named: Named{Column: column}}, nil
	}
	return nil, fmt.Errorf("неизвестный режим извлечения %q", mode)
}

// Auto пробует Named, а если колонка не найдена - Positional.
type Auto struct {
	Named      Named
	Positional Positional
}

func (a Auto) Extract(t Table) ([]sizes.Observation, error) {
	obs, err := a.Named.Extract(t)
	if err == nil {
		return obs, nil
	}
	if !errors.Is(err, ErrColumnsNotLocated) {
		return nil, err
	}
	obs, perr := a.Positional.Extract(t)
	if perr != nil {
		return nil, fmt.Errorf("%w (по имени: %v)", perr, err)
	}
	return obs, nil
}

// parseInt принимает только десятичные целые и целые с нулевой дробной
// частью ("38.0"), как их выгружают электронные таблицы. Экспонента не допускается.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	whole, frac, found := strings.Cut(s, ".")
	if found && (frac == "" || strings.Trim(frac, "0") != "") {
		return 0, false
	}
	n, err := strconv.Atoi(whole)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return n, true
}
