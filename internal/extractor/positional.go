package extractor

import (
	"fmt"
	"strings"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// Positional ищет первую ячейку с маркером (по строкам, затем по колонкам),
// у которой соседние слева и справа ячейки числовые. Эта строка и все
// строки ниже, ограниченные тремя колонками, образуют область данных.
type Positional struct{}

// Region - найденная область из трёх колонок.
type Region struct {
	// StartRow - индекс строки с первым маркером, начиная с 0.
	StartRow    int
	QuantityCol int
	MarkerCol   int
	SizeCol     int
	// Rows - строки области без пропусков: количество, маркер, размер.
	Rows [][3]string
}

// Locate находит область. Строки с пустой ячейкой в любой из трёх колонок отбрасываются.
func (Positional) Locate(t Table) (Region, error) {
	for r, row := range t {
		for c, cell := range row {
			if c == 0 || !strings.Contains(strings.ToLower(cell), Marker) {
				continue
			}
			if !isNumeric(t.Cell(r, c-1)) || !isNumeric(t.Cell(r, c+1)) {
				continue
			}
			return collectRegion(t, r, c), nil
		}
	}
	return Region{}, fmt.Errorf("%w: маркер %q с числовыми соседями не найден", ErrColumnsNotLocated, Marker)
}

func collectRegion(t Table, startRow, markerCol int) Region {
	reg := Region{
		StartRow:    startRow,
		QuantityCol: markerCol - 1,
		MarkerCol:   markerCol,
		SizeCol:     markerCol + 1,
	}
	for r := startRow; r < len(t); r++ {
		rec := [3]string{
			strings.TrimSpace(t.Cell(r, reg.QuantityCol)),
			strings.TrimSpace(t.Cell(r, reg.MarkerCol)),
			strings.TrimSpace(t.Cell(r, reg.SizeCol)),
		}
		if rec[0] == "" || rec[1] == "" || rec[2] == "" {
			continue
		}
		reg.Rows = append(reg.Rows, rec)
	}
	return reg
}

// Observations превращает строки области в наблюдения. Строки, где
// количество или размер не являются целыми, пропускаются.
func (reg Region) Observations() []sizes.Observation {
	out := make([]sizes.Observation, 0, len(reg.Rows))
	for _, rec := range reg.Rows {
		qty, ok := parseInt(rec[0])
		if !ok || qty < 0 {
			continue
		}
		size, ok := parseInt(rec[2])
		if !ok {
			continue
		}
		out = append(out, sizes.Observation{Quantity: qty, Size: size})
	}
	return out
}

func (p Positional) Extract(t Table) ([]sizes.Observation, error) {
	reg, err := p.Locate(t)
	if err != nil {
		return nil, err
	}
	return reg.Observations(), nil
}

func isNumeric(s string) bool {
	n, ok := parseInt(s)
	return ok && n >= 0
}
