package extractor

import "strings"

// Table - ячейки таблицы по строкам. Отсутствующая ячейка равна "".
// Строки могут иметь разную длину.
type Table [][]string

func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return t[row][col]
}

func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Empty сообщает, что в таблице нет ни одной непустой ячейки.
func (t Table) Empty() bool {
	for _, row := range t {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}
