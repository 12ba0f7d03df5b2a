// Package textline разбирает вставленный текст вида
// "<количество>\ttaille\t<размер>[/<размер>...]" в наблюдения.
package textline

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// Marker - литерал в средней колонке строки.
const Marker = "taille"

// Названия колонок таблицы для редактирования. Должны совпадать побайтно
// с тем, что ожидают внешние инструменты.
const (
	ColumnQuantity = "Quantité"
	ColumnMarker   = "taille"
	ColumnSize     = "Fourchette de taille"
)

// GridHeader - заголовок таблицы разобранных строк.
var GridHeader = []string{ColumnQuantity, ColumnMarker, ColumnSize}

type Options struct {
	// Separator - разделитель полей, по умолчанию табуляция.
	Separator string
}

// Row - одна строка таблицы разобранных данных.
type Row struct {
	Quantity int    `json:"quantity"`
	Marker   string `json:"marker"`
	Size     int    `json:"size"`
	// Line - номер исходной строки, начиная с 1.
	Line int `json:"line"`
}

// Observation превращает строку таблицы в наблюдение.
func (r Row) Observation() sizes.Observation {
	return sizes.Observation{Quantity: r.Quantity, Size: r.Size}
}

func (r Row) Record() []string {
	return []string{strconv.Itoa(r.Quantity), r.Marker, strconv.Itoa(r.Size)}
}

// Parse разбирает текст с табуляцией в качестве разделителя.
func Parse(text string) iter.Seq[sizes.Observation] {
	return Options{}.Parse(text)
}

// ParseRows возвращает все строки таблицы для текста с табуляцией.
func ParseRows(text string) []Row {
	return Options{}.ParseRows(text)
}

// Parse возвращает ленивую последовательность наблюдений в порядке строк,
// а внутри строки - в порядке размеров.
func (o Options) Parse(text string) iter.Seq[sizes.Observation] {
	return func(yield func(sizes.Observation) bool) {
		for row := range o.rows(text) {
			if !yield(row.Observation()) {
				return
			}
		}
	}
}

// ParseRows собирает строки таблицы в срез.
func (o Options) ParseRows(text string) []Row {
	var out []Row
	for row := range o.rows(text) {
		out = append(out, row)
	}
	return out
}

func (o Options) separator() string {
	if o.Separator == "" {
		return "\t"
	}
	return o.Separator
}

func (o Options) rows(text string) iter.Seq[Row] {
	sep := o.separator()
	return func(yield func(Row) bool) {
		for i, line := range strings.Split(text, "\n") {
			for _, row := range parseLine(line, sep, i+1) {
				if !yield(row) {
					return
				}
			}
		}
	}
}

// parseLine возвращает nil для некорректной строки целиком.
func parseLine(line, sep string, lineNo int) []Row {
	var fields []string
	for _, f := range strings.Split(line, sep) {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) != 3 || !strings.EqualFold(fields[1], Marker) {
		return nil
	}

	qty, err := strconv.Atoi(fields[0])
	if err != nil || qty < 0 {
		return nil
	}

	tokens := strings.Split(fields[2], "/")
	sz := make([]int, len(tokens))
	for i, tok := range tokens {
		if sz[i], err = strconv.Atoi(strings.TrimSpace(tok)); err != nil {
			return nil
		}
	}

	shares := Share(qty, len(sz))
	rows := make([]Row, 0, len(sz))
	for i, size := range sz {
		// доля недопустимого размера теряется и не перераспределяется
		if !sizes.Valid(size) {
			continue
		}
		rows = append(rows, Row{Quantity: shares[i], Marker: Marker, Size: size, Line: lineNo})
	}
	return rows
}

// Share делит количество на n долей. Остаток раздаётся по одной единице
// первым долям слева направо.
func Share(quantity, n int) []int {
	if n <= 0 {
		return nil
	}
	base, rem := quantity/n, quantity%n
	out := make([]int, n)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}
