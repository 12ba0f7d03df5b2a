package tally

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/size-tally/internal/sizes"
	"github.com/ryabkov82/size-tally/internal/textline"
)

// Заголовки файла результатов.
const (
	HeaderRange = "Fourchette de tailles"
	HeaderCount = "Nombre d'articles"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV пишет итоги по корзинам и строку "Total". BOM нужен,
// чтобы Excel распознал UTF-8.
func WriteCSV(w io.Writer, totals sizes.Totals) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("ошибка записи BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderRange, HeaderCount}); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %w", err)
	}
	for _, e := range totals.Rows() {
		if err := cw.Write([]string{e.Label, strconv.Itoa(e.Quantity)}); err != nil {
			return fmt.Errorf("ошибка записи строки %s: %w", e.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGridCSV пишет разобранные строки текста в колонках
// Quantité / taille / Fourchette de taille.
func WriteGridCSV(w io.Writer, rows []textline.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(textline.GridHeader); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type Report struct {
	Name   string
	Totals sizes.Totals
}

// WriteXLSX сохраняет книгу, по листу на каждый отчёт.
func WriteXLSX(path string, reports []Report) error {
	if len(reports) == 0 {
		return fmt.Errorf("нет отчётов для записи")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("ошибка создания стиля: %v", err)
	}

	used := make(map[string]int)
	for i, rep := range reports {
		name := sheetName(rep.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("ошибка переименования листа: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("ошибка создания листа %s: %v", name, err)
		}
		if err := writeReportSheet(f, name, rep.Totals, headerStyle); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %v", err)
	}
	return nil
}

func writeReportSheet(f *excelize.File, name string, totals sizes.Totals, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("ошибка создания StreamWriter: %v", err)
	}
	if err := sw.SetColWidth(1, 1, 24); err != nil {
		return fmt.Errorf("ошибка установки ширины колонки: %v", err)
	}
	if err := sw.SetColWidth(2, 2, 18); err != nil {
		return fmt.Errorf("ошибка установки ширины колонки: %v", err)
	}

	header := []interface{}{
		excelize.Cell{Value: HeaderRange, StyleID: headerStyle},
		excelize.Cell{Value: HeaderCount, StyleID: headerStyle},
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("ошибка записи заголовков: %v", err)
	}

	rows := totals.Rows()
	for i, e := range rows {
		styleID := 0
		if i == len(rows)-1 {
			styleID = headerStyle
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			excelize.Cell{Value: e.Label, StyleID: styleID},
			excelize.Cell{Value: e.Quantity, StyleID: styleID},
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("ошибка записи строки: %v", err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("ошибка финального flush: %v", err)
	}
	return nil
}

// sheetName приводит имя к ограничениям Excel: не длиннее 31 символа,
// без []:*?/\ и уникальное в книге.
func sheetName(name string, used map[string]int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	name = truncate(name, 31)

	key := strings.ToLower(name)
	n := used[key]
	used[key] = n + 1
	if n == 0 {
		return name
	}
	// Excel сравнивает имена листов без учёта регистра
	for i := n + 1; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate := truncate(name, 31-len(suffix)) + suffix
		ck := strings.ToLower(candidate)
		if used[ck] > 0 {
			continue
		}
		used[ck] = 1
		used[key] = i
		return candidate
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit])
	}
	return s
}
