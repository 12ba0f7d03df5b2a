package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/size-tally/internal/extractor"
)

func readXLSX(r io.Reader) (extractor.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия книги: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.Rows(sheetList[0])
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк листа %s: %w", sheetList[0], err)
	}
	defer rows.Close()

	// пустые строки в середине листа приходят пустыми срезами,
	// поэтому индексы строк совпадают с номерами строк листа
	var tbl extractor.Table
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки %d: %w", len(tbl)+1, err)
		}
		tbl = append(tbl, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("ошибка чтения листа %s: %w", sheetList[0], err)
	}
	return tbl, nil
}
