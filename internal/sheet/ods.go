package sheet

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ryabkov82/size-tally/internal/extractor"
)

const (
	nsTable  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsOffice = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsText   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

// maxRepeat ограничивает размножение непустых повторяющихся ячеек и строк.
const maxRepeat = 1 << 14

func readODS(r io.Reader) (extractor.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия ODS: %w", err)
	}

	for _, zf := range zr.File {
		if zf.Name != "content.xml" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия content.xml: %w", err)
		}
		defer rc.Close()
		return parseODSContent(rc)
	}
	return nil, fmt.Errorf("в ODS нет content.xml")
}

// odsBuilder собирает таблицу, не раскрывая хвостовые пустые повторы,
// которыми LibreOffice добивает лист до 1024 колонок и 1048576 строк.
type odsBuilder struct {
	tbl         extractor.Table
	row         []string
	pendingCols int
	pendingRows int
	rowRepeat   int
}

func (b *odsBuilder) startRow(repeat int) {
	b.row = nil
	b.pendingCols = 0
	b.rowRepeat = repeat
}

func (b *odsBuilder) addCell(value string, repeat int) {
	if value == "" {
		b.pendingCols += repeat
		return
	}
	for ; b.pendingCols > 0; b.pendingCols-- {
		b.row = append(b.row, "")
	}
	for i := 0; i < min(repeat, maxRepeat); i++ {
		b.row = append(b.row, value)
	}
}

func (b *odsBuilder) endRow() {
	if len(b.row) == 0 {
		b.pendingRows += b.rowRepeat
		return
	}
	for ; b.pendingRows > 0; b.pendingRows-- {
		b.tbl = append(b.tbl, nil)
	}
	for i := 0; i < min(b.rowRepeat, maxRepeat); i++ {
		b.tbl = append(b.tbl, append([]string(nil), b.row...))
	}
}

func parseODSContent(r io.Reader) (extractor.Table, error) {
	dec := xml.NewDecoder(r)

	var (
		b        odsBuilder
		inTable  bool
		inCell   bool
		inPara   bool
		paras    int
		text     strings.Builder
		value    string
		repeat   int
		hasValue bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == nsTable && t.Name.Local == "table":
				if inTable {
					// вложенные таблицы не поддерживаются
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				inTable = true
			case !inTable:
				// всё до первой таблицы пропускаем
			case t.Name.Space == nsTable && t.Name.Local == "table-row":
				b.startRow(repeatAttr(t, "number-rows-repeated"))
			case t.Name.Space == nsTable && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell"):
				inCell = true
				paras = 0
				text.Reset()
				repeat = repeatAttr(t, "number-columns-repeated")
				value, hasValue = cellValue(t)
			case inCell && t.Name.Space == nsText && t.Name.Local == "p":
				if paras > 0 {
					text.WriteByte('\n')
				}
				paras++
				inPara = true
			case inCell && t.Name.Space == nsText && t.Name.Local == "s":
				text.WriteString(strings.Repeat(" ", repeatAttrNS(t, nsText, "c")))
			case inCell && t.Name.Space == nsText && t.Name.Local == "tab":
				text.WriteByte('\t')
			}
		case xml.CharData:
			if inPara {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space == nsText && t.Name.Local == "p" {
				inPara = false
			}
			if !inTable || t.Name.Space != nsTable {
				continue
			}
			switch t.Name.Local {
			case "table-cell", "covered-table-cell":
				v := text.String()
				if hasValue {
					v = value
				}
				b.addCell(v, repeat)
				inCell = false
			case "table-row":
				b.endRow()
			case "table":
				return b.tbl, nil
			}
		}
	}

	if !inTable {
		return nil, ErrNoSheets
	}
	return b.tbl, nil
}

// cellValue возвращает office:value для числовых ячеек.
func cellValue(t xml.StartElement) (string, bool) {
	var typ, val string
	for _, a := range t.Attr {
		if a.Name.Space != nsOffice {
			continue
		}
		switch a.Name.Local {
		case "value-type":
			typ = a.Value
		case "value":
			val = a.Value
		}
	}
	switch typ {
	case "float", "percentage", "currency":
		return val, val != ""
	}
	return "", false
}

func repeatAttr(t xml.StartElement, local string) int {
	return repeatAttrNS(t, nsTable, local)
}

func repeatAttrNS(t xml.StartElement, space, local string) int {
	for _, a := range t.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			if n, err := strconv.Atoi(a.Value); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}
