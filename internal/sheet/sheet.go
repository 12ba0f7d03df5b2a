// Package sheet читает файлы электронных таблиц в extractor.Table.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryabkov82/size-tally/internal/extractor"
)

var (
	ErrUnsupportedFormat = errors.New("неподдерживаемый формат файла")
	ErrNoSheets          = errors.New("в файле нет листов")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatODS  Format = "ods"
)

var extensions = map[string]Format{
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".csv":  FormatCSV,
	".ods":  FormatODS,
}

func Detect(path string) (Format, error) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	return f, nil
}

// Supported сообщает, умеет ли пакет читать файл с таким расширением.
func Supported(path string) bool {
	_, err := Detect(path)
	return err == nil
}

// Load читает первый лист файла.
func Load(path string) (extractor.Table, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return tbl, nil
}

// Read читает таблицу из потока заданного формата.
func Read(r io.Reader, format Format) (extractor.Table, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatCSV:
		return readCSV(r)
	case FormatODS:
		return readODS(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}
