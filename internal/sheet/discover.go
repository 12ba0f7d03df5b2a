package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Discover раскрывает каталоги в списки поддерживаемых файлов.
// Явно указанные файлы сохраняются как есть, даже с неизвестным
// расширением или недоступные: ошибка будет отнесена к конкретному файлу
// при его чтении. Файлы внутри одного каталога сортируются, повторы удаляются.
func Discover(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil || !info.IsDir() {
			add(in)
			continue
		}

		var found []string
		err = filepath.Walk(in, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !Supported(path) {
				return nil
			}
			// временные файлы Excel/LibreOffice
			if base := filepath.Base(path); len(base) > 1 && (base[:2] == "~$" || base[:2] == ".~") {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка при обходе папки: %w", err)
		}
		slices.Sort(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
