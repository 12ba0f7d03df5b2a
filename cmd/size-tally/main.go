package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ryabkov82/size-tally/internal/config"
	"github.com/ryabkov82/size-tally/internal/logging"
	"github.com/ryabkov82/size-tally/internal/sheet"
	"github.com/ryabkov82/size-tally/internal/sizes"
	"github.com/ryabkov82/size-tally/internal/tally"
)

type TextOutput struct {
	Rows    int           `json:"rows"`
	Totals  []sizes.Entry `json:"totals"`
	Dropped int           `json:"dropped,omitempty"`
}

type FileOutput struct {
	File         string        `json:"file"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Observations int           `json:"observations,omitempty"`
	Totals       []sizes.Entry `json:"totals,omitempty"`
	Dropped      int           `json:"dropped,omitempty"`
}

type Output struct {
	Success     bool          `json:"success"`
	Text        *TextOutput   `json:"text,omitempty"`
	Files       []FileOutput  `json:"files,omitempty"`
	Combined    []sizes.Entry `json:"combined,omitempty"`
	OutputFiles []string      `json:"output_files,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    string        `json:"duration"`
}

func main() {

	start := time.Now()

	cfg, err := config.ParseFlags()
	if err != nil {
		emitJSON(Output{
			Success:  false,
			Error:    fmt.Sprintf("Ошибка конфигурации: %v", err),
			Duration: time.Since(start).String(),
		})
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	out, err := run(context.Background(), cfg, os.Stdin, logger)
	out.Duration = time.Since(start).String()
	if err != nil {
		out.Success = false
		out.Error = fmt.Sprintf("Ошибка обработки: %v", err)
		emitJSON(out)
		os.Exit(1)
	}

	emitJSON(out)
}

// run выполняет разбор текста и файлов. Ошибки отдельных файлов попадают
// в Output.Files и не делают весь запуск неуспешным.
func run(ctx context.Context, cfg *config.Config, stdin io.Reader, logger *slog.Logger) (Output, error) {
	buckets, err := cfg.BucketSet()
	if err != nil {
		return Output{}, err
	}
	ex, err := cfg.Extractor()
	if err != nil {
		return Output{}, err
	}

	t := tally.New(tally.Options{
		Buckets:   buckets,
		Extractor: ex,
		Separator: cfg.Separator,
		Workers:   cfg.Workers,
		Logger:    logger,
	})

	var (
		out      Output
		reports  []tally.Report
		combined = buckets.Empty()
	)

	var textRes *tally.TextResult
	if cfg.TextPath != "" {
		text, err := readText(cfg.TextPath, stdin)
		if err != nil {
			return out, err
		}
		res := t.Text(text)
		textRes = &res
		combined = combined.Merge(res.Totals)
		reports = append(reports, tally.Report{Name: "Texte", Totals: res.Totals})
		out.Text = &TextOutput{Rows: len(res.Rows), Totals: res.Totals.Rows(), Dropped: res.Totals.Dropped}
	}

	if len(cfg.Inputs) > 0 {
		files, err := sheet.Discover(cfg.Inputs)
		if err != nil {
			return out, err
		}
		if len(files) == 0 {
			logger.Warn("No spreadsheet files found", slog.Any("inputs", cfg.Inputs))
		}

		results := t.Files(ctx, files)
		for _, r := range results {
			fo := FileOutput{File: r.Path, Success: r.Err == nil}
			if r.Err != nil {
				fo.Error = r.Err.Error()
			} else {
				fo.Observations = r.Observations
				fo.Totals = r.Totals.Rows()
				fo.Dropped = r.Totals.Dropped
				reports = append(reports, tally.Report{Name: r.Name(), Totals: r.Totals})
			}
			out.Files = append(out.Files, fo)
		}
		combined = combined.Merge(t.Combine(results))
	}

	out.Combined = combined.Rows()

	written, err := export(cfg, combined, textRes, reports)
	out.OutputFiles = written
	if err != nil {
		return out, err
	}

	out.Success = true
	return out, nil
}

func readText(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения текста: %w", err)
	}
	return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), nil
}

func export(cfg *config.Config, combined sizes.Totals, textRes *tally.TextResult, reports []tally.Report) ([]string, error) {
	var written []string

	if cfg.OutCSV != "" {
		if err := writeFile(cfg.OutCSV, func(w io.Writer) error { return tally.WriteCSV(w, combined) }); err != nil {
			return written, err
		}
		written = append(written, cfg.OutCSV)
	}

	if cfg.OutGrid != "" && textRes != nil {
		if err := writeFile(cfg.OutGrid, func(w io.Writer) error { return tally.WriteGridCSV(w, textRes.Rows) }); err != nil {
			return written, err
		}
		written = append(written, cfg.OutGrid)
	}

	if cfg.OutXLSX != "" {
		all := append([]tally.Report{{Name: sizes.TotalLabel, Totals: combined}}, reports...)
		if err := os.MkdirAll(filepath.Dir(cfg.OutXLSX), 0755); err != nil {
			return written, fmt.Errorf("ошибка создания каталога: %w", err)
		}
		if err := tally.WriteXLSX(cfg.OutXLSX, all); err != nil {
			return written, err
		}
		written = append(written, cfg.OutXLSX)
	}

	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	return f.Close()
}

func emitJSON(out Output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
}
