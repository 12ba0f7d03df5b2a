// Package tally связывает разбор текста, чтение файлов и агрегацию
// в пакетную обработку.
package tally

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ryabkov82/size-tally/internal/extractor"
	"github.com/ryabkov82/size-tally/internal/sheet"
	"github.com/ryabkov82/size-tally/internal/sizes"
	"github.com/ryabkov82/size-tally/internal/textline"
)

type LoadFunc func(path string) (extractor.Table, error)

// Options настраивает Tally. Нулевые поля заменяются значениями по умолчанию.
type Options struct {
	Buckets   sizes.BucketSet
	Extractor extractor.Extractor
	Separator string
	Workers   int
	Load      LoadFunc
	Logger    *slog.Logger
}

// Tally - пакетный обработчик. Не хранит состояния между вызовами.
type Tally struct {
	buckets   sizes.BucketSet
	extractor extractor.Extractor
	text      textline.Options
	workers   int
	load      LoadFunc
	log       *slog.Logger
}

func New(opts Options) *Tally {
	t := &Tally{
		buckets:   opts.Buckets,
		extractor: opts.Extractor,
		text:      textline.Options{Separator: opts.Separator},
		workers:   opts.Workers,
		load:      opts.Load,
		log:       opts.Logger,
	}
	if t.buckets == nil {
		t.buckets = sizes.Grouped.Clone()
	}
	if t.extractor == nil {
		t.extractor = extractor.Auto{}
	}
	if t.workers <= 0 {
		t.workers = runtime.NumCPU()
	}
	if t.load == nil {
		t.load = sheet.Load
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	return t
}

func (t *Tally) Buckets() sizes.BucketSet {
	return t.buckets
}

type TextResult struct {
	Rows   []textline.Row `json:"rows"`
	Totals sizes.Totals   `json:"totals"`
}

// Text разбирает текст и считает итоги.
func (t *Tally) Text(text string) TextResult {
	rows := t.text.ParseRows(text)
	totals := t.buckets.Aggregate(func(yield func(sizes.Observation) bool) {
		for _, r := range rows {
			if !yield(r.Observation()) {
				return
			}
		}
	})
	t.log.Info("Text parsed",
		slog.Int("rows", len(rows)),
		slog.Int("total", totals.Total),
		slog.Int("dropped", totals.Dropped))
	return TextResult{Rows: rows, Totals: totals}
}

// FileResult - результат обработки одного файла. При Err != nil
// остальные поля, кроме Path, пустые.
type FileResult struct {
	Path         string
	Observations int
	Totals       sizes.Totals
	Err          error
}

func (r FileResult) Name() string {
	return filepath.Base(r.Path)
}

func (t *Tally) File(path string) FileResult {
	res := FileResult{Path: path}

	tbl, err := t.load(path)
	if err != nil {
		res.Err = err
		return res
	}
	obs, err := t.extractor.Extract(tbl)
	if err != nil {
		res.Err = err
		return res
	}

	res.Observations = len(obs)
	res.Totals = t.buckets.AggregateSlice(obs)
	return res
}

// Files обрабатывает файлы параллельно, не более Workers одновременно.
// Ошибка одного файла не прерывает обработку остальных. Порядок
// результатов совпадает с порядком путей.
func (t *Tally) Files(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	// ошибки файлов хранятся в results, горутины всегда возвращают nil,
	// поэтому отмена берётся из ctx вызывающего, а не из группы
	var g errgroup.Group
	g.SetLimit(t.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			start := time.Now()
			results[i] = t.File(path)
			t.logResult(results[i], time.Since(start))
			return nil
		})
	}
	g.Wait()

	return results
}

func (t *Tally) logResult(res FileResult, elapsed time.Duration) {
	if res.Err != nil {
		t.log.Warn("File skipped",
			slog.String("file", res.Path),
			slog.String("error", res.Err.Error()))
		return
	}
	t.log.Info("File processed",
		slog.String("file", res.Path),
		slog.Int("observations", res.Observations),
		slog.Int("total", res.Totals.Total),
		slog.Int("dropped", res.Totals.Dropped),
		slog.Duration("elapsed", elapsed))
}

// Combine складывает итоги успешно обработанных файлов.
func (t *Tally) Combine(results []FileResult) sizes.Totals {
	acc := t.buckets.Empty()
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		acc = acc.Merge(r.Totals)
	}
	return acc
}
