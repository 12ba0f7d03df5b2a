package sizes

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// TotalLabel - метка итоговой строки, добавляемой после всех корзин.
const TotalLabel = "Total"

var (
	ErrUnknownPreset    = errors.New("неизвестный набор корзин")
	ErrInvalidBucketSet = errors.New("некорректный набор корзин")
)

type Bucket struct {
	Label string `yaml:"label"`
	Sizes []int  `yaml:"sizes"`
}

// Contains - предикат принадлежности размера корзине.
func (b Bucket) Contains(size int) bool {
	return slices.Contains(b.Sizes, size)
}

// BucketSet - упорядоченный список корзин. Наблюдение попадает в первую
// подходящую корзину по порядку списка.
type BucketSet []Bucket

// Предустановленные наборы корзин.
var (
	// Grouped объединяет 34-48 в одну корзину.
	Grouped = BucketSet{
		{Label: "34-48", Sizes: []int{34, 36, 38, 40, 42, 44, 46, 48}},
		{Label: "50-52", Sizes: []int{50, 52}},
		{Label: "54-56", Sizes: []int{54, 56}},
		{Label: "58-60", Sizes: []int{58, 60}},
		{Label: "62-64", Sizes: []int{62, 64}},
	}

	// Paired объединяет 34/36 с 46/48 и 38/40 с 42/44.
	Paired = BucketSet{
		{Label: "34-36/46-48", Sizes: []int{34, 36, 46, 48}},
		{Label: "38-40/42-44", Sizes: []int{38, 40, 42, 44}},
		{Label: "50-52", Sizes: []int{50, 52}},
		{Label: "54-56", Sizes: []int{54, 56}},
		{Label: "58-60", Sizes: []int{58, 60}},
		{Label: "62-64", Sizes: []int{62, 64}},
	}
)

var presets = map[string]BucketSet{
	"grouped": Grouped,
	"paired":  Paired,
}

// Preset возвращает копию предустановленного набора по имени.
func Preset(name string) (BucketSet, error) {
	set, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return set.Clone(), nil
}

// PresetNames возвращает имена предустановленных наборов в алфавитном порядке.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s BucketSet) Clone() BucketSet {
	out := make(BucketSet, len(s))
	for i, b := range s {
		out[i] = Bucket{Label: b.Label, Sizes: slices.Clone(b.Sizes)}
	}
	return out
}

// Validate проверяет метки и размеры. Пересечение корзин допускается.
func (s BucketSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: пустой набор", ErrInvalidBucketSet)
	}
	seen := make(map[string]struct{}, len(s))
	for i, b := range s {
		switch {
		case b.Label == "":
			return fmt.Errorf("%w: корзина %d без метки", ErrInvalidBucketSet, i)
		case b.Label == TotalLabel:
			return fmt.Errorf("%w: метка %q зарезервирована", ErrInvalidBucketSet, TotalLabel)
		case len(b.Sizes) == 0:
			return fmt.Errorf("%w: корзина %q без размеров", ErrInvalidBucketSet, b.Label)
		}
		if _, dup := seen[b.Label]; dup {
			return fmt.Errorf("%w: повторяется метка %q", ErrInvalidBucketSet, b.Label)
		}
		seen[b.Label] = struct{}{}
		for _, size := range b.Sizes {
			if !Valid(size) {
				return fmt.Errorf("%w: размер %d в корзине %q", ErrInvalidBucketSet, size, b.Label)
			}
		}
	}
	return nil
}

// Match возвращает индекс первой корзины, содержащей размер, или -1.
func (s BucketSet) Match(size int) int {
	for i, b := range s {
		if b.Contains(size) {
			return i
		}
	}
	return -1
}

type Entry struct {
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

type Totals struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	// Dropped - количество, не попавшее ни в одну корзину.
	Dropped int `json:"dropped"`
}

// Aggregate суммирует количества по корзинам. Total равен сумме корзин,
// а не сумме исходных наблюдений.
func (s BucketSet) Aggregate(seq iter.Seq[Observation]) Totals {
	t := s.Empty()
	for obs := range seq {
		i := s.Match(obs.Size)
		if i < 0 {
			t.Dropped += obs.Quantity
			continue
		}
		t.Entries[i].Quantity += obs.Quantity
		t.Total += obs.Quantity
	}
	return t
}

func (s BucketSet) AggregateSlice(obs []Observation) Totals {
	return s.Aggregate(slices.Values(obs))
}

func (s BucketSet) Empty() Totals {
	t := Totals{Entries: make([]Entry, len(s))}
	for i, b := range s {
		t.Entries[i].Label = b.Label
	}
	return t
}

// Rows возвращает корзины в порядке конфигурации и завершающую строку "Total".
func (t Totals) Rows() []Entry {
	rows := make([]Entry, 0, len(t.Entries)+1)
	rows = append(rows, t.Entries...)
	return append(rows, Entry{Label: TotalLabel, Quantity: t.Total})
}

func (t Totals) Get(label string) (int, bool) {
	for _, e := range t.Entries {
		if e.Label == label {
			return e.Quantity, true
		}
	}
	return 0, false
}

// Merge складывает итоги, посчитанные одним и тем же набором корзин.
// Корзины other, отсутствующие в t, добавляются в конец.
func (t Totals) Merge(other Totals) Totals {
	out := Totals{
		Entries: slices.Clone(t.Entries),
		Total:   t.Total,
		Dropped: t.Dropped + other.Dropped,
	}
	for _, e := range other.Entries {
		idx := slices.IndexFunc(out.Entries, func(x Entry) bool { return x.Label == e.Label })
		if idx < 0 {
			out.Entries = append(out.Entries, e)
		} else {
			out.Entries[idx].Quantity += e.Quantity
		}
		out.Total += e.Quantity
	}
	return out
}
