package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov82/size-tally/internal/sizes"
)

// shiftedLayout - лист с "шапкой" произвольной формы; данные начинаются
// с 5-й строки (индекс 4), маркер в колонке B.
func shiftedLayout() Table {
	return Table{
		{"Commande 1234", "", ""},
		{"", "Client: Dupont", ""},
		{"Taille totale", "", ""},
		{"Qté", "Libellé", "Taille"},
		{"8", "Taille", "36"},
		{"14", "taille", "38"},
		{"", "taille", "40"},
		{"3", "TAILLE", "abc"},
		{"5", "taille", "37"},
		{"7.0", "taille", "50.0"},
	}
}

func TestPositional_Locate(t *testing.T) {
	reg, err := Positional{}.Locate(shiftedLayout())
	require.NoError(t, err)

	assert.Equal(t, 4, reg.StartRow)
	assert.Equal(t, 0, reg.QuantityCol)
	assert.Equal(t, 1, reg.MarkerCol)
	assert.Equal(t, 2, reg.SizeCol)
	// строка с пустым количеством выброшена
	assert.Len(t, reg.Rows, 5)
	assert.Equal(t, [3]string{"8", "Taille", "36"}, reg.Rows[0])
}

func TestPositional_Extract(t *testing.T) {
	obs, err := Positional{}.Extract(shiftedLayout())
	require.NoError(t, err)

	// "abc" пропущена; 37 остаётся наблюдением и отбрасывается агрегатором
	assert.Equal(t, []sizes.Observation{
		{Quantity: 8, Size: 36},
		{Quantity: 14, Size: 38},
		{Quantity: 5, Size: 37},
		{Quantity: 7, Size: 50},
	}, obs)

	totals := sizes.Grouped.AggregateSlice(obs)
	assert.Equal(t, 29, totals.Total)
	assert.Equal(t, 5, totals.Dropped)
}

func TestPositional_FirstQualifyingCellWins(t *testing.T) {
	tbl := Table{
		{"", "", "", "", ""},
		{"x", "taille", "1", "", ""},         // слева не число
		{"", "", "4", "taille", "44"},        // первая подходящая ячейка
		{"2", "taille", "36", "taille", "99"}, // строка уже внутри области C-E
		{"", "", "6", "taille", "46"},
	}

	reg, err := Positional{}.Locate(tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.StartRow)
	assert.Equal(t, 3, reg.MarkerCol)

	obs := reg.Observations()
	assert.Equal(t, []sizes.Observation{
		{Quantity: 4, Size: 44},
		{Quantity: 36, Size: 99},
		{Quantity: 6, Size: 46},
	}, obs)
}

func TestPositional_RowMajorScanOrder(t *testing.T) {
	tbl := Table{
		{"", "", "", "1", "taille", "34"},
		{"2", "taille", "36", "", "", ""},
	}

	reg, err := Positional{}.Locate(tbl)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.StartRow)
	assert.Equal(t, 4, reg.MarkerCol)
}

func TestPositional_NotLocated(t *testing.T) {
	tests := []struct {
		name string
		tbl  Table
	}{
		{"empty", Table{}},
		{"no marker", Table{{"1", "size", "36"}}},
		{"marker in first column", Table{{"taille", "36"}}},
		{"marker in last column", Table{{"8", "taille"}}},
		{"non-numeric neighbours", Table{{"huit", "taille", "36"}}},
		{"negative neighbour", Table{{"-8", "taille", "36"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Positional{}.Extract(tt.tbl)
			assert.ErrorIs(t, err, ErrColumnsNotLocated)
		})
	}
}

func TestNamed_Extract(t *testing.T) {
	tbl := Table{
		{"Réf", "Quantité par taille", "Commentaire"},
		{"A1", "8 taille 36", ""},
		{"A2", "14 Taille 38, 12 TAILLE 40 et 3taille41", ""},
		{"A3", "", ""},
		{"A4", "rien", ""},
		{"A5"},
	}

	obs, err := Named{}.Extract(tbl)
	require.NoError(t, err)

	assert.Equal(t, []sizes.Observation{
		{Quantity: 8, Size: 36},
		{Quantity: 14, Size: 38},
		{Quantity: 12, Size: 40},
		{Quantity: 3, Size: 41},
	}, obs)
}

func TestNamed_HeaderNormalisation(t *testing.T) {
	// "é" в разложенной форме и лишние пробелы
	tbl := Table{
		{" Quantite\u0301 par taille "},
		{"2 taille 50"},
	}

	obs, err := Named{}.Extract(tbl)
	require.NoError(t, err)
	assert.Equal(t, []sizes.Observation{{Quantity: 2, Size: 50}}, obs)
}

func TestNamed_CustomColumn(t *testing.T) {
	tbl := Table{{"Tailles"}, {"4 taille 62"}}

	obs, err := Named{Column: "Tailles"}.Extract(tbl)
	require.NoError(t, err)
	assert.Len(t, obs, 1)

	_, err = Named{}.Extract(tbl)
	assert.ErrorIs(t, err, ErrColumnsNotLocated)
}

func TestMatchCell(t *testing.T) {
	assert.Nil(t, MatchCell("   "))
	assert.Empty(t, MatchCell("taille 36"))
	assert.Equal(t, []sizes.Observation{{Quantity: 10, Size: 44}}, MatchCell("Lot: 10  taille  44 (bleu)"))
}

func TestMatchCell_NonBreakingSpaces(t *testing.T) {
	assert.Equal(t, []sizes.Observation{{Quantity: 8, Size: 36}}, MatchCell("8\u00a0taille\u00a036"))
	assert.Equal(t, []sizes.Observation{{Quantity: 2, Size: 40}}, MatchCell("2\u202ftaille 40"))
}

func TestPositional_ExponentIsNotNumeric(t *testing.T) {
	_, err := Positional{}.Locate(Table{{"1e1", "taille", "36"}})
	assert.ErrorIs(t, err, ErrColumnsNotLocated)
}

func TestAuto(t *testing.T) {
	named := Table{{"Quantité par taille"}, {"5 taille 36"}}
	obs, err := Auto{}.Extract(named)
	require.NoError(t, err)
	assert.Equal(t, []sizes.Observation{{Quantity: 5, Size: 36}}, obs)

	obs, err = Auto{}.Extract(shiftedLayout())
	require.NoError(t, err)
	assert.Len(t, obs, 4)

	_, err = Auto{}.Extract(Table{{"a", "b"}, {"1", "2"}})
	assert.ErrorIs(t, err, ErrColumnsNotLocated)
}

func TestStrategy(t *testing.T) {
	ex, err := Strategy(ModeNamed, "")
	require.NoError(t, err)
	assert.Equal(t, Named{Column: DefaultColumn}, ex)

	ex, err = Strategy(ModePositional, "")
	require.NoError(t, err)
	assert.IsType(t, Positional{}, ex)

	ex, err = Strategy("", "Col")
	require.NoError(t, err)
	assert.Equal(t, Auto{Named: Named{Column: "Col"}}, ex)

	_, err = Strategy("schema", "")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"38", 38, true},
		{" 38 ", 38, true},
		{"38.0", 38, true},
		{"38.5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"38.00", 38, true},
		{"-4.0", -4, true},
		{"38.", 0, false},
		{"1e1", 0, false},
		{"1e3", 0, false},
		{"1.5e1", 0, false},
		{"0x10", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTable_Cell(t *testing.T) {
	tbl := Table{{"a"}, {"b", "c"}}
	assert.Equal(t, "c", tbl.Cell(1, 1))
	assert.Equal(t, "", tbl.Cell(0, 1))
	assert.Equal(t, "", tbl.Cell(5, 0))
	assert.Equal(t, "", tbl.Cell(0, -1))
	assert.False(t, tbl.Empty())
	assert.True(t, Table{{" ", ""}}.Empty())
}
