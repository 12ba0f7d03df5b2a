package sheet

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ryabkov82/size-tally/internal/extractor"
)

func writeXLSX(t *testing.T, path string, cells map[string]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheetName := f.GetSheetName(0)
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue(sheetName, ref, v))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commande.xlsx")
	writeXLSX(t, path, map[string]interface{}{
		"A1": "Commande",
		"B5": "Taille",
		"A5": 8,
		"C5": 36,
		"A6": 14,
		"B6": "taille",
		"C6": 38,
	})

	tbl, err := Load(path)
	require.NoError(t, err)

	require.Len(t, tbl, 6)
	assert.Equal(t, "Commande", tbl.Cell(0, 0))
	assert.Equal(t, "", tbl.Cell(2, 0))
	assert.Equal(t, []string{"8", "Taille", "36"}, tbl[4])

	reg, err := extractor.Positional{}.Locate(tbl)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.StartRow)
	assert.Len(t, reg.Rows, 2)
}

func TestLoad_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"semicolon with BOM", "\xEF\xBB\xBFRéf;Quantité par taille\nA1;8 taille 36\n"},
		{"comma", "Réf,Quantité par taille\nA1,8 taille 36\n"},
		{"tab", "Réf\tQuantité par taille\nA1\t8 taille 36\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			tbl, err := Load(path)
			require.NoError(t, err)
			require.Len(t, tbl, 2)
			assert.Equal(t, "Réf", tbl.Cell(0, 0))
			assert.Equal(t, "8 taille 36", tbl.Cell(1, 1))
		})
	}
}

func TestRead_CSVRaggedRows(t *testing.T) {
	tbl, err := Read(strings.NewReader("a;b;c\n1\n2;taille;3\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, extractor.Table{{"a", "b", "c"}, {"1"}, {"2", "taille", "3"}}, tbl)
}

const odsContent = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
  xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
 <office:body><office:spreadsheet>
  <table:table table:name="Feuille1">
   <table:table-row>
    <table:table-cell office:value-type="string"><text:p>Qté</text:p></table:table-cell>
    <table:table-cell office:value-type="string"><text:p>Quantité<text:s text:c="1"/>par taille</text:p></table:table-cell>
    <table:table-cell table:number-columns-repeated="1022"/>
   </table:table-row>
   <table:table-row table:number-rows-repeated="2"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>
   <table:table-row>
    <table:table-cell office:value-type="float" office:value="8"><text:p>8,00</text:p></table:table-cell>
    <table:table-cell office:value-type="string"><text:p>taille</text:p></table:table-cell>
    <table:table-cell office:value-type="float" office:value="36"><text:p>36</text:p></table:table-cell>
   </table:table-row>
   <table:table-row table:number-rows-repeated="2">
    <table:table-cell table:number-columns-repeated="2"/>
    <table:table-cell office:value-type="float" office:value="1"><text:p>1</text:p></table:table-cell>
   </table:table-row>
   <table:table-row table:number-rows-repeated="1048570"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>
  </table:table>
  <table:table table:name="Feuille2">
   <table:table-row><table:table-cell office:value-type="string"><text:p>ignored</text:p></table:table-cell></table:table-row>
  </table:table>
 </office:spreadsheet></office:body>
</office:document-content>`

func buildODS(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("mimetype")
	require.NoError(t, err)
	_, err = w.Write([]byte("application/vnd.oasis.opendocument.spreadsheet"))
	require.NoError(t, err)
	w, err = zw.Create("content.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRead_ODS(t *testing.T) {
	tbl, err := Read(bytes.NewReader(buildODS(t, odsContent)), FormatODS)
	require.NoError(t, err)

	assert.Equal(t, extractor.Table{
		{"Qté", "Quantité par taille"},
		nil,
		nil,
		{"8", "taille", "36"},
		{"", "", "1"},
		{"", "", "1"},
	}, tbl)
}

func TestRead_ODSWithoutContent(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())

	_, err := Read(bytes.NewReader(buf.Bytes()), FormatODS)
	assert.Error(t, err)
}

func TestLoad_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	f, err := Detect("Report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = Detect("a.ods")
	require.NoError(t, err)
	assert.Equal(t, FormatODS, f)

	assert.False(t, Supported("a.xls"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	for _, name := range []string{"b.xlsx", "a.csv", "notes.txt", "~$b.xlsx", filepath.Join("sub", "c.ods")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	explicit := filepath.Join(dir, "notes.txt")

	files, err := Discover([]string{dir, explicit, filepath.Join(dir, "a.csv")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(sub, "c.ods"),
		explicit,
	}, files)

}

func TestDiscover_KeepsMissingPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte("8;taille;36\n"), 0644))
	absent := filepath.Join(dir, "absent.csv")

	files, err := Discover([]string{good, absent})
	require.NoError(t, err)
	assert.Equal(t, []string{good, absent}, files)

	_, err = Load(absent)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
