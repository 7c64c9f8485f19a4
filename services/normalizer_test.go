package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"powerbi-scraper/models"
	"powerbi-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func newFixedNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n := NewNormalizer(newTestLogger())
	n.now = func() time.Time {
		return time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	}
	return n
}

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestProcessIncrementoEndToEnd(t *testing.T) {
	dir := t.TempDir()

	// Two segment exports that disagree on month columns and key naming.
	writeXLSX(t, filepath.Join(dir, "AGUA - NORTE.xlsx"), [][]any{
		{"MUNICIPIO", "2025-01-01", "2025-03-01"},
		{"MUNICIPIO", "2025-01-01", "2025-03-01"},
		{"Santos", "10", "5"},
		{"TOTAL", "10", "5"},
	})
	writeXLSX(t, filepath.Join(dir, "AGUA - SUL.xlsx"), [][]any{
		{"Mês_Ano", "2024-12-01", "2025-01-01"},
		{"Pelotas", "7", "8"},
		{"Filtros aplicados: DIRETORIA REGIONal", "", ""},
	})

	n := newFixedNormalizer(t)
	ds, err := n.ProcessIncremento(dir, models.CategoryAgua)
	require.NoError(t, err)

	wantColumns := []string{
		"NOME ARQUIVO", "SUP", "TIPO", "MUNICIPIO",
		"dez/2024", "jan/2025", "mar/2025",
		"TOTAL (Jan - Atual 2025)", "DATA DE EXTRAÇÃO", "ORIGEM DE DADOS",
	}
	require.Equal(t, wantColumns, ds.Columns)

	// Sentinel rows (repeated header, TOTAL, filter banner) are gone.
	require.Len(t, ds.Rows, 2)

	byMunicipio := map[string]int{}
	for i := range ds.Rows {
		byMunicipio[ds.Value(i, "MUNICIPIO").(string)] = i
	}
	require.Contains(t, byMunicipio, "Santos")
	require.Contains(t, byMunicipio, "Pelotas")

	santos := byMunicipio["Santos"]
	require.Equal(t, "SUP NORTE", ds.Value(santos, "SUP"))
	require.Equal(t, int64(0), ds.Value(santos, "dez/2024"))
	require.Equal(t, int64(10), ds.Value(santos, "jan/2025"))
	require.Equal(t, int64(5), ds.Value(santos, "mar/2025"))
	require.Equal(t, int64(15), ds.Value(santos, "TOTAL (Jan - Atual 2025)"))
	require.Equal(t, "ÁGUA", ds.Value(santos, "TIPO"))
	require.Equal(t, "Power BI - Incremento Água", ds.Value(santos, "ORIGEM DE DADOS"))

	pelotas := byMunicipio["Pelotas"]
	require.Equal(t, "SUP SUL", ds.Value(pelotas, "SUP"))
	require.Equal(t, int64(7), ds.Value(pelotas, "dez/2024"))
	require.Equal(t, int64(8), ds.Value(pelotas, "jan/2025"))
	// Only current-year months count toward the total.
	require.Equal(t, int64(8), ds.Value(pelotas, "TOTAL (Jan - Atual 2025)"))
}

func TestProcessIncrementoMissingKeyColumn(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "AGUA - NORTE.xlsx"), [][]any{
		{"CIDADE", "2025-01-01"},
		{"Santos", "10"},
	})

	n := newFixedNormalizer(t)
	ds, err := n.ProcessIncremento(dir, models.CategoryAgua)
	require.NoError(t, err)
	require.True(t, ds.Empty())
}

func TestProcessIncrementoEmptyDir(t *testing.T) {
	n := newFixedNormalizer(t)
	ds, err := n.ProcessIncremento(filepath.Join(t.TempDir(), "nao_existe"), models.CategoryEsgoto)
	require.NoError(t, err)
	require.True(t, ds.Empty())
}

func TestProcessIncrementoUnmatchedFilenameFiltered(t *testing.T) {
	dir := t.TempDir()
	// Filename does not carry the category prefix, so no segment can be
	// derived and the rows are rejected.
	writeXLSX(t, filepath.Join(dir, "relatorio.xlsx"), [][]any{
		{"MUNICIPIO", "2025-01-01"},
		{"Santos", "10"},
	})

	n := newFixedNormalizer(t)
	ds, err := n.ProcessIncremento(dir, models.CategoryAgua)
	require.NoError(t, err)
	require.True(t, ds.Empty())
}

func TestProcessNovasLigacoes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DADOS PAINEL 1.xlsx")
	writeXLSX(t, path, [][]any{
		{"SUP", "Ano e Mes", "TIPO LIGACAO", "QTD"},
		{"SUP NORTE", "202501", "NLA", "42"},
		{"SUP SUL", "202412", "NLE", "7"},
	})

	n := newFixedNormalizer(t)
	ds, err := n.ProcessNovasLigacoes(path, models.CategoryNovasLigacoes)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	require.True(t, ds.HasColumn("TIPO_LIGACAO"))
	require.False(t, ds.HasColumn("TIPO LIGACAO"))
	require.Equal(t, "01/25", ds.Value(0, "Ano e Mes"))
	require.Equal(t, "12/24", ds.Value(1, "Ano e Mes"))
	require.Equal(t, "Power BI - Novas Ligações", ds.Value(0, "ORIGEM DE DADOS"))
}

func TestProcessNovasLigacoesMissingFile(t *testing.T) {
	n := newFixedNormalizer(t)
	ds, err := n.ProcessNovasLigacoes(filepath.Join(t.TempDir(), "nao_existe.xlsx"), models.CategoryNovasLigacoes)
	require.NoError(t, err)
	require.True(t, ds.Empty())
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		raw  any
		want int64
	}{
		{"10", 10},
		{" 7 ", 7},
		{"", 0},
		{"12.0", 12},
		{"3,0", 3},
		{"abc", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := coerceInt(tt.raw); got != tt.want {
			t.Errorf("coerceInt(%v) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}
