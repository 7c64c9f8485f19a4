package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"powerbi-scraper/models"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"MUNICIPIO", "municipio"},
		{"DATA DE EXTRAÇÃO", "data_de_extracao"},
		{"TOTAL (Jan - Atual 2025)", "total_jan_atual_2025"},
		{"Mês_Ano", "mes_ano"},
		{"jan/2025", "jan_2025"},
		{"Gráfico", "grafico"},
		{"  SUP  ", "sup"},
		{"a__b", "a_b"},
		{"ÁGUA", "agua"},
	}

	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.raw); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestInferSQLType(t *testing.T) {
	ds := models.NewDataset("ints", "floats", "times", "bools", "texts", "mixed")
	ds.Rows = [][]any{
		{int64(1), 1.5, time.Now(), true, "a", int64(1)},
		{int64(2), 2.5, time.Now(), false, "b", "x"},
	}

	tests := []struct {
		col  int
		want string
	}{
		{0, "BIGINT"},
		{1, "DOUBLE PRECISION"},
		{2, "TIMESTAMP"},
		{3, "BOOLEAN"},
		{4, "TEXT"},
		{5, "TEXT"},
	}

	for _, tt := range tests {
		if got := inferSQLType(ds, tt.col); got != tt.want {
			t.Errorf("inferSQLType(col %d) = %q; want %q", tt.col, got, tt.want)
		}
	}
}

func TestBuildLoadPlanAdditiveGrow(t *testing.T) {
	ds := models.NewDataset("municipio", "jan_2025", "fev_2025")
	ds.Rows = [][]any{{"Santos", int64(1), int64(2)}}

	plan, err := buildLoadPlan([]string{"id", "municipio", "jan_2025"}, ds)
	require.NoError(t, err)
	require.Len(t, plan.addColumns, 1)
	require.Equal(t, "fev_2025", plan.addColumns[0].name)
	require.Equal(t, "BIGINT", plan.addColumns[0].sqlType)
}

func TestBuildLoadPlanRejectsShrink(t *testing.T) {
	ds := models.NewDataset("municipio")
	ds.Rows = [][]any{{"Santos"}}

	_, err := buildLoadPlan([]string{"id", "municipio", "jan_2025"}, ds)
	require.Error(t, err)
	require.Contains(t, err.Error(), "jan_2025")
}

func TestBuildLoadPlanIgnoresSurrogateID(t *testing.T) {
	ds := models.NewDataset("municipio")
	ds.Rows = [][]any{{"Santos"}}

	plan, err := buildLoadPlan([]string{"id", "municipio"}, ds)
	require.NoError(t, err)
	require.Empty(t, plan.addColumns)
}

func TestPrepareForLoadSanitizesAndStamps(t *testing.T) {
	ds := models.NewDataset("MUNICIPIO", "DATA DE EXTRAÇÃO")
	ds.Rows = [][]any{{"Santos", "15/06/2025 10:30"}}

	out := prepareForLoad(ds)
	require.Equal(t, []string{"municipio", "data_de_extracao", uploadDateColumn}, out.Columns)
	require.IsType(t, time.Time{}, out.Rows[0][2])

	// The input dataset is untouched: columns keep their names and the rows
	// never grow the stamp cell.
	require.Equal(t, []string{"MUNICIPIO", "DATA DE EXTRAÇÃO"}, ds.Columns)
	require.Len(t, ds.Rows[0], 2)
}
