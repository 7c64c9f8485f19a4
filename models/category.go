package models

import (
	"path/filepath"
	"regexp"
)

// Category identifies one of the dashboard data categories handled by the
// pipeline. Each variant carries its own destination paths, remote table name
// and filename pattern, so no behavior is selected from free-text labels.
type Category int

const (
	// CategoryAgua is the water-increment table dashboard page.
	CategoryAgua Category = iota
	// CategoryEsgoto is the sewage-increment table dashboard page.
	CategoryEsgoto
	// CategoryNovasLigacoes is the new-connections (NLA/NLE) dashboard.
	CategoryNovasLigacoes
	// CategoryGraficos is the chart-based evolution dashboard, extracted
	// through the on-screen table view instead of a native export.
	CategoryGraficos
)

// IncrementoCategories are the categories normalized through the generic
// month-column reconciliation path.
var IncrementoCategories = []Category{CategoryAgua, CategoryEsgoto}

var (
	aguaPattern   = regexp.MustCompile(`(?i)AGUA\s*[-–]?\s*(.*?)\.xlsx$`)
	esgotoPattern = regexp.MustCompile(`(?i)ESGOTO\s*[-–]?\s*(.*?)\.xlsx$`)
)

// Abbrev returns the short tag used in relocated export filenames.
func (c Category) Abbrev() string {
	switch c {
	case CategoryAgua:
		return "AGUA"
	case CategoryEsgoto:
		return "ESGOTO"
	case CategoryNovasLigacoes:
		return "NLA_NLE"
	case CategoryGraficos:
		return "GRAFICOS"
	}
	return "OUTROS"
}

// Tipo returns the value written to the TIPO metadata column.
func (c Category) Tipo() string {
	switch c {
	case CategoryAgua:
		return "ÁGUA"
	case CategoryEsgoto:
		return "ESGOTO"
	case CategoryNovasLigacoes:
		return "NLA/NLE"
	case CategoryGraficos:
		return "PAINEL_3"
	}
	return ""
}

// SourceLabel returns the value written to the ORIGEM DE DADOS column.
func (c Category) SourceLabel() string {
	switch c {
	case CategoryAgua:
		return "Power BI - Incremento Água"
	case CategoryEsgoto:
		return "Power BI - Incremento Esgoto"
	case CategoryNovasLigacoes:
		return "Power BI - Novas Ligações"
	case CategoryGraficos:
		return "PAINEL 3"
	}
	return ""
}

// TableName returns the remote table base name (the configured prefix is
// added by the loader).
func (c Category) TableName() string {
	switch c {
	case CategoryAgua:
		return "agua"
	case CategoryEsgoto:
		return "esgoto"
	case CategoryNovasLigacoes:
		return "nla_nle"
	case CategoryGraficos:
		return "dados_realizados"
	}
	return "outros"
}

// PageName returns the dashboard page the exporter must navigate to, or ""
// when the category's dashboard has a single page.
func (c Category) PageName() string {
	switch c {
	case CategoryAgua:
		return "Tabela de Incremento Tratamento Água"
	case CategoryEsgoto:
		return "Tabela de Incremento Esgoto"
	case CategoryGraficos:
		return "Evolução de Economias por Recorte 2025"
	}
	return ""
}

// ExportDir returns the directory where the category's raw files live.
func (c Category) ExportDir(base string) string {
	switch c {
	case CategoryAgua:
		return filepath.Join(base, "Export Painel 2", "AGUA")
	case CategoryEsgoto:
		return filepath.Join(base, "Export Painel 2", "ESGOTO")
	case CategoryNovasLigacoes:
		return filepath.Join(base, "Export Painel 1")
	case CategoryGraficos:
		return filepath.Join(base, "Export Painel 3")
	}
	return filepath.Join(base, "Export Outros")
}

// SegmentPattern returns the regexp that extracts the regional-unit label
// from a relocated export filename, or nil when the category does not encode
// a segment in its filenames.
func (c Category) SegmentPattern() *regexp.Regexp {
	switch c {
	case CategoryAgua:
		return aguaPattern
	case CategoryEsgoto:
		return esgotoPattern
	}
	return nil
}

// Superintendencias lists the regional directorates used as filter segments
// on the increment and chart dashboards.
var Superintendencias = []string{
	"BAIXADA SANTISTA E VALE DO RIBEIRA",
	"BAIXO E ALTO PARANAPANEMA",
	"CAPIVAI, JUNDIAÍ, PARDO E GRANDE",
	"CENTRO",
	"LESTE",
	"MÉDIO E BAIXO TIETÊ",
	"NORTE",
	"OESTE",
	"SUL",
	"VALE DO PARAÍBA E LITORAL NORTE",
}

// SuperintendenciasPainel1 lists the SUP slicer items multi-selected on the
// new-connections dashboard before its single export.
var SuperintendenciasPainel1 = []string{
	"SUP ALTO PARANAPANEMA",
	"SUP B PARANAPANEMA",
	"SUP B TIETÊ E GRANDE",
	"SUP BAIXADA SANTISTA",
	"SUP CAPIVARI JUNDIAÍ",
	"SUP CENTRO",
	"SUP LESTE",
	"SUP LITORAL NORTE",
	"SUP MÉDIO TIETÊ",
	"SUP NORTE",
	"SUP OESTE",
	"SUP PARDO E GRANDE",
	"SUP SUL",
	"SUP VALE DO PARAÍBA",
	"SUP VALE DO RIBEIRA",
}

// ChartNames lists the four chart visuals extracted on the evolution page.
var ChartNames = []string{
	"Incremento de Água - Urbano",
	"Incremento de Água - Rural + Informal",
	"Incremento de Esgoto - Urbano",
	"Incremento de Esgoto Rural + Informal",
}
