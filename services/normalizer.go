package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"powerbi-scraper/models"
	"powerbi-scraper/utils"
)

// Identity and metadata column names of the normalized column contract.
const (
	colFilename   = "NOME ARQUIVO"
	colSup        = "SUP"
	colTipo       = "TIPO"
	colMunicipio  = "MUNICIPIO"
	colRawKey     = "Mês_Ano"
	colExtraction = "DATA DE EXTRAÇÃO"
	colSource     = "ORIGEM DE DADOS"
)

// Normalizer reconciles heterogeneous raw export files into datasets with a
// stable column contract: identity prefix, chronologically ordered month
// columns, aggregate and metadata suffix.
type Normalizer struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger, now: time.Now}
}

// ProcessIncremento merges every raw export of an increment category (water
// or sewage) into one normalized dataset. Inputs may disagree on which month
// columns they carry and how the month headers are spelled; the output always
// follows the fixed contract. A missing key column yields an empty dataset,
// not an error; downstream treats it as "no data".
func (n *Normalizer) ProcessIncremento(dir string, cat models.Category) (*models.Dataset, error) {
	tables, err := readExcelDir(dir)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		n.logger.Aviso("Nenhum arquivo do tipo '%s' encontrado em %s.", cat.Tipo(), dir)
		return models.NewDataset(), nil
	}

	for _, t := range tables {
		canonicalizeHeader(t.Header)
	}

	// Union of all columns, in first-seen order. Files exported in different
	// months legitimately carry different month columns.
	var columns []string
	position := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Header {
			if c == "" {
				continue
			}
			if _, ok := position[c]; !ok {
				position[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	if _, ok := position[colMunicipio]; !ok {
		n.logger.Erro("Coluna '%s' não encontrada nos arquivos de %s. Pulando processamento.", colMunicipio, cat.Tipo())
		return models.NewDataset(), nil
	}

	ds := models.NewDataset(append(columns, colFilename)...)
	for _, t := range tables {
		for _, raw := range t.Rows {
			row := make([]any, len(columns)+1)
			for i := range row {
				row[i] = ""
			}
			for i, c := range t.Header {
				if c == "" || i >= len(raw) {
					continue
				}
				row[position[c]] = raw[i]
			}
			row[len(columns)] = t.Filename
			ds.Rows = append(ds.Rows, row)
		}
	}

	// Export artifacts: every file repeats the header as a data row.
	muniIdx := ds.ColumnIndex(colMunicipio)
	ds.Filter(func(row []any) bool {
		s, _ := row[muniIdx].(string)
		return strings.TrimSpace(s) != colMunicipio
	})

	var monthCols []string
	for _, c := range ds.Columns {
		if _, _, ok := parseCanonicalToken(c); ok {
			monthCols = append(monthCols, c)
		}
	}
	for _, c := range monthCols {
		idx := ds.ColumnIndex(c)
		for _, row := range ds.Rows {
			row[idx] = coerceInt(row[idx])
		}
	}

	// Year-to-date aggregate over the current calendar year's months.
	year := n.now().Year()
	totalName := fmt.Sprintf("TOTAL (Jan - Atual %d)", year)
	yearSuffix := fmt.Sprintf("/%d", year)
	var yearIdxs []int
	for _, c := range monthCols {
		if strings.HasSuffix(c, yearSuffix) {
			yearIdxs = append(yearIdxs, ds.ColumnIndex(c))
		}
	}
	ds.AddComputedColumn(totalName, func(row []any) any {
		var sum int64
		for _, i := range yearIdxs {
			if v, ok := row[i].(int64); ok {
				sum += v
			}
		}
		return sum
	})

	ds.AddColumn(colTipo, cat.Tipo())
	ds.AddColumn(colExtraction, n.now().Format("02/01/2006 15:04"))
	ds.AddColumn(colSource, cat.SourceLabel())

	pattern := cat.SegmentPattern()
	fileIdx := ds.ColumnIndex(colFilename)
	ds.AddComputedColumn(colSup, func(row []any) any {
		name, _ := row[fileIdx].(string)
		if pattern != nil {
			if m := pattern.FindStringSubmatch(name); m != nil {
				if seg := strings.ToUpper(strings.TrimSpace(m[1])); seg != "" {
					return "SUP " + seg
				}
			}
		}
		return ""
	})

	sortMonthTokens(monthCols)
	order := []string{colFilename, colSup, colTipo, colMunicipio}
	order = append(order, monthCols...)
	order = append(order, totalName, colExtraction, colSource)
	ds.Reorder(order)

	muniIdx = ds.ColumnIndex(colMunicipio)
	supIdx := ds.ColumnIndex(colSup)
	before := len(ds.Rows)
	ds.Filter(func(row []any) bool {
		muni, _ := row[muniIdx].(string)
		muni = strings.TrimSpace(muni)
		if muni == "" || strings.HasPrefix(muni, "Filtros aplicados:") || strings.ToUpper(muni) == "TOTAL" {
			return false
		}
		sup, _ := row[supIdx].(string)
		return sup != ""
	})

	n.logger.Info("%s: %d arquivos, %d linhas normalizadas (%d descartadas).",
		cat.Tipo(), len(tables), len(ds.Rows), before-len(ds.Rows))
	return ds, nil
}

// ProcessNovasLigacoes normalizes the single new-connections export file.
func (n *Normalizer) ProcessNovasLigacoes(path string, cat models.Category) (*models.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		n.logger.Aviso("O arquivo não existe: %s", path)
		return models.NewDataset(), nil
	}

	t, err := readExcelFile(path)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(t.Header))
	for _, c := range t.Header {
		c = strings.TrimSpace(c)
		if c == "TIPO LIGACAO" {
			c = "TIPO_LIGACAO"
		}
		columns = append(columns, c)
	}

	ds := models.NewDataset(columns...)
	for _, raw := range t.Rows {
		row := make([]any, len(columns))
		for i := range row {
			if i < len(raw) {
				row[i] = raw[i]
			} else {
				row[i] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	// "Ano e Mes" arrives as a compact AAAAMM-style code; reshape to MM/AA.
	if idx := ds.ColumnIndex("Ano e Mes"); idx >= 0 {
		for _, row := range ds.Rows {
			v, _ := row[idx].(string)
			v = strings.TrimSpace(v)
			if len(v) >= 6 {
				row[idx] = v[4:6] + "/" + v[2:4]
			}
		}
	} else {
		n.logger.Aviso("Coluna 'Ano e Mes' não encontrada no arquivo NLA/NLE.")
	}

	ds.AddColumn(colExtraction, n.now().Format("02/01/2006 15:04"))
	ds.AddColumn(colSource, cat.SourceLabel())

	n.logger.Info("NLA/NLE: %d linhas processadas.", len(ds.Rows))
	return ds, nil
}

// Stamp appends the ETL timestamp columns every dataset carries to the store.
func (n *Normalizer) Stamp(ds *models.Dataset, panelUpdatedAt time.Time) {
	if ds.Empty() {
		return
	}
	ds.AddColumn("data_extracao_etl", n.now())
	ds.AddColumn("data_atualizacao_painel", panelUpdatedAt)
}

// canonicalizeHeader rewrites raw headers in place: the misnamed key column
// becomes MUNICIPIO and any date-like header becomes the canonical
// "{abbrev}/{year}" month token.
func canonicalizeHeader(header []string) {
	for i, c := range header {
		c = strings.TrimSpace(c)
		if c == colRawKey {
			header[i] = colMunicipio
			continue
		}
		if year, month, ok := parseMonthHeader(c); ok {
			header[i] = canonicalMonthToken(year, month)
			continue
		}
		header[i] = c
	}
}

// coerceInt converts a raw cell to int64, mapping anything unparseable to 0.
func coerceInt(v any) int64 {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int64(f)
	}
	return 0
}
