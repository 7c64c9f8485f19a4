package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"powerbi-scraper/models"
)

// chartValueColumn is the normalized name of the extracted measure column.
const chartValueColumn = "dados_extraidos_painel_3"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// chartRow is one observation of one chart for one segment and period.
type chartRow struct {
	segment string
	chart   string
	year    int
	month   time.Month
	value   int64
}

// ProcessGraficos normalizes the accumulated panel-3 chart CSV into the
// relational dataset: parsed periods, the monthly delta of each cumulative
// series and the current-year running total. A missing or malformed file
// yields an empty dataset.
func (n *Normalizer) ProcessGraficos(path string) (*models.Dataset, error) {
	records, err := readChartCSV(path)
	if err != nil {
		return nil, err
	}
	if records == nil {
		n.logger.Aviso("O arquivo não existe: %s", path)
		return models.NewDataset(), nil
	}
	if len(records) < 2 || len(records[0]) < 4 {
		n.logger.Erro("CSV do painel 3 com formato inesperado: %s", path)
		return models.NewDataset(), nil
	}

	var rows []chartRow
	for _, rec := range records[1:] {
		if len(rec) < 4 {
			continue
		}
		label := strings.TrimSpace(rec[2])
		year, month, ok := parsePtLongMonth(label)
		if !ok {
			n.logger.Aviso("Período não reconhecido no painel 3: %q", label)
			continue
		}
		rows = append(rows, chartRow{
			segment: strings.TrimSpace(rec[0]),
			chart:   strings.TrimSpace(rec[1]),
			year:    year,
			month:   month,
			value:   parseChartValue(rec[3]),
		})
	}

	// Deltas only make sense over a chronologically ordered series, grouped
	// by segment and chart.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.segment != b.segment {
			return a.segment < b.segment
		}
		if a.chart != b.chart {
			return a.chart < b.chart
		}
		return a.year*100+int(a.month) < b.year*100+int(b.month)
	})

	year := n.now().Year()
	realizadoCol := fmt.Sprintf("REALIZADO_%d", year)
	valueHeader := strings.TrimSpace(records[0][3])
	if valueHeader == "" {
		valueHeader = chartValueColumn
	}

	ds := models.NewDataset(
		"Superintendencia", "Gráfico", "Mês_Ano", chartValueColumn,
		"CALCULO", realizadoCol, colTipo, colExtraction, colSource,
	)

	extraction := n.now().Format("02/01/2006 15:04")
	cat := models.CategoryGraficos
	prevKey := ""
	var prevValue, running int64
	for _, r := range rows {
		key := r.segment + "\x1f" + r.chart
		var delta int64
		if key == prevKey {
			delta = r.value - prevValue
		}
		if key != prevKey {
			running = 0
		}
		var realizado int64
		if r.year == year {
			running += delta
			realizado = running
		}
		prevKey, prevValue = key, r.value

		// The stored period label drops the "de" connective: "janeiro 2025".
		if err := ds.AppendRow([]any{
			r.segment, r.chart, formatPtLongMonth(r.year, r.month), r.value,
			delta, realizado, cat.Tipo(), extraction, cat.SourceLabel(),
		}); err != nil {
			return nil, err
		}
	}

	n.logger.Info("Painel 3 (%s): %d linhas processadas.", valueHeader, len(ds.Rows))
	return ds, nil
}

// readChartCSV reads a semicolon-separated file that may carry a UTF-8 BOM
// or be latin-1 encoded. Returns nil records when the file does not exist.
func readChartCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("painel 3: ler %q: %w", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("painel 3: decodificar %q: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("painel 3: interpretar %q: %w", path, err)
	}
	return records, nil
}

// parseChartValue converts a display value like "12.345" to its integer,
// dropping thousands separators. Unparseable values map to 0.
func parseChartValue(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return 0
}
