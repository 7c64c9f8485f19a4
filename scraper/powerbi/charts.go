package powerbi

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"powerbi-scraper/browser"
	"powerbi-scraper/models"
	"powerbi-scraper/storage"
	"powerbi-scraper/utils"
)

const (
	showAsTableXPath  = "//button[@data-testid='pbimenu-item.Mostrar como uma tabela']"
	backToReportXPath = "//button[@data-testid='back-to-report-button']"
	chartTableXPath   = "//div[contains(@class, 'pivotTable')]"
)

func chartVisualXPath(chart string) string {
	return fmt.Sprintf(
		"//div[contains(@class, 'visualContainer')][descendant::*[@title='%s' or @aria-label='%s']]",
		chart, chart)
}

// ExportGraficos extracts the four evolution charts for every directorate
// through the "show as table" view. The virtualized table has no native
// export, so rows are scrolled into existence and streamed to one CSV. A
// chart missing for a segment is skipped; the segment loop continues.
func (s *Scraper) ExportGraficos(ctx context.Context) error {
	cat := models.CategoryGraficos
	s.logger.Info("=== EXPORTAÇÃO PAINEL 3 (%s) ===", cat.Abbrev())

	if err := s.openDashboard(ctx, s.cfg.Painel3URL); err != nil {
		return err
	}
	if err := s.goToPage(ctx, cat.PageName()); err != nil {
		return err
	}

	csvPath := filepath.Join(cat.ExportDir(s.cfg.ExportBaseDir), storage.GraficosCSVName)
	writer, err := storage.NewChartCSVWriter(csvPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	for _, segment := range models.Superintendencias {
		s.logger.Info("--- Segmento: %s ---", segment)

		s.clearFilterByTitle(ctx, slicerDiretoria)
		if err := s.applySegmentFilter(ctx, segment); err != nil {
			s.logger.Erro("Falha ao filtrar %s: %v. Pulando segmento.", segment, err)
			continue
		}
		if !s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout) {
			s.logger.Erro("Os gráficos não atualizaram para %s. Pulando segmento.", segment)
			continue
		}

		for _, chart := range models.ChartNames {
			if err := s.extractChart(ctx, writer, segment, chart); err != nil {
				s.logger.Aviso("Gráfico '%s' não extraído para %s: %v", chart, segment, err)
			}
		}
	}

	s.logger.Sucesso("Painel 3 extraído para %s.", csvPath)
	return nil
}

// extractChart switches one chart visual to its table view, drains the
// virtualized rows and returns to the report view.
func (s *Scraper) extractChart(ctx context.Context, writer storage.RowSink, segment, chart string) error {
	visual := chartVisualXPath(chart)
	if !s.ui.Hover(ctx, visual) {
		return fmt.Errorf("visual não encontrado")
	}
	if !s.ui.FindAndClick(ctx, moreOptionsXPath, s.cfg.FindTimeout) {
		return fmt.Errorf("botão 'Mais opções' não encontrado")
	}
	if !s.ui.FindAndClick(ctx, showAsTableXPath, s.cfg.FindTimeout) {
		return fmt.Errorf("opção 'Mostrar como uma tabela' não encontrada")
	}

	s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout)
	if !s.ui.Find(ctx, chartTableXPath, s.cfg.FindTimeout) {
		s.leaveTableView(ctx)
		return fmt.Errorf("tabela do gráfico não renderizou")
	}
	utils.Pause(ctx, time.Second)

	table := browser.NewPivotTable(chartTableXPath)
	header, err := table.Header(ctx)
	if err != nil {
		s.leaveTableView(ctx)
		return fmt.Errorf("ler cabeçalho: %w", err)
	}
	if err := writer.WriteHeader(header); err != nil {
		s.leaveTableView(ctx)
		return err
	}

	rows, err := browser.ExtractAllRows(ctx, table)
	if err != nil {
		s.leaveTableView(ctx)
		return fmt.Errorf("extrair linhas: %w", err)
	}
	if err := writer.WriteRows(segment, chart, rows); err != nil {
		s.leaveTableView(ctx)
		return err
	}

	s.logger.Info("Gráfico '%s': %d linhas extraídas.", chart, len(rows))
	s.leaveTableView(ctx)
	return nil
}

// leaveTableView returns from the table view to the report canvas.
func (s *Scraper) leaveTableView(ctx context.Context) {
	if !s.ui.FindAndClick(ctx, backToReportXPath, s.cfg.FindTimeout) {
		s.logger.Aviso("Botão de voltar ao relatório não encontrado.")
		return
	}
	s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout)
}
