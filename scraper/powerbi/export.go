package powerbi

import (
	"context"
	"fmt"
	"time"

	"powerbi-scraper/models"
	"powerbi-scraper/storage"
	"powerbi-scraper/utils"
)

// Download names the dashboard assigns to native exports. They are fixed by
// the remote application, not by this program.
const (
	incrementoDownloadName = "data.xlsx"
	painel1DownloadName    = "Exportar Base de Dados (Limitado a 150 mil linhas).xlsx"
)

// painel1ExportLabel is the segment label the single new-connections export
// file is relocated under.
const painel1ExportLabel = "DADOS PAINEL 1"

const (
	pivotVisualXPath = "//div[contains(@class, 'visualContainer')][.//div[contains(@class, 'pivotTable')]]"
	moreOptionsXPath = "//button[@data-testid='visual-more-options-btn']"
	exportMenuXPath  = "//button[@data-testid='pbimenu-item.Exportar dados']"
	exportConfirm    = "//mat-dialog-actions//button[.//span[text()='Exportar']]"
)

// exportVisual runs the export menu sequence on the visual matched by the
// XPath: hover to reveal the options button, open the menu, pick "Exportar
// dados" and confirm the dialog.
func (s *Scraper) exportVisual(ctx context.Context, visualXPath string) error {
	if !s.ui.Hover(ctx, visualXPath) {
		return fmt.Errorf("exportador: visual não encontrado: %s", visualXPath)
	}
	if !s.ui.FindAndClick(ctx, moreOptionsXPath, s.cfg.FindTimeout) {
		return fmt.Errorf("exportador: botão 'Mais opções' não encontrado")
	}
	if !s.ui.FindAndClick(ctx, exportMenuXPath, s.cfg.FindTimeout) {
		return fmt.Errorf("exportador: opção 'Exportar dados' não encontrada")
	}
	if !s.ui.FindAndClick(ctx, exportConfirm, s.cfg.FindTimeout) {
		return fmt.Errorf("exportador: confirmação de exportação não encontrada")
	}
	return nil
}

// ExportNovasLigacoes drives the new-connections dashboard: selects every SUP
// slicer item, exports the base-data visual once and relocates the file.
func (s *Scraper) ExportNovasLigacoes(ctx context.Context) error {
	cat := models.CategoryNovasLigacoes
	s.logger.Info("=== EXPORTAÇÃO PAINEL 1 (%s) ===", cat.Abbrev())

	if err := s.openDashboard(ctx, s.cfg.Painel1URL); err != nil {
		return err
	}

	if err := s.applySlicerSelection(ctx, slicerSUP, models.SuperintendenciasPainel1); err != nil {
		return err
	}
	if !s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout) {
		return fmt.Errorf("exportador: o painel 1 não atualizou após o filtro")
	}

	if err := s.exportVisual(ctx, pivotVisualXPath); err != nil {
		return err
	}
	if !s.ui.WaitForDownload(ctx, s.cfg.DownloadsDir, painel1DownloadName, s.cfg.DownloadTimeout) {
		return fmt.Errorf("exportador: download do painel 1 não concluído")
	}

	if err := storage.RelocateLatestExport(cat, painel1ExportLabel, s.cfg.DownloadsDir, s.cfg.ExportBaseDir, s.logger); err != nil {
		return err
	}

	s.logger.Sucesso("Painel 1 exportado com sucesso.")
	return nil
}

// ExportIncremento drives one increment category (water or sewage): its page
// of the painel 2 dashboard, one export per regional directorate. A failure
// on one segment is logged and the next segment proceeds; missing top-level
// chrome (the page itself) is terminal.
func (s *Scraper) ExportIncremento(ctx context.Context, cat models.Category) error {
	s.logger.Info("=== EXPORTAÇÃO PAINEL 2 (%s) ===", cat.Abbrev())

	if err := s.openDashboard(ctx, s.cfg.Painel2URL); err != nil {
		return err
	}
	if err := s.goToPage(ctx, cat.PageName()); err != nil {
		return err
	}

	failures := 0
	for _, segment := range models.Superintendencias {
		if err := s.exportSegment(ctx, cat, segment); err != nil {
			failures++
			s.logger.Erro("Falha em %s / %s: %v. Continuando para o próximo segmento.", cat.Abbrev(), segment, err)
		}
	}

	if failures > 0 {
		s.logger.Aviso("%s: %d de %d segmentos falharam.", cat.Abbrev(), failures, len(models.Superintendencias))
	} else {
		s.logger.Sucesso("%s: todos os segmentos exportados.", cat.Abbrev())
	}
	return nil
}

// exportSegment exports the increment table filtered to a single directorate.
func (s *Scraper) exportSegment(ctx context.Context, cat models.Category, segment string) error {
	s.logger.Info("--- Segmento: %s ---", segment)

	s.clearFilterByTitle(ctx, slicerDiretoria)
	s.clearFilterByTitle(ctx, slicerMunicipio)

	if err := s.applySegmentFilter(ctx, segment); err != nil {
		return err
	}
	if !s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout) {
		return fmt.Errorf("a tabela não atualizou após o filtro")
	}
	utils.Pause(ctx, time.Second)

	if err := s.exportVisual(ctx, pivotVisualXPath); err != nil {
		return err
	}
	if !s.ui.WaitForDownload(ctx, s.cfg.DownloadsDir, incrementoDownloadName, s.cfg.DownloadTimeout) {
		return fmt.Errorf("download de '%s' não concluído", incrementoDownloadName)
	}

	return storage.RelocateLatestExport(cat, segment, s.cfg.DownloadsDir, s.cfg.ExportBaseDir, s.logger)
}
