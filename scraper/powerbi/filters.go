package powerbi

import (
	"context"
	"fmt"
	"time"

	"powerbi-scraper/utils"
)

// Slicer titles as rendered on the dashboards. The odd capitalization of the
// directorate slicer is how the report actually names it.
const (
	slicerDiretoria = "DIRETORIA REGIONal"
	slicerMunicipio = "MUNICÍPIO"
	slicerSUP       = "SUP"
)

// slicerItem is the observed state of one selectable slicer entry.
type slicerItem struct {
	Title    string
	Selected bool
}

// itemsNeedingClick returns, in wanted order, the titles that must still be
// clicked to reach the wanted selection. Already-selected items are skipped,
// which makes filter application idempotent.
func itemsNeedingClick(wanted []string, current []slicerItem) []string {
	selected := make(map[string]bool, len(current))
	for _, it := range current {
		if it.Selected {
			selected[it.Title] = true
		}
	}

	var clicks []string
	for _, title := range wanted {
		if !selected[title] {
			clicks = append(clicks, title)
		}
	}
	return clicks
}

func slicerXPath(title string) string {
	return fmt.Sprintf("//div[h3[@title='%s']]", title)
}

func slicerItemXPath(item string) string {
	return fmt.Sprintf("//div[contains(@class, 'slicerItemContainer')][@title='%s']", item)
}

// clearFilterByTitle removes any active selection on the named slicer. The
// clear button only renders on hover and only while a selection exists, so
// its absence means there is nothing to clear.
func (s *Scraper) clearFilterByTitle(ctx context.Context, title string) {
	if !s.ui.Hover(ctx, slicerXPath(title)) {
		s.logger.Aviso("Filtro '%s' não encontrado para limpeza.", title)
		return
	}

	clearXPath := slicerXPath(title) + "//span[@aria-label='Limpar seleções']"
	if s.ui.IsVisible(ctx, clearXPath) {
		if s.ui.FindAndClick(ctx, clearXPath, s.cfg.FindTimeout) {
			s.logger.Info("Filtro '%s' limpo.", title)
			utils.Pause(ctx, time.Second)
		}
		return
	}
	s.logger.Info("Filtro '%s' já estava sem seleção.", title)
}

// openSlicerDropdown expands a dropdown-style slicer so its items render.
func (s *Scraper) openSlicerDropdown(ctx context.Context, title string) bool {
	xpath := slicerXPath(title) + "//div[@role='combobox']"
	if !s.ui.FindAndClick(ctx, xpath, s.cfg.FindTimeout) {
		return false
	}
	utils.Pause(ctx, time.Second)
	return true
}

// closeSlicerDropdown collapses the open dropdown by clicking the slicer
// header again.
func (s *Scraper) closeSlicerDropdown(ctx context.Context, title string) {
	xpath := slicerXPath(title) + "//div[@role='combobox']"
	s.ui.FindAndClick(ctx, xpath, s.cfg.FindTimeout)
	utils.Pause(ctx, time.Second)
}

// applySlicerSelection opens the named slicer and clicks every wanted item
// that is not already selected. Items already carrying aria-selected are left
// alone; re-clicking them would toggle the selection off.
func (s *Scraper) applySlicerSelection(ctx context.Context, title string, wanted []string) error {
	if !s.openSlicerDropdown(ctx, title) {
		return fmt.Errorf("filtro: o seletor '%s' não abriu", title)
	}
	defer s.closeSlicerDropdown(ctx, title)

	current := make([]slicerItem, 0, len(wanted))
	for _, item := range wanted {
		current = append(current, slicerItem{
			Title:    item,
			Selected: s.ui.AttrEquals(ctx, slicerItemXPath(item), "aria-selected", "true"),
		})
	}

	clicks := itemsNeedingClick(wanted, current)
	if len(clicks) == 0 {
		s.logger.Info("Filtro '%s' já aplicado. Nada a fazer.", title)
		return nil
	}

	for _, item := range clicks {
		if !s.ui.FindAndClick(ctx, slicerItemXPath(item), s.cfg.FindTimeout) {
			return fmt.Errorf("filtro: item '%s' não encontrado no seletor '%s'", item, title)
		}
		utils.Pause(ctx, 500*time.Millisecond)
	}

	s.logger.Info("Filtro '%s' aplicado (%d itens selecionados).", title, len(clicks))
	return nil
}

// applySegmentFilter selects exactly one regional directorate.
func (s *Scraper) applySegmentFilter(ctx context.Context, segment string) error {
	return s.applySlicerSelection(ctx, slicerDiretoria, []string{segment})
}
