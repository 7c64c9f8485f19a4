package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"powerbi-scraper/models"
	"powerbi-scraper/utils"
)

// residualDownloads are staging files a previous, possibly-interrupted run
// may have left behind. They must be removed before new downloads start, or
// the download-wait primitive would match a stale leftover.
var residualDownloads = []string{
	"data.xlsx",
	"Exportar Base de Dados (Limitado a 150 mil linhas).xlsx",
}

// GraficosCSVName is the accumulated chart-extraction file inside the
// chart category's export directory.
const GraficosCSVName = "dados_extraidos_painel_3.csv"

// ClearResidualDownloads removes leftover export files from the staging dir.
func ClearResidualDownloads(dir string, logger *utils.Logger) {
	for _, name := range residualDownloads {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Erro("Não foi possível remover '%s': %v", path, err)
			continue
		}
		logger.Info("Arquivo residual '%s' removido.", path)
	}
}

// ExportFilename returns the content-addressed name a relocated raw export
// receives: "{abbrev} - {segment}.xlsx", or just "{segment}.xlsx" for the
// single-file new-connections export. Later stages parse the segment back
// out of this name, so it is meaningful input, not cosmetics.
func ExportFilename(cat models.Category, segment string) string {
	if cat == models.CategoryNovasLigacoes {
		return segment + ".xlsx"
	}
	return fmt.Sprintf("%s - %s.xlsx", cat.Abbrev(), segment)
}

// RelocateLatestExport finds the most recent .xlsx in the staging directory,
// renames it for the (category, segment) pair and moves it into the
// category's export directory.
func RelocateLatestExport(cat models.Category, segment, stagingDir, exportBase string, logger *utils.Logger) error {
	logger.Info("--- GERENCIANDO ARQUIVO PARA: %s / %s ---", cat.Abbrev(), segment)

	source, err := findLatestXLSX(stagingDir)
	if err != nil {
		return err
	}
	logger.Info("Arquivo mais recente encontrado: %s", filepath.Base(source))

	destDir := cat.ExportDir(exportBase)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("exportação: criar diretório de destino: %w", err)
	}

	dest := filepath.Join(destDir, ExportFilename(cat, segment))
	if err := os.Rename(source, dest); err != nil {
		return fmt.Errorf("exportação: mover arquivo para %q: %w", dest, err)
	}

	logger.Sucesso("Arquivo renomeado e movido para: %s", dest)
	return nil
}

// LatestExportTime returns the modification time of the newest file in a
// category's export directory. This is the best available proxy for when the
// dashboard data was actually captured.
func LatestExportTime(dir string) (time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}

	var latest time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, !latest.IsZero()
}

func findLatestXLSX(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("exportação: ler diretório de downloads: %w", err)
	}

	var latest string
	var latestMod int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".xlsx") || strings.HasPrefix(name, "~") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = filepath.Join(dir, name)
			latestMod = mod
		}
	}

	if latest == "" {
		return "", fmt.Errorf("exportação: nenhum arquivo .xlsx encontrado em %q", dir)
	}
	return latest, nil
}
