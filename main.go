package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"powerbi-scraper/browser"
	"powerbi-scraper/config"
	"powerbi-scraper/models"
	"powerbi-scraper/scraper/powerbi"
	"powerbi-scraper/services"
	"powerbi-scraper/storage"
	"powerbi-scraper/utils"
)

const logFile = "robo_log.txt"

func main() {
	mode := flag.String("mode", "all", "modo de execução: login | scrape | etl | all")
	flag.Parse()

	cfg := config.Load()

	logger, err := utils.NewFileLogger(logFile)
	if err != nil {
		logger = utils.NewLogger()
		logger.Aviso("Não foi possível criar o arquivo de log: %v", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	var runErr error
	switch *mode {
	case "login":
		runErr = browser.NewManager(cfg, logger).CreateInteractive(cfg.EntryURL)
	case "scrape":
		runErr = runScrape(ctx, cfg, logger)
	case "etl":
		runErr = runETL(cfg, logger)
	case "all":
		if runErr = runScrape(ctx, cfg, logger); runErr == nil {
			runErr = runETL(cfg, logger)
		}
	default:
		runErr = fmt.Errorf("modo desconhecido: %q", *mode)
	}

	if runErr != nil {
		logger.Erro("Execução encerrada com falha: %v", runErr)
		os.Exit(1)
	}
	logger.Sucesso("Execução concluída.")
}

// runScrape drives the browser exporters. A login wall triggers at most one
// interactive session recreation followed by a full retry; a second wall is
// fatal. Any other exporter failure ends the scrape immediately.
func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	storage.ClearResidualDownloads(cfg.DownloadsDir, logger)

	manager := browser.NewManager(cfg, logger)
	scr := powerbi.New(cfg, logger)

	for attempt := 1; ; attempt++ {
		sess, err := manager.Acquire(ctx)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("nenhuma sessão de login encontrada: execute primeiro com -mode login")
		}

		err = scr.Run(sess.Context())
		sess.Close()
		if err == nil {
			return nil
		}
		if !errors.Is(err, powerbi.ErrLoginRequired) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("sessão expirada e tentativas esgotadas: %w", err)
		}

		logger.Aviso("Sessão expirada. Recriando o login para uma nova tentativa...")
		if err := manager.CreateInteractive(cfg.EntryURL); err != nil {
			return err
		}
	}
}

// runETL normalizes every category's raw exports and loads each resulting
// dataset into its table. One table failing does not stop the others.
func runETL(cfg *config.Config, logger *utils.Logger) error {
	writer, err := storage.NewPostgresWriter(cfg.DSN(), cfg.TablePrefix, logger)
	if err != nil {
		return err
	}
	defer writer.Close()

	norm := services.NewNormalizer(logger)
	categories := []models.Category{
		models.CategoryAgua,
		models.CategoryEsgoto,
		models.CategoryNovasLigacoes,
		models.CategoryGraficos,
	}

	var failed []string
	for _, cat := range categories {
		if err := loadCategory(cfg, logger, norm, writer, cat); err != nil {
			logger.Erro("Carga da categoria %s falhou: %v", cat.Abbrev(), err)
			failed = append(failed, cat.Abbrev())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("etl: %d categoria(s) falharam: %v", len(failed), failed)
	}
	return nil
}

func loadCategory(cfg *config.Config, logger *utils.Logger, norm *services.Normalizer, loader storage.DatasetLoader, cat models.Category) error {
	logger.Info("=== ETL %s ===", cat.Abbrev())
	dir := cat.ExportDir(cfg.ExportBaseDir)

	var (
		ds  *models.Dataset
		err error
	)
	switch cat {
	case models.CategoryAgua, models.CategoryEsgoto:
		ds, err = norm.ProcessIncremento(dir, cat)
	case models.CategoryNovasLigacoes:
		ds, err = norm.ProcessNovasLigacoes(filepath.Join(dir, "DADOS PAINEL 1.xlsx"), cat)
	case models.CategoryGraficos:
		ds, err = norm.ProcessGraficos(filepath.Join(dir, storage.GraficosCSVName))
	default:
		return fmt.Errorf("categoria sem processamento definido")
	}
	if err != nil {
		return err
	}

	panelUpdatedAt, ok := storage.LatestExportTime(dir)
	if !ok {
		panelUpdatedAt = time.Now()
	}
	norm.Stamp(ds, panelUpdatedAt)

	return loader.Load(ds, cat.TableName())
}
