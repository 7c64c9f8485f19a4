package powerbi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"powerbi-scraper/browser"
	"powerbi-scraper/config"
	"powerbi-scraper/models"
	"powerbi-scraper/utils"
)

// ErrLoginRequired signals that a dashboard navigation landed on the identity
// provider's login wall. It is recoverable: the orchestrator may recreate the
// session interactively and retry the whole scrape once.
var ErrLoginRequired = errors.New("sessão expirada: página de login detectada")

// loginWallXPath matches the credential inputs of the login page. The
// dashboard itself never renders an email or password input.
const loginWallXPath = "//input[@id='email' or @type='email' or @type='password']"

// Scraper drives the three dashboard exporters over one browser session.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	ui     *browser.UI
}

// New creates a Scraper bound to the given configuration.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		ui:     browser.NewUI(logger, cfg.PollInterval),
	}
}

// Run executes the exporters strictly in sequence over the session tab.
// ErrLoginRequired aborts immediately; any other exporter error is terminal
// for its dashboard but already handled per segment inside each exporter.
func (s *Scraper) Run(ctx context.Context) error {
	if err := s.ExportNovasLigacoes(ctx); err != nil {
		return err
	}
	for _, cat := range models.IncrementoCategories {
		if err := s.ExportIncremento(ctx, cat); err != nil {
			return err
		}
	}
	return s.ExportGraficos(ctx)
}

// openDashboard navigates to a dashboard URL, waits for the initial render to
// settle and probes for the login wall. The wall probe runs after the overlay
// wait: the redirect to the identity provider can take several seconds, and
// probing too early would misread an expired session as a render failure.
func (s *Scraper) openDashboard(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("exportador: URL do painel não configurada")
	}

	s.logger.Info("Navegando para o painel: %s", url)
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("exportador: navegar para %q: %w", url, err)
	}

	overlayGone := s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout)
	wallPresent := s.loginWallPresent(ctx)

	err := classifyDashboardLoad(overlayGone, wallPresent)
	if errors.Is(err, ErrLoginRequired) {
		s.logger.Aviso("Página de login detectada. A sessão precisa ser recriada.")
	}
	return err
}

// classifyDashboardLoad maps the post-navigation observations to an outcome.
// A visible login wall always wins: it is the recoverable condition, and an
// overlay timeout caused by the redirect must not mask it.
func classifyDashboardLoad(overlayGone, wallPresent bool) error {
	if wallPresent {
		return ErrLoginRequired
	}
	if !overlayGone {
		return fmt.Errorf("exportador: o painel não terminou de carregar")
	}
	return nil
}

// loginWallPresent probes for credential inputs during a short window. The
// redirect to the identity provider is not instantaneous, so a single
// immediate probe would miss it.
func (s *Scraper) loginWallPresent(ctx context.Context) bool {
	return utils.WaitUntil(ctx, 3*time.Second, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		return s.ui.IsVisible(ctx, loginWallXPath), nil
	})
}

// goToPage clicks the named page in the dashboard's page navigation.
func (s *Scraper) goToPage(ctx context.Context, page string) error {
	xpath := fmt.Sprintf("//button[.//span[text()='%s']]", page)
	if !s.ui.FindAndClick(ctx, xpath, s.cfg.FindTimeout) {
		return fmt.Errorf("exportador: página '%s' não encontrada na navegação", page)
	}
	if !s.ui.WaitForOverlayGone(ctx, s.cfg.OverlayTimeout) {
		return fmt.Errorf("exportador: a página '%s' não terminou de carregar", page)
	}
	return nil
}
