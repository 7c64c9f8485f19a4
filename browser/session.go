package browser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"powerbi-scraper/config"
	"powerbi-scraper/utils"
)

// Session is a ready-to-use browser tab bound to the persisted profile.
// The whole run shares this single tab; exporters never open a second one.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// Context returns the chromedp tab context.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close releases the tab and the browser process.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Manager owns the persisted authentication profile. It never deletes the
// profile directory on its own: a possibly-still-valid session must survive
// scraper failures, so removal is an explicit administrative action.
type Manager struct {
	cfg    *config.Config
	logger *utils.Logger
}

// NewManager creates a session Manager.
func NewManager(cfg *config.Config, logger *utils.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Acquire launches the browser bound to the persisted profile and returns a
// session. It returns (nil, nil) when the profile directory does not exist,
// the "no session" signal. Login validity is not checked here; that surfaces
// lazily as a login wall on the first dashboard navigation.
func (m *Manager) Acquire(parent context.Context) (*Session, error) {
	if _, err := os.Stat(m.cfg.ProfileDir); os.IsNotExist(err) {
		m.logger.Erro("Perfil de sessão '%s' não encontrado.", m.cfg.ProfileDir)
		return nil, nil
	}

	m.logger.Info("Usando perfil de sessão existente para iniciar o navegador...")
	sess, err := m.launch(parent, m.cfg.Headless)
	if err != nil {
		return nil, err
	}

	// Pin downloads to the staging directory so the download-wait primitive
	// and the browser agree on where files land.
	if err := chromedp.Run(sess.ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(m.cfg.DownloadsDir),
	); err != nil {
		sess.Close()
		return nil, fmt.Errorf("sessão: configurar diretório de downloads: %w", err)
	}

	return sess, nil
}

// CreateInteractive opens a fresh, visible browser on the entry URL and
// blocks until the operator confirms the login was completed. This is the
// only way the session profile is (re)created and must never run unattended.
func (m *Manager) CreateInteractive(entryURL string) error {
	m.logger.Info("--- Iniciando processo para (re)criar a sessão de login ---")

	sess, err := m.launch(context.Background(), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := chromedp.Run(sess.ctx, chromedp.Navigate(entryURL)); err != nil {
		return fmt.Errorf("sessão: navegar para a URL inicial: %w", err)
	}

	fmt.Println("\n--- AÇÃO NECESSÁRIA ---")
	fmt.Println("1. Faça o login COMPLETO na sua conta no navegador aberto.")
	fmt.Println("2. Marque a opção 'Permanecer conectado', se disponível.")
	fmt.Println("3. Aguarde o carregamento completo do painel.")
	fmt.Print("4. Após tudo carregado, pressione Enter aqui para finalizar... ")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		return fmt.Errorf("sessão: aguardar confirmação do operador: %w", err)
	}

	m.logger.Sucesso("Sessão de autenticação guardada no perfil '%s'.", m.cfg.ProfileDir)
	return nil
}

func (m *Manager) launch(parent context.Context, headless bool) (*Session, error) {
	profile, err := filepath.Abs(m.cfg.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("sessão: resolver diretório do perfil: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profile),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-session-crashed-bubble", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if bin := findChromeBinary(m.cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	// Force the browser process to start now so a broken profile fails here
	// instead of in the middle of an export.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("sessão: iniciar navegador: %w", err)
	}

	return &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelTab},
	}, nil
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
