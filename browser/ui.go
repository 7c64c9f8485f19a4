package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"powerbi-scraper/utils"
)

// overlayXPath matches the dashboard's loading spinner container.
const overlayXPath = "//*[@id='pbi-svg-loading']"

// UI bundles the polling interaction primitives every exporter is built on.
// The dashboard is a heavily animated single-page application with no usable
// "ready" event, so bounded polling is the only robust synchronization
// available at this boundary. Timeouts and the poll interval are explicit
// configuration, and every wait honors context cancellation.
type UI struct {
	logger   *utils.Logger
	interval time.Duration
}

// NewUI creates the primitive set with the given poll interval.
func NewUI(logger *utils.Logger, interval time.Duration) *UI {
	return &UI{logger: logger, interval: interval}
}

// jsXPathFirst returns a JS expression resolving the first node matched by
// the XPath, or null.
func jsXPathFirst(xpath string) string {
	return fmt.Sprintf(
		`document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`,
		xpath)
}

// Find polls until an element matching the XPath exists. It returns false on
// timeout instead of failing; absence is an ordinary outcome for callers
// probing optional UI (login walls, clear-filter buttons).
func (u *UI) Find(ctx context.Context, xpath string, timeout time.Duration) bool {
	found := utils.WaitUntil(ctx, timeout, u.interval, func(ctx context.Context) (bool, error) {
		var exists bool
		err := chromedp.Run(ctx, chromedp.Evaluate(jsXPathFirst(xpath)+" !== null", &exists))
		return exists, err
	})
	if !found {
		u.logger.Erro("Tempo esgotado (%v). Elemento não encontrado: %s", timeout, xpath)
	}
	return found
}

// IsVisible reports whether an element matching the XPath exists and is
// currently rendered (single probe, no waiting).
func (u *UI) IsVisible(ctx context.Context, xpath string) bool {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		return el !== null && el.offsetParent !== null;
	})()`, jsXPathFirst(xpath))

	var visible bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &visible)); err != nil {
		return false
	}
	return visible
}

// FindAndClick waits until the element is both present and interactable, then
// clicks it. Returns true on success. "Not found" and "found but not
// clickable" differ only in the logged message, not in the return contract.
func (u *UI) FindAndClick(ctx context.Context, xpath string, timeout time.Duration) bool {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (el === null) return 'missing';
		if (el.offsetParent === null || el.disabled) return 'blocked';
		el.scrollIntoView({block: 'center'});
		el.click();
		return 'clicked';
	})()`, jsXPathFirst(xpath))

	var last string
	ok := utils.WaitUntil(ctx, timeout, u.interval, func(ctx context.Context) (bool, error) {
		var state string
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &state)); err != nil {
			return false, err
		}
		last = state
		return state == "clicked", nil
	})

	if !ok {
		if last == "blocked" {
			u.logger.Erro("Tempo esgotado. Elemento não era clicável: %s", xpath)
		} else {
			u.logger.Erro("Tempo esgotado. Elemento não encontrado para clique: %s", xpath)
		}
	}
	return ok
}

// AttrEquals reports whether the first element matching the XPath carries the
// attribute with exactly the given value (single probe).
func (u *UI) AttrEquals(ctx context.Context, xpath, attr, value string) bool {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		return el !== null && el.getAttribute(%q) === %q;
	})()`, jsXPathFirst(xpath), attr, value)

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false
	}
	return ok
}

// Hover moves the pointer over the element to reveal hover-only chrome
// (option menus, clear-filter buttons). Returns true when the element existed.
func (u *UI) Hover(ctx context.Context, xpath string) bool {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (el === null) return false;
		el.scrollIntoView({block: 'center'});
		var rect = el.getBoundingClientRect();
		var opts = {
			bubbles: true,
			clientX: rect.left + rect.width / 2,
			clientY: rect.top + rect.height / 2
		};
		el.dispatchEvent(new MouseEvent('mouseover', opts));
		el.dispatchEvent(new MouseEvent('mousemove', opts));
		el.dispatchEvent(new MouseEvent('mouseenter', opts));
		return true;
	})()`, jsXPathFirst(xpath))

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false
	}
	if ok {
		// Hover-revealed menus animate in.
		utils.Pause(ctx, time.Second)
	}
	return ok
}

// WaitForOverlayGone polls until the loading spinner is absent or invisible.
// Every extraction must pass through here first, otherwise a partially
// rendered table can be read.
func (u *UI) WaitForOverlayGone(ctx context.Context, timeout time.Duration) bool {
	u.logger.Info("Verificando a tela de carregamento...")

	expr := fmt.Sprintf(`(function() {
		var el = %s;
		return el === null || el.offsetParent === null;
	})()`, jsXPathFirst(overlayXPath))

	gone := utils.WaitUntil(ctx, timeout, u.interval, func(ctx context.Context) (bool, error) {
		var ok bool
		err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok))
		return ok, err
	})

	if gone {
		u.logger.Sucesso("Tela de carregamento desapareceu. Continuando.")
	} else {
		u.logger.Erro("A tela de carregamento não desapareceu após %v.", timeout)
	}
	return gone
}

// WaitForDownload polls the filesystem until the expected file exists and no
// partial-download artifact sits alongside it. The final name alone is not
// enough: the browser writes a .crdownload placeholder while transferring.
func (u *UI) WaitForDownload(ctx context.Context, dir, filename string, timeout time.Duration) bool {
	u.logger.Info("Aguardando o download de '%s' em %s...", filename, dir)

	final := filepath.Join(dir, filename)
	partial := final + ".crdownload"

	done := utils.WaitUntil(ctx, timeout, time.Second, func(context.Context) (bool, error) {
		if _, err := os.Stat(final); err != nil {
			return false, nil
		}
		if _, err := os.Stat(partial); err == nil {
			return false, nil
		}
		return true, nil
	})

	if done {
		u.logger.Sucesso("Download de '%s' concluído.", filename)
	} else {
		u.logger.Erro("O download não foi concluído dentro do tempo limite de %v.", timeout)
	}
	return done
}
