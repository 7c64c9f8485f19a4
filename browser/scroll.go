package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"powerbi-scraper/utils"
)

// stallLimit is how many consecutive passes without a new row end the scroll.
// The virtualized table exposes no total-row-count signal, so termination is
// heuristic: an undercount is possible if the UI stalls transiently, while
// the exact-tuple dedup makes an overcount impossible.
const stallLimit = 2

// TableReader is the view of a virtualized on-screen table: only a window of
// rows is materialized at any instant, and revealing more evicts rows already
// scrolled past.
type TableReader interface {
	// VisibleRows returns the cell text of every row currently materialized.
	VisibleRows(ctx context.Context) ([][]string, error)
	// RevealMore nudges the table to materialize further rows.
	RevealMore(ctx context.Context) error
}

// ExtractAllRows drives a TableReader to a fixed point, collecting every
// distinct logical row in first-seen order.
func ExtractAllRows(ctx context.Context, table TableReader) ([][]string, error) {
	var extracted [][]string
	seen := utils.NewRowSet()
	stalls := 0

	for stalls < stallLimit {
		visible, err := table.VisibleRows(ctx)
		if err != nil {
			return extracted, err
		}
		if len(visible) == 0 {
			break
		}

		newThisPass := false
		for _, row := range visible {
			if len(row) == 0 {
				continue
			}
			if seen.Add(row) {
				extracted = append(extracted, row)
				newThisPass = true
			}
		}

		if newThisPass {
			stalls = 0
		} else {
			stalls++
		}

		if err := table.RevealMore(ctx); err != nil {
			break
		}
	}

	return extracted, nil
}

// PivotTable reads the dashboard's pivot-table visual through chromedp. The
// header row has aria-rowindex 1; data rows follow with rowheader/gridcell
// cells. Hovering the last materialized row triggers further virtualization.
type PivotTable struct {
	xpath string
}

// NewPivotTable wraps the table element matched by the XPath.
func NewPivotTable(xpath string) *PivotTable {
	return &PivotTable{xpath: xpath}
}

// Header returns the column-header texts of the table.
func (p *PivotTable) Header(ctx context.Context) ([]string, error) {
	expr := `(function() {
		var table = ` + jsXPathFirst(p.xpath) + `;
		if (table === null) return [];
		var cells = table.querySelectorAll('div[role="row"][aria-rowindex="1"] div[role="columnheader"]');
		var out = [];
		for (var i = 0; i < cells.length; i++) out.push(cells[i].innerText.trim());
		return out;
	})()`

	var header []string
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &header)); err != nil {
		return nil, err
	}
	return header, nil
}

// VisibleRows implements TableReader.
func (p *PivotTable) VisibleRows(ctx context.Context) ([][]string, error) {
	expr := `(function() {
		var table = ` + jsXPathFirst(p.xpath) + `;
		if (table === null) return [];
		var rows = table.querySelectorAll('div[role="row"]');
		var out = [];
		for (var i = 0; i < rows.length; i++) {
			var idx = parseInt(rows[i].getAttribute('aria-rowindex'), 10);
			if (isNaN(idx) || idx <= 1) continue;
			var cells = rows[i].querySelectorAll('div[role="rowheader"], div[role="gridcell"]');
			var values = [];
			for (var j = 0; j < cells.length; j++) values.push(cells[j].innerText.trim());
			if (values.length > 0) out.push(values);
		}
		return out;
	})()`

	var rows [][]string
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &rows)); err != nil {
		return nil, err
	}
	return rows, nil
}

// RevealMore implements TableReader by hovering the last materialized row and
// pausing for the re-render.
func (p *PivotTable) RevealMore(ctx context.Context) error {
	expr := `(function() {
		var table = ` + jsXPathFirst(p.xpath) + `;
		if (table === null) return false;
		var rows = table.querySelectorAll('div[role="row"]');
		if (rows.length === 0) return false;
		var last = rows[rows.length - 1];
		last.scrollIntoView({block: 'end'});
		var rect = last.getBoundingClientRect();
		var opts = {
			bubbles: true,
			clientX: rect.left + rect.width / 2,
			clientY: rect.top + rect.height / 2
		};
		last.dispatchEvent(new MouseEvent('mouseover', opts));
		last.dispatchEvent(new MouseEvent('mousemove', opts));
		return true;
	})()`

	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	utils.Pause(ctx, 700*time.Millisecond)
	return nil
}
