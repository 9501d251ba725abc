package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/thesyncim/snakeverify/pkg/scenario"
)

var _ scenario.Page = (*Tab)(nil)

// Tab is one player's page. It implements scenario.Page.
type Tab struct {
	role    string
	page    *rod.Page
	timeout time.Duration
}

// Role returns the label the tab was opened with.
func (t *Tab) Role() string {
	return t.role
}

// Page returns the underlying Rod page.
func (t *Tab) Page() *rod.Page {
	return t.page
}

// p binds the page to ctx and the tab's operation timeout. The returned
// func releases the timeout and must run once the operation is done.
func (t *Tab) p(ctx context.Context) (*rod.Page, func()) {
	p := t.page.Context(ctx).Timeout(t.timeout)
	return p, func() { p.CancelTimeout() }
}

// wrap keeps the caller's deadline visible to errors.Is when Rod reports a
// cancelled operation with its own error.
func wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w (%v)", op, ctxErr, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Navigate loads url and waits for the load event.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	p, done := t.p(ctx)
	defer done()
	if err := p.Navigate(url); err != nil {
		return wrap(ctx, "navigate to "+url, err)
	}
	return wrap(ctx, "wait load", p.WaitLoad())
}

// buttonSelector covers every element exposed with the button role.
const buttonSelector = `button, [role=button], input[type=button], input[type=submit]`

// findButtonJS returns the first visible button whose accessible name equals
// name, falling back to the first whose name contains it ignoring case.
// Returns null while none matches so Rod keeps polling.
const findButtonJS = `(selector, name) => {
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const label = (el) => norm(el.getAttribute('aria-label')) || norm(el.innerText) || norm(el.value);
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		const style = getComputedStyle(el);
		return r.width > 0 && r.height > 0 && style.visibility !== 'hidden';
	};
	const want = norm(name);
	const candidates = Array.from(document.querySelectorAll(selector)).filter(visible);
	return candidates.find((el) => label(el) === want) ||
		candidates.find((el) => label(el).toLowerCase().includes(want.toLowerCase())) ||
		null;
}`

// ClickButton clicks the visible button whose accessible name is name,
// waiting for one to appear. An exact name match wins over a partial one.
func (t *Tab) ClickButton(ctx context.Context, name string) error {
	p, done := t.p(ctx)
	defer done()
	el, err := p.ElementByJS(rod.Eval(findButtonJS, buttonSelector, name))
	if err != nil {
		return wrap(ctx, fmt.Sprintf("find button %q", name), err)
	}
	return wrap(ctx, fmt.Sprintf("click button %q", name), el.Click(proto.InputMouseButtonLeft, 1))
}

// WaitVisible waits for selector to match a visible element.
func (t *Tab) WaitVisible(ctx context.Context, selector string) error {
	p, done := t.p(ctx)
	defer done()
	el, err := p.Element(selector)
	if err != nil {
		return wrap(ctx, "find "+selector, err)
	}
	return wrap(ctx, "wait visible "+selector, el.WaitVisible())
}

// Text returns the rendered text of selector.
func (t *Tab) Text(ctx context.Context, selector string) (string, error) {
	p, done := t.p(ctx)
	defer done()
	el, err := p.Element(selector)
	if err != nil {
		return "", wrap(ctx, "find "+selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", wrap(ctx, "text of "+selector, err)
	}
	return strings.TrimSpace(text), nil
}

// Fill replaces the input's value by selecting its content and typing.
func (t *Tab) Fill(ctx context.Context, selector, value string) error {
	p, done := t.p(ctx)
	defer done()
	el, err := p.Element(selector)
	if err != nil {
		return wrap(ctx, "find "+selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return wrap(ctx, "select "+selector, err)
	}
	return wrap(ctx, "input "+selector, el.Input(value))
}

// WaitText waits for text to be part of the page's rendered text.
func (t *Tab) WaitText(ctx context.Context, text string) error {
	p, done := t.p(ctx)
	defer done()
	err := p.Wait(rod.Eval(`(text) => !!document.body && document.body.innerText.includes(text)`, text))
	return wrap(ctx, fmt.Sprintf("wait text %q", text), err)
}

// WaitFunc waits for expr to be truthy.
func (t *Tab) WaitFunc(ctx context.Context, expr string) error {
	p, done := t.p(ctx)
	defer done()
	err := p.Wait(rod.Eval(`() => !!(` + expr + `)`))
	return wrap(ctx, "wait for "+expr, err)
}

// Eval returns the value of expr decoded from JSON.
func (t *Tab) Eval(ctx context.Context, expr string) (any, error) {
	p, done := t.p(ctx)
	defer done()
	res, err := p.Eval(`() => ` + expr)
	if err != nil {
		return nil, wrap(ctx, "eval "+expr, err)
	}
	if res.Value.Nil() {
		return nil, nil
	}
	return res.Value.Val(), nil
}

// Settle waits until the DOM has not changed for quiet.
func (t *Tab) Settle(ctx context.Context, quiet time.Duration) error {
	p, done := t.p(ctx)
	defer done()
	return wrap(ctx, "wait stable", p.WaitStable(quiet))
}

// Screenshot captures the viewport as PNG.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	p, done := t.p(ctx)
	defer done()
	buf, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, wrap(ctx, "screenshot", err)
	}
	return buf, nil
}
