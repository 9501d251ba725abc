package scenario

import (
	"context"
	"time"
)

// Page is one player's view of the game.
//
// Every method blocks until its condition holds, the implementation's own
// operation timeout expires, or ctx is done.
type Page interface {
	// Navigate loads url.
	Navigate(ctx context.Context, url string) error

	// ClickButton activates the button whose accessible name is name.
	ClickButton(ctx context.Context, name string) error

	// WaitVisible waits for the element matching selector to be visible.
	WaitVisible(ctx context.Context, selector string) error

	// Text returns the rendered text of the element matching selector.
	Text(ctx context.Context, selector string) (string, error)

	// Fill replaces the value of the input matching selector.
	Fill(ctx context.Context, selector, value string) error

	// WaitText waits for text to appear anywhere in the page.
	WaitText(ctx context.Context, text string) error

	// WaitFunc waits for the JavaScript expression to be truthy.
	WaitFunc(ctx context.Context, expr string) error

	// Eval returns the value of the JavaScript expression.
	Eval(ctx context.Context, expr string) (any, error)

	// Settle waits for the DOM to stay unchanged for quiet.
	Settle(ctx context.Context, quiet time.Duration) error

	// Screenshot captures the viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}
