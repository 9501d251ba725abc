// Package scenario drives the two-player multiplayer verification of the
// snake game: a host creates a room, a guest joins with the room code, the
// host starts the game, and the guest's roll control must be locked while
// it is the host's turn.
//
// The game itself is a black box reached through its DOM and page globals.
// The runner only needs a Page for each player; pkg/browser provides one
// backed by headless Chrome.
//
// Basic usage:
//
//	client, _ := browser.NewBrowserClient(browser.DefaultBrowserConfig())
//	defer client.Close()
//	host, _ := client.NewTab(ctx, "Host")
//	guest, _ := client.NewTab(ctx, "Peer")
//	report, err := scenario.Run(ctx, scenario.DefaultConfig(), host, guest, logger)
//
// Only the bounded waits for the guest's game instance and the settle steps,
// and the diagnostic read of the guest's page globals, are allowed to fail
// without ending the run. The locked-controls check is reported, not
// enforced, unless Config.Strict is set.
package scenario
