// Package browser owns the DevTools connection and the per-tab attachment
// registry. It resolves tab identifiers to scriptable documents for the
// dispatcher and sweeps attachments whose tabs have gone away.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/page"
	"github.com/pagemark/pagemark/internal/page/cdp"
)

// Options select how the bridge reaches a browser. A non-empty CDPURL
// attaches to a running instance over DevTools; otherwise the bridge
// launches its own.
type Options struct {
	CDPURL     string
	Headless   bool
	ProfileDir string
	Patterns   cdp.Patterns
}

type tabEntry struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Bridge maintains one browser context plus a lazily grown tab registry.
// Attachments are cached: re-attaching to a tab on every request would reset
// its DevTools session.
type Bridge struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	patterns      cdp.Patterns
	log           logger.Logger

	mu   sync.RWMutex
	tabs map[string]*tabEntry
}

// New connects to (or launches) the browser and verifies the connection.
func New(opts Options, log logger.Logger) (*Bridge, error) {
	if log == nil {
		log = logger.NewNop()
	}

	b := &Bridge{
		patterns: opts.Patterns,
		log:      log,
		tabs:     make(map[string]*tabEntry),
	}

	if opts.CDPURL != "" {
		b.allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.CDPURL)
		log.Info("attaching to browser", logger.String("cdp_url", opts.CDPURL))
	} else {
		execOpts := chromedp.DefaultExecAllocatorOptions[:]
		if !opts.Headless {
			execOpts = append(execOpts, chromedp.Flag("headless", false))
		}
		if opts.ProfileDir != "" {
			execOpts = append(execOpts, chromedp.UserDataDir(opts.ProfileDir))
		}
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
		log.Info("launching browser", logger.String("profile_dir", opts.ProfileDir))
	}

	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("browser connection: %w", err)
	}
	return b, nil
}

// OpenDocument resolves tabID to a scriptable document. An empty tabID means
// the first open page. An unreachable tab is a page.ErrInjectionDenied: the
// caller's degradation path for unscriptable pages covers dead tabs too.
func (b *Bridge) OpenDocument(ctx context.Context, tabID string) (page.Document, error) {
	tabCtx, _, err := b.tabContext(tabID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", page.ErrInjectionDenied, err)
	}
	return cdp.NewDocument(tabCtx, b.patterns), nil
}

func (b *Bridge) tabContext(tabID string) (context.Context, string, error) {
	if tabID == "" {
		targets, err := b.ListTargets()
		if err != nil {
			return nil, "", fmt.Errorf("list targets: %w", err)
		}
		if len(targets) == 0 {
			return nil, "", fmt.Errorf("no tabs open")
		}
		tabID = string(targets[0].TargetID)
	}

	b.mu.RLock()
	if entry, ok := b.tabs[tabID]; ok && entry.ctx != nil {
		b.mu.RUnlock()
		return entry.ctx, tabID, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.tabs[tabID]; ok && entry.ctx != nil {
		return entry.ctx, tabID, nil
	}
	if b.browserCtx == nil {
		return nil, "", fmt.Errorf("no browser connection")
	}

	ctx, cancel := chromedp.NewContext(b.browserCtx,
		chromedp.WithTargetID(target.ID(tabID)),
	)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, "", fmt.Errorf("tab %s not found: %w", tabID, err)
	}

	b.tabs[tabID] = &tabEntry{ctx: ctx, cancel: cancel}
	return ctx, tabID, nil
}

// ListTargets returns the browser's open pages.
func (b *Bridge) ListTargets() ([]*target.Info, error) {
	if b.browserCtx == nil {
		return nil, fmt.Errorf("no browser connection")
	}
	var targets []*target.Info
	if err := chromedp.Run(b.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			targets, err = target.GetTargets().Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}

	pages := make([]*target.Info, 0, len(targets))
	for _, t := range targets {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	return pages, nil
}

// Ping verifies the DevTools connection is still answering.
func (b *Bridge) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := b.ListTargets()
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Sweep drops registry attachments whose tabs no longer exist. Run
// periodically; a closed tab otherwise keeps its DevTools session allocated
// until shutdown.
func (b *Bridge) Sweep(ctx context.Context) error {
	targets, err := b.ListTargets()
	if err != nil {
		return err
	}

	alive := make(map[string]bool, len(targets))
	for _, t := range targets {
		alive[string(t.TargetID)] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, entry := range b.tabs {
		if alive[id] {
			continue
		}
		if entry.cancel != nil {
			entry.cancel()
		}
		delete(b.tabs, id)
		b.log.Info("dropped stale tab attachment", logger.String("tab_id", id))
	}
	return nil
}

// TabCount reports the number of cached attachments.
func (b *Bridge) TabCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tabs)
}

// Close releases every tab attachment and the browser connection.
func (b *Bridge) Close() {
	b.mu.Lock()
	for id, entry := range b.tabs {
		if entry.cancel != nil {
			entry.cancel()
		}
		delete(b.tabs, id)
	}
	b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}
