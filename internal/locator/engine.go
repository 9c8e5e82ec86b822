// Package locator decides which scrollable region represents the content of
// an arbitrary page, recognizes paginated-document viewers, and converts the
// current view to and from a single portable position value.
package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/page"
)

// DefaultSettleDelay is how long a restore waits after navigating the viewer
// to a new page before applying the intra-page offset.
const DefaultSettleDelay = 300 * time.Millisecond

// Options tune engine behavior. Zero values fall back to defaults.
type Options struct {
	// SettleDelay overrides DefaultSettleDelay.
	SettleDelay time.Duration

	// SmoothScroll animates scroll application where the page supports it.
	// Cosmetic only, not part of the positional contract.
	SmoothScroll bool

	// Sleep is swapped out in tests. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Engine captures and restores page positions. It holds no per-page state:
// every operation re-reads the document it is given, so it is safe to run
// concurrent operations against different pages.
type Engine struct {
	integrations []ViewerIntegration
	log          logger.Logger
}

// NewEngine builds an engine with the default viewer integration chain.
func NewEngine(log logger.Logger, opts Options) *Engine {
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Engine{
		integrations: defaultIntegrations(settle, opts.SmoothScroll, opts.Sleep),
		log:          log,
	}
}

// Capture reads the current position of doc as one encoded value.
// A page that cannot be scripted at all fails with page.ErrInjectionDenied;
// the caller treats that as "position unknown, use 0".
func (e *Engine) Capture(ctx context.Context, doc page.Document) (int, error) {
	sig, err := doc.Signals(ctx)
	if err != nil {
		return 0, fmt.Errorf("read page signals: %w", err)
	}

	if IsPaginated(sig) {
		return e.capturePaginated(ctx, doc)
	}

	region, err := FindScrollRegion(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("detect scroll region: %w", err)
	}
	if region != nil {
		e.log.Debug("captured region scroll",
			logger.Int("element", region.Element.Index),
			logger.Int("offset", int(region.Element.ScrollTop)))
		return int(region.Element.ScrollTop), nil
	}

	vp, err := doc.Viewport(ctx)
	if err != nil {
		return 0, fmt.Errorf("read viewport: %w", err)
	}
	return nonNegative(int(vp.ScrollY)), nil
}

func (e *Engine) capturePaginated(ctx context.Context, doc page.Document) (int, error) {
	for _, integ := range e.integrations {
		value, ok, err := integ.ReadPosition(ctx, doc)
		if err != nil {
			return 0, fmt.Errorf("probe %s: %w", integ.Name(), err)
		}
		if ok && value > 0 {
			e.log.Debug("captured paginated position",
				logger.String("integration", integ.Name()),
				logger.Int("value", value))
			return value, nil
		}
	}

	// No probe yielded a positive value; the window chain ends at 0.
	vp, err := doc.Viewport(ctx)
	if err != nil {
		return 0, fmt.Errorf("read viewport: %w", err)
	}
	return nonNegative(int(vp.ScrollY)), nil
}

// Restore applies a previously captured value to doc. The region is
// re-detected fresh (the page may have re-rendered since capture). Ordinary
// DOM errors never escape; only a page-level page.ErrRestoreDenied does.
func (e *Engine) Restore(ctx context.Context, doc page.Document, value int) error {
	if value < 0 {
		value = 0
	}

	sig, err := doc.Signals(ctx)
	if err != nil {
		return restoreErr(fmt.Errorf("read page signals: %w", err))
	}

	if IsPaginated(sig) {
		return e.restorePaginated(ctx, doc, value)
	}

	region, err := FindScrollRegion(ctx, doc)
	if err != nil {
		return restoreErr(fmt.Errorf("detect scroll region: %w", err))
	}
	if region != nil {
		e.log.Debug("restoring region scroll",
			logger.Int("element", region.Element.Index),
			logger.Int("value", value))
		if err := doc.SetElementScroll(ctx, region.Element.Index, float64(value), true); err != nil {
			return restoreErr(fmt.Errorf("set element scroll: %w", err))
		}
		return nil
	}

	if err := doc.SetWindowScroll(ctx, float64(value), true); err != nil {
		return restoreErr(fmt.Errorf("set window scroll: %w", err))
	}
	return nil
}

func (e *Engine) restorePaginated(ctx context.Context, doc page.Document, value int) error {
	pos := Position{Value: value}
	pos.Page, pos.Offset = domain.DecodePosition(value)

	for _, integ := range e.integrations {
		applied, err := integ.ApplyPosition(ctx, doc, pos)
		if err != nil {
			return restoreErr(fmt.Errorf("apply via %s: %w", integ.Name(), err))
		}
		if applied {
			e.log.Debug("restored paginated position",
				logger.String("integration", integ.Name()),
				logger.Int("page", pos.Page),
				logger.Int("offset", pos.Offset))
			return nil
		}
	}

	// Unreachable with the default chain: the window integration always
	// applies. Kept for custom chains.
	return nil
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// denialOnly filters probe errors: a page-level denial (or an expired
// round-trip deadline) aborts the operation, anything else is a skippable
// probe failure.
func denialOnly(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, page.ErrInjectionDenied),
		errors.Is(err, page.ErrRestoreDenied),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return err
	default:
		return nil
	}
}

// restoreErr rebrands an injection denial as the restore-side condition so
// callers see a single sentinel per operation kind.
func restoreErr(err error) error {
	if errors.Is(err, page.ErrInjectionDenied) {
		return fmt.Errorf("%w: %v", page.ErrRestoreDenied, err)
	}
	return err
}
