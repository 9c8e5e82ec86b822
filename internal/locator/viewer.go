package locator

import (
	"context"
	"time"

	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/page"
)

// Position is a decoded position value handed to viewer integrations.
// Integrations with a page concept use Page/Offset; the rest apply Value
// as a raw scroll offset.
type Position struct {
	Value  int
	Page   int
	Offset int
}

// ViewerIntegration is one way a paged viewer can be embedded in a page.
// ReadPosition returns ok=false when the integration does not apply to this
// document; ApplyPosition returns false likewise. Ordinary probe failures
// are reported as ok=false, not as errors — only a page-level denial comes
// back as an error and aborts the whole operation.
type ViewerIntegration interface {
	Name() string
	ReadPosition(ctx context.Context, doc page.Document) (value int, ok bool, err error)
	ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error)
}

// defaultIntegrations returns the probe chain in its fixed priority order:
// viewer application object, plugin embed scrolling the host window, known
// container selectors, embedded sub-document, plain window scroll last.
func defaultIntegrations(settle time.Duration, smooth bool, sleep func(time.Duration)) []ViewerIntegration {
	if sleep == nil {
		sleep = time.Sleep
	}
	return []ViewerIntegration{
		&viewerAppIntegration{settle: settle, smooth: smooth, sleep: sleep},
		&pluginEmbedIntegration{smooth: smooth},
		&containerIntegration{smooth: smooth},
		&frameIntegration{},
		&windowIntegration{smooth: smooth},
	}
}

// viewerAppIntegration talks to a viewer application object that exposes a
// current page number and owns a scrollable container.
type viewerAppIntegration struct {
	settle time.Duration
	smooth bool
	sleep  func(time.Duration)
}

func (v *viewerAppIntegration) Name() string { return "viewer-app" }

func (v *viewerAppIntegration) ReadPosition(ctx context.Context, doc page.Document) (int, bool, error) {
	state, err := doc.ViewerState(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	if !state.Found {
		return 0, false, nil
	}
	if state.CurrentPage > 0 {
		return domain.EncodePosition(state.CurrentPage, int(state.ScrollTop)), true, nil
	}
	return int(state.ScrollTop), true, nil
}

func (v *viewerAppIntegration) ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error) {
	state, err := doc.ViewerState(ctx)
	if err != nil {
		return false, denialOnly(err)
	}
	if !state.Found {
		return false, nil
	}
	if pos.Page != state.CurrentPage {
		if err := doc.GoToViewerPage(ctx, pos.Page); err != nil {
			if denied := denialOnly(err); denied != nil {
				return false, denied
			}
			return false, nil
		}
		// Let the viewer lay out the target page before scrolling inside it.
		v.sleep(v.settle)
	}
	if err := doc.SetViewerScroll(ctx, float64(pos.Offset), v.smooth); err != nil {
		if denied := denialOnly(err); denied != nil {
			return false, denied
		}
		return false, nil
	}
	return true, nil
}

// pluginEmbedIntegration covers full-page plugin embeds where the host
// window itself scrolls over the paged content.
type pluginEmbedIntegration struct {
	smooth bool
}

func (p *pluginEmbedIntegration) Name() string { return "plugin-embed" }

func (p *pluginEmbedIntegration) ReadPosition(ctx context.Context, doc page.Document) (int, bool, error) {
	sig, err := doc.Signals(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	if !sig.HasPluginEmbed {
		return 0, false, nil
	}
	vp, err := doc.Viewport(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	return int(vp.ScrollY), true, nil
}

func (p *pluginEmbedIntegration) ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error) {
	sig, err := doc.Signals(ctx)
	if err != nil {
		return false, denialOnly(err)
	}
	if !sig.HasPluginEmbed {
		return false, nil
	}
	if err := doc.SetWindowScroll(ctx, float64(pos.Value), p.smooth); err != nil {
		return false, denialOnly(err)
	}
	return true, nil
}

// containerIntegration probes the known viewer container selectors.
type containerIntegration struct {
	smooth bool
}

func (c *containerIntegration) Name() string { return "container" }

func (c *containerIntegration) ReadPosition(ctx context.Context, doc page.Document) (int, bool, error) {
	cs, err := doc.ContainerScroll(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	if !cs.Found {
		return 0, false, nil
	}
	return int(cs.ScrollTop), true, nil
}

func (c *containerIntegration) ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error) {
	cs, err := doc.ContainerScroll(ctx)
	if err != nil {
		return false, denialOnly(err)
	}
	if !cs.Found {
		return false, nil
	}
	if err := doc.SetContainerScroll(ctx, float64(pos.Value), c.smooth); err != nil {
		return false, denialOnly(err)
	}
	return true, nil
}

// frameIntegration reads the scroll of an embedded same-origin
// sub-document. Cross-origin frames fail the probe and are skipped.
type frameIntegration struct{}

func (f *frameIntegration) Name() string { return "frame" }

func (f *frameIntegration) ReadPosition(ctx context.Context, doc page.Document) (int, bool, error) {
	fs, err := doc.FrameScroll(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	if !fs.Found {
		return 0, false, nil
	}
	return int(fs.ScrollY), true, nil
}

func (f *frameIntegration) ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error) {
	fs, err := doc.FrameScroll(ctx)
	if err != nil {
		return false, denialOnly(err)
	}
	if !fs.Found {
		return false, nil
	}
	if err := doc.SetFrameScroll(ctx, float64(pos.Value)); err != nil {
		return false, denialOnly(err)
	}
	return true, nil
}

// windowIntegration is the last-resort probe: plain window scroll. Apply
// always succeeds so a restore never falls off the end of the chain.
type windowIntegration struct {
	smooth bool
}

func (w *windowIntegration) Name() string { return "window" }

func (w *windowIntegration) ReadPosition(ctx context.Context, doc page.Document) (int, bool, error) {
	vp, err := doc.Viewport(ctx)
	if err != nil {
		return 0, false, denialOnly(err)
	}
	if vp.ScrollY <= 0 {
		return 0, false, nil
	}
	return int(vp.ScrollY), true, nil
}

func (w *windowIntegration) ApplyPosition(ctx context.Context, doc page.Document, pos Position) (bool, error) {
	if err := doc.SetWindowScroll(ctx, float64(pos.Value), w.smooth); err != nil {
		return false, denialOnly(err)
	}
	return true, nil
}
