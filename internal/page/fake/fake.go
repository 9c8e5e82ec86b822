// Package fake provides an in-memory page.Document for heuristic tests.
package fake

import (
	"context"

	"github.com/pagemark/pagemark/internal/page"
)

// Document is a configurable stand-in for a live page. Zero value is an
// empty, unscrolled, non-paginated page. Mutations are recorded so tests can
// assert what a restore applied.
type Document struct {
	VP        page.Viewport
	Els       []page.ElementMetrics
	Sig       page.Signals
	Viewer    page.ViewerState
	Container page.ContainerScroll
	Frame     page.FrameScroll

	// Err, when set, is returned from every call to simulate a page that
	// cannot be scripted.
	Err error

	// ViewerErr fails only the viewer probes, leaving the rest of the page
	// reachable (cross-origin style partial failure).
	ViewerErr error

	WindowScrolls    []float64
	ElementScrolls   map[int]float64
	ViewerPages      []int
	ViewerScrolls    []float64
	ContainerScrolls []float64
	FrameScrolls     []float64
}

var _ page.Document = (*Document)(nil)

func (d *Document) Viewport(ctx context.Context) (page.Viewport, error) {
	return d.VP, d.Err
}

func (d *Document) Elements(ctx context.Context) ([]page.ElementMetrics, error) {
	return d.Els, d.Err
}

func (d *Document) Signals(ctx context.Context) (page.Signals, error) {
	return d.Sig, d.Err
}

func (d *Document) ViewerState(ctx context.Context) (page.ViewerState, error) {
	if d.Err != nil {
		return page.ViewerState{}, d.Err
	}
	return d.Viewer, d.ViewerErr
}

func (d *Document) GoToViewerPage(ctx context.Context, p int) error {
	if d.Err != nil {
		return d.Err
	}
	if d.ViewerErr != nil {
		return d.ViewerErr
	}
	d.ViewerPages = append(d.ViewerPages, p)
	d.Viewer.CurrentPage = p
	return nil
}

func (d *Document) SetViewerScroll(ctx context.Context, offset float64, smooth bool) error {
	if d.Err != nil {
		return d.Err
	}
	if d.ViewerErr != nil {
		return d.ViewerErr
	}
	d.ViewerScrolls = append(d.ViewerScrolls, offset)
	d.Viewer.ScrollTop = offset
	return nil
}

func (d *Document) ContainerScroll(ctx context.Context) (page.ContainerScroll, error) {
	return d.Container, d.Err
}

func (d *Document) SetContainerScroll(ctx context.Context, offset float64, smooth bool) error {
	if d.Err != nil {
		return d.Err
	}
	d.ContainerScrolls = append(d.ContainerScrolls, offset)
	d.Container.ScrollTop = offset
	return nil
}

func (d *Document) FrameScroll(ctx context.Context) (page.FrameScroll, error) {
	return d.Frame, d.Err
}

func (d *Document) SetFrameScroll(ctx context.Context, offset float64) error {
	if d.Err != nil {
		return d.Err
	}
	d.FrameScrolls = append(d.FrameScrolls, offset)
	d.Frame.ScrollY = offset
	return nil
}

func (d *Document) SetWindowScroll(ctx context.Context, offset float64, smooth bool) error {
	if d.Err != nil {
		return d.Err
	}
	d.WindowScrolls = append(d.WindowScrolls, offset)
	d.VP.ScrollY = offset
	return nil
}

func (d *Document) SetElementScroll(ctx context.Context, index int, offset float64, smooth bool) error {
	if d.Err != nil {
		return d.Err
	}
	if d.ElementScrolls == nil {
		d.ElementScrolls = make(map[int]float64)
	}
	d.ElementScrolls[index] = offset
	return nil
}
