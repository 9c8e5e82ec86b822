package integration

import (
	"context"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/dispatch"
	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/locator"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/page"
	"github.com/pagemark/pagemark/internal/page/fake"
	"github.com/pagemark/pagemark/internal/store"
	"github.com/pagemark/pagemark/internal/store/memory"
)

type tabOpener struct {
	docs map[string]*fake.Document
}

func (o *tabOpener) OpenDocument(ctx context.Context, tabID string) (page.Document, error) {
	doc, ok := o.docs[tabID]
	if !ok {
		return nil, page.ErrInjectionDenied
	}
	return doc, nil
}

func newDispatcher(opener dispatch.PageOpener) *dispatch.Dispatcher {
	bookmarks := store.NewBookmarks(memory.New(), logger.NewNop())
	engine := locator.NewEngine(logger.NewNop(), locator.Options{
		SettleDelay: time.Millisecond,
		Sleep:       func(time.Duration) {},
	})
	return dispatch.New(bookmarks, engine, opener, time.Second, logger.NewNop())
}

// TestDocumentViewerRoundTrip walks the full life of a return point on a
// paginated document: capture the viewer position, save it, list it, restore
// it into a fresh tab, then delete it.
func TestDocumentViewerRoundTrip(t *testing.T) {
	ctx := context.Background()
	docURL := "https://ex.com/manual.pdf"

	reading := &fake.Document{
		Sig:    page.Signals{URL: docURL, HasViewerGlobal: true},
		Viewer: page.ViewerState{Found: true, CurrentPage: 3, ScrollTop: 150},
	}
	opener := &tabOpener{docs: map[string]*fake.Document{"tab-1": reading}}
	d := newDispatcher(opener)

	// Capture while reading page 3, 150px into it.
	capResp := d.Handle(ctx, dispatch.Request{Action: dispatch.ActionCapturePosition, TabID: "tab-1"})
	if capResp.Success == nil || !*capResp.Success || capResp.Position == nil {
		t.Fatalf("capture failed: %+v", capResp)
	}
	wantValue := domain.EncodePosition(3, 150)
	if *capResp.Position != wantValue {
		t.Fatalf("expected captured value %d, got %d", wantValue, *capResp.Position)
	}

	// Save the captured value.
	saveResp := d.Handle(ctx, dispatch.Request{
		Action: dispatch.ActionSaveBookmark,
		Data:   &dispatch.SaveData{Name: "Chapter 3", ScrollPosition: *capResp.Position, URL: docURL},
	})
	if saveResp.Bookmark == nil {
		t.Fatalf("save failed: %+v", saveResp)
	}

	// List it back.
	listResp := d.Handle(ctx, dispatch.Request{Action: dispatch.ActionGetBookmarks, URL: docURL})
	if listResp.Bookmarks == nil || len(*listResp.Bookmarks) != 1 {
		t.Fatalf("expected one bookmark, got %+v", listResp.Bookmarks)
	}
	saved := (*listResp.Bookmarks)[0]
	if saved.ScrollPosition != wantValue {
		t.Errorf("stored position %d, want %d", saved.ScrollPosition, wantValue)
	}

	// Restore into a freshly opened tab showing page 1.
	fresh := &fake.Document{
		Sig:    page.Signals{URL: docURL, HasViewerGlobal: true},
		Viewer: page.ViewerState{Found: true, CurrentPage: 1, ScrollTop: 0},
	}
	opener.docs["tab-2"] = fresh

	pos := saved.ScrollPosition
	restoreResp := d.Handle(ctx, dispatch.Request{
		Action:         dispatch.ActionRestorePosition,
		TabID:          "tab-2",
		ScrollPosition: &pos,
	})
	if restoreResp.Success == nil || !*restoreResp.Success {
		t.Fatalf("restore failed: %+v", restoreResp)
	}
	if len(fresh.ViewerPages) != 1 || fresh.ViewerPages[0] != 3 {
		t.Errorf("expected navigation to page 3, got %v", fresh.ViewerPages)
	}
	if len(fresh.ViewerScrolls) != 1 || fresh.ViewerScrolls[0] != 150 {
		t.Errorf("expected viewer scroll 150, got %v", fresh.ViewerScrolls)
	}

	// Delete and verify the list empties.
	delResp := d.Handle(ctx, dispatch.Request{
		Action:     dispatch.ActionDeleteBookmark,
		URL:        docURL,
		BookmarkID: saved.ID,
	})
	if delResp.Success == nil || !*delResp.Success {
		t.Fatalf("delete failed: %+v", delResp)
	}
	listResp = d.Handle(ctx, dispatch.Request{Action: dispatch.ActionGetBookmarks, URL: docURL})
	if listResp.Bookmarks == nil || len(*listResp.Bookmarks) != 0 {
		t.Errorf("expected empty list after delete, got %+v", listResp.Bookmarks)
	}
}

// TestPlainPageRoundTrip covers the long-article case: window scroll in,
// window scroll out, no viewer involved.
func TestPlainPageRoundTrip(t *testing.T) {
	ctx := context.Background()
	docURL := "https://ex.com/long-read"

	reading := &fake.Document{
		VP:  page.Viewport{ScrollY: 875, ClientHeight: 800, DocumentHeight: 6000},
		Sig: page.Signals{URL: docURL},
	}
	opener := &tabOpener{docs: map[string]*fake.Document{"tab-1": reading}}
	d := newDispatcher(opener)

	capResp := d.Handle(ctx, dispatch.Request{Action: dispatch.ActionCapturePosition, TabID: "tab-1"})
	if capResp.Position == nil || *capResp.Position != 875 {
		t.Fatalf("expected captured 875, got %+v", capResp)
	}

	fresh := &fake.Document{
		VP:  page.Viewport{ScrollY: 0, ClientHeight: 800, DocumentHeight: 6000},
		Sig: page.Signals{URL: docURL},
	}
	opener.docs["tab-2"] = fresh

	pos := *capResp.Position
	restoreResp := d.Handle(ctx, dispatch.Request{
		Action:         dispatch.ActionRestorePosition,
		TabID:          "tab-2",
		ScrollPosition: &pos,
	})
	if restoreResp.Success == nil || !*restoreResp.Success {
		t.Fatalf("restore failed: %+v", restoreResp)
	}
	if len(fresh.WindowScrolls) != 1 || fresh.WindowScrolls[0] != 875 {
		t.Errorf("expected window scrolled to 875, got %v", fresh.WindowScrolls)
	}
}

// TestUnscriptablePageDegrades pins the degradation pair: capture answers
// success with 0, restore answers a structured failure.
func TestUnscriptablePageDegrades(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(&tabOpener{docs: map[string]*fake.Document{}})

	capResp := d.Handle(ctx, dispatch.Request{Action: dispatch.ActionCapturePosition, TabID: "gone"})
	if capResp.Success == nil || !*capResp.Success {
		t.Fatalf("capture on a dead tab must degrade to success: %+v", capResp)
	}
	if capResp.Position == nil || *capResp.Position != 0 {
		t.Errorf("expected position 0, got %+v", capResp.Position)
	}

	pos := 500
	restoreResp := d.Handle(ctx, dispatch.Request{
		Action:         dispatch.ActionRestorePosition,
		TabID:          "gone",
		ScrollPosition: &pos,
	})
	if restoreResp.Success == nil || *restoreResp.Success {
		t.Fatalf("restore on a dead tab must fail: %+v", restoreResp)
	}
	if restoreResp.Error == "" {
		t.Error("expected an error message")
	}
}
