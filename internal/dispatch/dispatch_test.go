package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/locator"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/page"
	"github.com/pagemark/pagemark/internal/page/fake"
	"github.com/pagemark/pagemark/internal/store"
	"github.com/pagemark/pagemark/internal/store/memory"
)

type fakeOpener struct {
	doc *fake.Document
	err error
}

func (f *fakeOpener) OpenDocument(ctx context.Context, tabID string) (page.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func newTestDispatcher(opener PageOpener) *Dispatcher {
	st := store.NewBookmarks(memory.New(), logger.NewNop())
	engine := locator.NewEngine(logger.NewNop(), locator.Options{
		SettleDelay: time.Millisecond,
		Sleep:       func(time.Duration) {},
	})
	return New(st, engine, opener, time.Second, logger.NewNop())
}

func TestHandleSaveThenGet(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(nil)

	resp := d.Handle(ctx, Request{
		Action: ActionSaveBookmark,
		Data:   &SaveData{Name: "Intro", ScrollPosition: 1234, URL: "https://ex.com/a"},
	})
	if resp.Success == nil || !*resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Bookmark == nil {
		t.Fatal("expected created bookmark in response")
	}
	b := resp.Bookmark
	if b.Name != "Intro" || b.ScrollPosition != 1234 || b.URL != "https://ex.com/a" {
		t.Errorf("unexpected bookmark: %+v", b)
	}
	if b.ID == "" || b.Timestamp == "" {
		t.Errorf("expected generated id and timestamp: %+v", b)
	}

	got := d.Handle(ctx, Request{Action: ActionGetBookmarks, URL: "https://ex.com/a"})
	if got.Bookmarks == nil {
		t.Fatal("expected bookmarks array")
	}
	list := *got.Bookmarks
	if len(list) != 1 || list[0] != *b {
		t.Errorf("expected [%+v], got %+v", *b, list)
	}
}

func TestHandleGetBookmarksMissingURL(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{Action: ActionGetBookmarks})
	if resp.Bookmarks == nil {
		t.Fatal("missing url must still answer with an array")
	}
	if len(*resp.Bookmarks) != 0 {
		t.Errorf("expected empty array, got %+v", *resp.Bookmarks)
	}
	if resp.Error != "" {
		t.Errorf("missing url is not an error for getBookmarks: %q", resp.Error)
	}
}

func TestHandleSaveMissingURL(t *testing.T) {
	d := newTestDispatcher(nil)

	tests := []struct {
		name string
		req  Request
	}{
		{name: "no data", req: Request{Action: ActionSaveBookmark}},
		{name: "empty url", req: Request{Action: ActionSaveBookmark, Data: &SaveData{Name: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(context.Background(), tt.req)
			if resp.Success == nil || *resp.Success {
				t.Fatalf("expected failure, got %+v", resp)
			}
			if resp.Error != "Missing url" {
				t.Errorf("expected %q, got %q", "Missing url", resp.Error)
			}
		})
	}
}

func TestHandleDeleteValidation(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{Action: ActionDeleteBookmark, BookmarkID: "x"})
	if resp.Error != "Missing url" {
		t.Errorf("expected Missing url, got %q", resp.Error)
	}

	resp = d.Handle(context.Background(), Request{Action: ActionDeleteBookmark, URL: "https://ex.com"})
	if resp.Error != "Missing bookmarkId" {
		t.Errorf("expected Missing bookmarkId, got %q", resp.Error)
	}
}

func TestHandleDeleteNonexistentSucceeds(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{
		Action:     ActionDeleteBookmark,
		URL:        "https://ex.com/a",
		BookmarkID: "no-such-id",
	})
	if resp.Success == nil || !*resp.Success {
		t.Errorf("deleting a nonexistent id must report success, got %+v", resp)
	}
}

func TestHandleUnknownAction(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{Action: "explodeBookmarks"})
	if resp.Success == nil || *resp.Success {
		t.Fatalf("expected failure, got %+v", resp)
	}
	if resp.Error != "Unknown action" {
		t.Errorf("expected %q, got %q", "Unknown action", resp.Error)
	}
}

func TestHandleMissingAction(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{})
	if resp.Error != "Missing action" {
		t.Errorf("expected Missing action, got %q", resp.Error)
	}
}

func TestHandleCapturePosition(t *testing.T) {
	doc := &fake.Document{
		VP:  page.Viewport{ScrollY: 875, ClientHeight: 800, DocumentHeight: 4000},
		Sig: page.Signals{URL: "https://ex.com/long-read"},
	}
	d := newTestDispatcher(&fakeOpener{doc: doc})

	resp := d.Handle(context.Background(), Request{Action: ActionCapturePosition, TabID: "tab-1"})
	if resp.Success == nil || !*resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Position == nil || *resp.Position != 875 {
		t.Errorf("expected position 875, got %+v", resp.Position)
	}
}

func TestHandleCaptureDeniedReportsZero(t *testing.T) {
	d := newTestDispatcher(&fakeOpener{err: page.ErrInjectionDenied})

	resp := d.Handle(context.Background(), Request{Action: ActionCapturePosition})
	if resp.Success == nil || !*resp.Success {
		t.Fatalf("denied capture degrades to success with 0, got %+v", resp)
	}
	if resp.Position == nil || *resp.Position != 0 {
		t.Errorf("expected position 0, got %+v", resp.Position)
	}
}

func TestHandleRestorePosition(t *testing.T) {
	doc := &fake.Document{
		VP:  page.Viewport{ScrollY: 0, ClientHeight: 800, DocumentHeight: 4000},
		Sig: page.Signals{URL: "https://ex.com/long-read"},
	}
	d := newTestDispatcher(&fakeOpener{doc: doc})

	pos := 1500
	resp := d.Handle(context.Background(), Request{
		Action:         ActionRestorePosition,
		TabID:          "tab-1",
		ScrollPosition: &pos,
	})
	if resp.Success == nil || !*resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if len(doc.WindowScrolls) != 1 || doc.WindowScrolls[0] != 1500 {
		t.Errorf("expected window scrolled to 1500, got %v", doc.WindowScrolls)
	}
}

func TestHandleRestoreMissingPosition(t *testing.T) {
	d := newTestDispatcher(&fakeOpener{doc: &fake.Document{}})

	resp := d.Handle(context.Background(), Request{Action: ActionRestorePosition})
	if resp.Error != "Missing scrollPosition" {
		t.Errorf("expected Missing scrollPosition, got %q", resp.Error)
	}
}

func TestHandleRestoreDenied(t *testing.T) {
	d := newTestDispatcher(&fakeOpener{err: page.ErrInjectionDenied})

	pos := 10
	resp := d.Handle(context.Background(), Request{Action: ActionRestorePosition, ScrollPosition: &pos})
	if resp.Success == nil || *resp.Success {
		t.Fatalf("expected structured failure, got %+v", resp)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestHandlePositionWithoutBrowser(t *testing.T) {
	d := newTestDispatcher(nil)

	resp := d.Handle(context.Background(), Request{Action: ActionCapturePosition})
	if resp.Success == nil || *resp.Success {
		t.Fatalf("expected failure without a browser, got %+v", resp)
	}
}
