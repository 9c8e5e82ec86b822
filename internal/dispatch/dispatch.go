// Package dispatch routes protocol requests from the UI process to the
// bookmark store and to the capture/restore engine. The dispatcher itself is
// stateless; every request is validated, executed, and answered with a
// structured result — no error here is fatal to the process.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/locator"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/page"
	"github.com/pagemark/pagemark/internal/store"
)

// Protocol actions.
const (
	ActionSaveBookmark    = "saveBookmark"
	ActionGetBookmarks    = "getBookmarks"
	ActionDeleteBookmark  = "deleteBookmark"
	ActionCapturePosition = "capturePosition"
	ActionRestorePosition = "restorePosition"
)

// SaveData is the payload of a saveBookmark request.
type SaveData struct {
	Name           string `json:"name"`
	ScrollPosition int    `json:"scrollPosition"`
	URL            string `json:"url"`
}

// Request is the protocol envelope.
type Request struct {
	Action         string    `json:"action"`
	URL            string    `json:"url,omitempty"`
	BookmarkID     string    `json:"bookmarkId,omitempty"`
	Data           *SaveData `json:"data,omitempty"`
	TabID          string    `json:"tabId,omitempty"`
	ScrollPosition *int      `json:"scrollPosition,omitempty"`
}

// Response covers every reply shape of the protocol. Absent fields are
// omitted, so a getBookmarks reply carries only the bookmarks array while a
// save reply carries success and the created record.
type Response struct {
	Success   *bool              `json:"success,omitempty"`
	Error     string             `json:"error,omitempty"`
	Bookmark  *domain.Bookmark   `json:"bookmark,omitempty"`
	Bookmarks *[]domain.Bookmark `json:"bookmarks,omitempty"`
	Position  *int               `json:"scrollPosition,omitempty"`
}

func succeed() Response {
	ok := true
	return Response{Success: &ok}
}

func fail(msg string) Response {
	ok := false
	return Response{Success: &ok, Error: msg}
}

// PageOpener resolves a tab identifier to a scriptable document. An empty
// tab ID means "the active tab".
type PageOpener interface {
	OpenDocument(ctx context.Context, tabID string) (page.Document, error)
}

// Dispatcher wires the protocol to its collaborators.
type Dispatcher struct {
	store   *store.Bookmarks
	engine  *locator.Engine
	pages   PageOpener
	timeout time.Duration
	log     logger.Logger
}

// New builds a dispatcher. pages may be nil when no browser is attached;
// position requests then fail with a structured error.
func New(st *store.Bookmarks, engine *locator.Engine, pages PageOpener, timeout time.Duration, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{store: st, engine: engine, pages: pages, timeout: timeout, log: log}
}

// Handle executes one request. Validation failures and unknown actions are
// answered without touching storage.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	switch req.Action {
	case "":
		return fail("Missing action")
	case ActionSaveBookmark:
		return d.saveBookmark(ctx, req)
	case ActionGetBookmarks:
		return d.getBookmarks(ctx, req)
	case ActionDeleteBookmark:
		return d.deleteBookmark(ctx, req)
	case ActionCapturePosition:
		return d.capturePosition(ctx, req)
	case ActionRestorePosition:
		return d.restorePosition(ctx, req)
	default:
		return fail("Unknown action")
	}
}

func (d *Dispatcher) saveBookmark(ctx context.Context, req Request) Response {
	if req.Data == nil || req.Data.URL == "" {
		return fail("Missing url")
	}

	bookmark, err := d.store.Save(ctx, req.Data.URL, req.Data.Name, req.Data.ScrollPosition)
	if err != nil {
		d.log.Error("save bookmark failed", logger.Error(err))
		return fail("Failed to save bookmark")
	}

	resp := succeed()
	resp.Bookmark = &bookmark
	return resp
}

func (d *Dispatcher) getBookmarks(ctx context.Context, req Request) Response {
	// A missing url is answered with an empty list, not an error.
	list := []domain.Bookmark{}
	if req.URL != "" {
		var err error
		list, err = d.store.List(ctx, req.URL)
		if err != nil {
			d.log.Error("list bookmarks failed", logger.Error(err))
			list = []domain.Bookmark{}
		}
	}
	return Response{Bookmarks: &list}
}

func (d *Dispatcher) deleteBookmark(ctx context.Context, req Request) Response {
	if req.URL == "" {
		return fail("Missing url")
	}
	if req.BookmarkID == "" {
		return fail("Missing bookmarkId")
	}

	if err := d.store.Delete(ctx, req.URL, req.BookmarkID); err != nil {
		d.log.Error("delete bookmark failed", logger.Error(err))
		return fail("Failed to delete bookmark")
	}
	return succeed()
}

func (d *Dispatcher) capturePosition(ctx context.Context, req Request) Response {
	if d.pages == nil {
		return fail("No browser attached")
	}

	ctx, cancel := d.bound(ctx)
	defer cancel()

	doc, err := d.pages.OpenDocument(ctx, req.TabID)
	if err != nil {
		return d.captureFallback(err)
	}

	value, err := d.engine.Capture(ctx, doc)
	if err != nil {
		return d.captureFallback(err)
	}

	resp := succeed()
	resp.Position = &value
	return resp
}

// captureFallback maps a denied page to "position unknown, use 0" — the raw
// platform error never reaches the user.
func (d *Dispatcher) captureFallback(err error) Response {
	if errors.Is(err, page.ErrInjectionDenied) || errors.Is(err, context.DeadlineExceeded) {
		d.log.Warn("capture denied, reporting position 0", logger.Error(err))
		zero := 0
		resp := succeed()
		resp.Position = &zero
		return resp
	}
	d.log.Error("capture failed", logger.Error(err))
	return fail("Failed to capture position")
}

func (d *Dispatcher) restorePosition(ctx context.Context, req Request) Response {
	if d.pages == nil {
		return fail("No browser attached")
	}
	if req.ScrollPosition == nil {
		return fail("Missing scrollPosition")
	}

	ctx, cancel := d.bound(ctx)
	defer cancel()

	doc, err := d.pages.OpenDocument(ctx, req.TabID)
	if err != nil {
		return d.restoreFailure(err)
	}

	if err := d.engine.Restore(ctx, doc, *req.ScrollPosition); err != nil {
		return d.restoreFailure(err)
	}
	return succeed()
}

func (d *Dispatcher) restoreFailure(err error) Response {
	if errors.Is(err, page.ErrRestoreDenied) || errors.Is(err, page.ErrInjectionDenied) ||
		errors.Is(err, context.DeadlineExceeded) {
		d.log.Warn("restore denied", logger.Error(err))
		return fail("Cannot restore position on this page")
	}
	d.log.Error("restore failed", logger.Error(err))
	return fail("Failed to restore position")
}

// bound caps the page round trip so a stuck evaluation surfaces as a denial
// instead of hanging the request.
func (d *Dispatcher) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}
