package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagemark/pagemark/internal/domain"
	"github.com/pagemark/pagemark/internal/logger"
)

// KeyPrefixBookmarks is prepended to the exact page URL to form the storage
// key. The URL is not normalized; two spellings of one page are two lists.
const KeyPrefixBookmarks = "bookmarks:"

// BookmarkKey returns the storage key for a URL's bookmark list.
func BookmarkKey(url string) string {
	return KeyPrefixBookmarks + url
}

// Bookmarks performs the per-URL list operations over a KV collaborator.
//
// Every mutation is a full read-modify-write of one URL's list with no merge
// against writes that land in between: two concurrent saves for the same URL
// can lose one update. That weak consistency is a property of the design,
// kept deliberately (and pinned by tests), not an oversight.
type Bookmarks struct {
	kv  KV
	log logger.Logger
}

// NewBookmarks builds a bookmark store over kv.
func NewBookmarks(kv KV, log logger.Logger) *Bookmarks {
	if log == nil {
		log = logger.NewNop()
	}
	return &Bookmarks{kv: kv, log: log}
}

// List returns the stored bookmarks for url. A missing key or an
// undecodable stored value degrades to an empty list, never an error:
// corrupt storage must not break reads.
func (b *Bookmarks) List(ctx context.Context, url string) ([]domain.Bookmark, error) {
	data, err := b.kv.Get(ctx, BookmarkKey(url))
	if err != nil {
		return nil, fmt.Errorf("get bookmarks for %s: %w", url, err)
	}
	if data == nil {
		return []domain.Bookmark{}, nil
	}

	var list []domain.Bookmark
	if err := json.Unmarshal(data, &list); err != nil {
		b.log.Warn("stored bookmark list undecodable, treating as empty",
			logger.String("url", url),
			logger.Error(err))
		return []domain.Bookmark{}, nil
	}
	if list == nil {
		list = []domain.Bookmark{}
	}
	return list, nil
}

// Save appends a freshly built bookmark to url's list and persists the full
// list, returning the created record.
func (b *Bookmarks) Save(ctx context.Context, url, name string, position int) (domain.Bookmark, error) {
	list, err := b.List(ctx, url)
	if err != nil {
		return domain.Bookmark{}, err
	}

	bookmark := domain.NewBookmark(url, name, position)
	list = append(list, bookmark)

	if err := b.persist(ctx, url, list); err != nil {
		return domain.Bookmark{}, err
	}

	b.log.Info("bookmark saved",
		logger.String("url", url),
		logger.String("id", bookmark.ID),
		logger.Int("position", bookmark.ScrollPosition))
	return bookmark, nil
}

// Delete removes the bookmark with the given id from url's list and
// persists the filtered list. A missing id is a no-op, not an error.
func (b *Bookmarks) Delete(ctx context.Context, url, id string) error {
	list, err := b.List(ctx, url)
	if err != nil {
		return err
	}

	filtered := list[:0]
	for _, bm := range list {
		if bm.ID != id {
			filtered = append(filtered, bm)
		}
	}

	if err := b.persist(ctx, url, filtered); err != nil {
		return err
	}

	b.log.Info("bookmark deleted",
		logger.String("url", url),
		logger.String("id", id),
		logger.Int("remaining", len(filtered)))
	return nil
}

func (b *Bookmarks) persist(ctx context.Context, url string, list []domain.Bookmark) error {
	if list == nil {
		list = []domain.Bookmark{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal bookmarks for %s: %w", url, err)
	}
	if err := b.kv.Set(ctx, BookmarkKey(url), data); err != nil {
		return fmt.Errorf("persist bookmarks for %s: %w", url, err)
	}
	return nil
}
