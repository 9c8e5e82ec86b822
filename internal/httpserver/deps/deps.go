package deps

import (
	"context"
	"time"

	"github.com/pagemark/pagemark/internal/dispatch"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/store"
)

// Pinger is a readiness probe on a backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	Dispatcher     *dispatch.Dispatcher // protocol entry point
	Store          *store.Bookmarks     // direct store access for the REST aliases
	StorePing      Pinger               // readiness probe for the bookmark backend
	BrowserPing    Pinger               // readiness probe for the DevTools link (nil = headless-less mode)
	AuthToken      string               // empty = API open
	AllowedOrigins []string             // CORS allowlist, empty = extension-style "*"
	TrustProxy     bool                 // resolve client IPs from proxy headers
	RateLimitRPS   int                  // 0 = no rate limiting
}
