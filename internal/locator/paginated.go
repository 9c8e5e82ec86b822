package locator

import (
	"net/url"
	"strings"

	"github.com/pagemark/pagemark/internal/page"
)

// IsPaginated reports whether the document is rendered by a page-by-page
// viewer. Paged viewers are embedded through several incompatible
// mechanisms, so this is a deliberately permissive OR of independent
// signals; no single one is load-bearing.
func IsPaginated(sig page.Signals) bool {
	return hasPDFPath(sig.URL) ||
		strings.Contains(strings.ToLower(sig.ContentType), "application/pdf") ||
		sig.HasPluginEmbed ||
		sig.HasViewerGlobal ||
		sig.HasViewerContainer
}

func hasPDFPath(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		// Fall back to a raw suffix check; query strings and fragments
		// would defeat it, which the parsed path handles above.
		return strings.HasSuffix(strings.ToLower(raw), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
