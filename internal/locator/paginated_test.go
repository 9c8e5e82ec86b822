package locator

import (
	"testing"

	"github.com/pagemark/pagemark/internal/page"
)

func TestIsPaginated(t *testing.T) {
	tests := []struct {
		name string
		sig  page.Signals
		want bool
	}{
		{
			name: "plain page",
			sig:  page.Signals{URL: "https://example.com/article"},
			want: false,
		},
		{
			name: "pdf url suffix",
			sig:  page.Signals{URL: "https://example.com/report.pdf"},
			want: true,
		},
		{
			name: "pdf url suffix uppercase with query",
			sig:  page.Signals{URL: "https://example.com/Report.PDF?page=2"},
			want: true,
		},
		{
			name: "query mentioning pdf is not a signal",
			sig:  page.Signals{URL: "https://example.com/search?q=report.pdf"},
			want: false,
		},
		{
			name: "pdf content type",
			sig:  page.Signals{URL: "https://example.com/doc", ContentType: "application/pdf"},
			want: true,
		},
		{
			name: "plugin embed",
			sig:  page.Signals{URL: "https://example.com/doc", HasPluginEmbed: true},
			want: true,
		},
		{
			name: "viewer global",
			sig:  page.Signals{URL: "https://example.com/doc", HasViewerGlobal: true},
			want: true,
		},
		{
			name: "viewer container",
			sig:  page.Signals{URL: "https://example.com/doc", HasViewerContainer: true},
			want: true,
		},
		{
			name: "any single signal suffices",
			sig:  page.Signals{HasViewerContainer: true},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPaginated(tt.sig); got != tt.want {
				t.Errorf("IsPaginated(%+v) = %v, want %v", tt.sig, got, tt.want)
			}
		})
	}
}
