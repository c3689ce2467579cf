package fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/engine"
)

func TestDetector_SmallBodyNeedsRender(t *testing.T) {
	t.Parallel()
	d := NewDetector(2000, nil, nil)
	require.True(t, d.NeedsRender([]byte("<html></html>")))
}

func TestDetector_KeywordNeedsRender(t *testing.T) {
	t.Parallel()
	d := NewDetector(0, []string{"__NEXT_DATA__"}, nil)
	body := []byte(`<html><script id="__next_data__">{}</script></html>`)
	require.True(t, d.NeedsRender(body))
}

func TestDetector_MissingSelectorNeedsRender(t *testing.T) {
	t.Parallel()
	d := NewDetector(0, nil, []string{".ipc-metadata-list-summary-item"})
	shell := []byte(`<html><body><div id="root"></div></body></html>`)
	require.True(t, d.NeedsRender(shell))

	full := []byte(`<html><body><li class="ipc-metadata-list-summary-item">x</li>` +
		strings.Repeat("<p>filler</p>", 10) + `</body></html>`)
	require.False(t, d.NeedsRender(full))
}

func TestDetector_NilDetectorNeverPromotes(t *testing.T) {
	t.Parallel()
	var d *Detector
	require.False(t, d.NeedsRender([]byte("x")))
}

type stubFetcher struct {
	resp engine.Response
	err  error
}

func (s stubFetcher) Fetch(context.Context, engine.FetchTarget) (engine.Response, error) {
	return s.resp, s.err
}

type stubRenderer struct {
	resp   engine.Response
	err    error
	called bool
}

func (s *stubRenderer) Render(context.Context, string) (engine.Response, error) {
	s.called = true
	return s.resp, s.err
}

func TestPromoting_PromotesAppShell(t *testing.T) {
	t.Parallel()
	probe := stubFetcher{resp: engine.Response{StatusCode: 200, Body: []byte("<html></html>")}}
	renderer := &stubRenderer{resp: engine.Response{StatusCode: 200, Body: []byte("<html>rendered</html>")}}
	p := NewPromoting(probe, renderer, NewDetector(2000, nil, nil), zap.NewNop())

	resp, err := p.Fetch(context.Background(), engine.FetchTarget{Key: "https://example.com"})
	require.NoError(t, err)
	require.True(t, renderer.called)
	require.Equal(t, []byte("<html>rendered</html>"), resp.Body)
}

func TestPromoting_RenderFailureFallsBackToProbe(t *testing.T) {
	t.Parallel()
	probeBody := []byte("<html>probe</html>")
	probe := stubFetcher{resp: engine.Response{StatusCode: 200, Body: probeBody}}
	renderer := &stubRenderer{err: context.DeadlineExceeded}
	p := NewPromoting(probe, renderer, NewDetector(2000, nil, nil), zap.NewNop())

	resp, err := p.Fetch(context.Background(), engine.FetchTarget{Key: "https://example.com"})
	require.NoError(t, err)
	require.Equal(t, probeBody, resp.Body)
}

func TestPromoting_NoRendererPassesThrough(t *testing.T) {
	t.Parallel()
	probeBody := []byte("<html>probe</html>")
	probe := stubFetcher{resp: engine.Response{StatusCode: 200, Body: probeBody}}
	p := NewPromoting(probe, nil, NewDetector(2000, nil, nil), nil)

	resp, err := p.Fetch(context.Background(), engine.FetchTarget{Key: "https://example.com"})
	require.NoError(t, err)
	require.Equal(t, probeBody, resp.Body)
}
