package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/engine"
)

// Renderer produces a JS-rendered DOM snapshot for a URL.
type Renderer interface {
	Render(ctx context.Context, url string) (engine.Response, error)
}

// Promoting wraps a probe fetcher and escalates to a headless render when
// the detector flags the probe body as client-rendered. A failed render
// falls back to the probe body rather than failing the fetch.
type Promoting struct {
	probe    engine.Fetcher
	renderer Renderer
	detector *Detector
	logger   *zap.Logger
}

// NewPromoting composes the probe fetcher with an optional renderer.
func NewPromoting(probe engine.Fetcher, renderer Renderer, detector *Detector, logger *zap.Logger) *Promoting {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Promoting{
		probe:    probe,
		renderer: renderer,
		detector: detector,
		logger:   logger,
	}
}

// Fetch probes first and promotes when warranted.
func (p *Promoting) Fetch(ctx context.Context, target engine.FetchTarget) (engine.Response, error) {
	resp, err := p.probe.Fetch(ctx, target)
	if err != nil {
		return engine.Response{}, err
	}
	if p.renderer == nil || p.detector == nil || !p.detector.NeedsRender(resp.Body) {
		return resp, nil
	}

	rendered, rerr := p.renderer.Render(ctx, target.Key)
	if rerr != nil {
		p.logger.Warn("headless promotion failed, keeping probe body",
			zap.String("url", target.Key),
			zap.Error(rerr),
		)
		return resp, nil
	}
	p.logger.Debug("headless promotion applied", zap.String("url", target.Key))
	return rendered, nil
}
