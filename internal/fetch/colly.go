// Package fetch provides network fetchers implementing engine.Fetcher: a
// Colly-based probe fetcher, per-host politeness, and headless promotion
// for pages that require JavaScript rendering.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/R41CY/movie-scraper/internal/engine"
)

// CollyConfig controls collector behavior.
type CollyConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Colly executes single HTTP GETs through a cloned Colly collector.
type Colly struct {
	cfg        CollyConfig
	politeness *Politeness
	base       *colly.Collector
}

// NewColly builds a fetcher. The politeness limiter may be nil.
func NewColly(cfg CollyConfig, politeness *Politeness) *Colly {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newTransport())
	return &Colly{
		cfg:        cfg,
		politeness: politeness,
		base:       c,
	}
}

// Fetch performs one GET for the target. Non-2xx statuses are returned as
// *engine.HTTPError so the retry policy can classify them.
func (f *Colly) Fetch(ctx context.Context, target engine.FetchTarget) (engine.Response, error) {
	if f.politeness != nil {
		if err := f.politeness.Wait(ctx, target.Key); err != nil {
			return engine.Response{}, err
		}
	}

	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	collector.SetRequestTimeout(timeout)

	var (
		result   engine.Response
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		result = engine.Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			fetchErr = &engine.HTTPError{StatusCode: r.StatusCode, URL: target.Key}
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target.Key)
	}()

	select {
	case <-ctx.Done():
		return engine.Response{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return engine.Response{}, fetchErr
		}
		if err != nil {
			return engine.Response{}, fmt.Errorf("visit %s: %w", target.Key, err)
		}
		return result, nil
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
