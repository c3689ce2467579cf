// Package headless renders pages with headless Chrome for targets whose
// markup is built client-side.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/R41CY/movie-scraper/internal/engine"
)

// ErrDisabled indicates rendering has been disabled via configuration.
var ErrDisabled = errors.New("headless renderer disabled")

// Config controls the renderer.
type Config struct {
	UserAgent   string
	MaxParallel int
	NavTimeout  time.Duration
	DomainQPS   float64
}

// Renderer drives a shared headless browser, one tab per render, bounded
// by its own semaphore and per-domain QPS budget.
type Renderer struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
	sem             chan struct{}
	timeout         time.Duration
	domainQPS       float64
	domainLimiters  sync.Map
}

// New warms up a browser and returns a Renderer.
func New(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if cfg.MaxParallel <= 0 {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.NavTimeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		allocatorCancel()
		browserCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Renderer{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
		sem:             make(chan struct{}, cfg.MaxParallel),
		timeout:         timeout,
		domainQPS:       cfg.DomainQPS,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *Renderer) Close() {
	if r == nil {
		return
	}
	r.browserCancel()
	r.allocatorCancel()
}

// Render navigates to the URL with JavaScript enabled and returns the DOM
// snapshot after the document is ready.
func (r *Renderer) Render(ctx context.Context, rawURL string) (engine.Response, error) {
	if r == nil {
		return engine.Response{}, ErrDisabled
	}

	select {
	case <-ctx.Done():
		return engine.Response{}, fmt.Errorf("render slot: %w", ctx.Err())
	case r.sem <- struct{}{}:
	}
	defer func() { <-r.sem }()

	if err := r.waitDomainBudget(ctx, rawURL); err != nil {
		return engine.Response{}, fmt.Errorf("render rate limit: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTask()

	var (
		statusMu sync.Mutex
		status   = http.StatusOK
	)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		statusMu.Lock()
		status = int(resp.Response.Status)
		statusMu.Unlock()
	})

	var html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return engine.Response{}, fmt.Errorf("chromedp run: %w", err)
	}

	statusMu.Lock()
	defer statusMu.Unlock()
	return engine.Response{
		StatusCode: status,
		Body:       []byte(html),
	}, nil
}

func (r *Renderer) waitDomainBudget(ctx context.Context, rawURL string) error {
	if r.domainQPS <= 0 {
		return nil
	}
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	limiterAny, _ := r.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(r.domainQPS), 1))
	limiter, ok := limiterAny.(*rate.Limiter)
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
