package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// Default ChromeSession settings.
const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultUserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Options configures a ChromeSession.
type Options struct {
	// ExecPath is the browser binary. Empty uses chromedp's lookup.
	ExecPath string
	// Headless runs the browser without a window. Challenges can only be
	// cleared by hand in a visible browser.
	Headless  bool
	UserAgent string

	// HomeURL is visited on Acquire to establish cookies.
	HomeURL string
	// BaseState is the searchQueryState every search is built from.
	BaseState State

	// BrowserInitWait is the pause after the warm-up navigation.
	BrowserInitWait time.Duration
	// PageLoadWait is the pause after navigating to a detail page.
	PageLoadWait      time.Duration
	NavigationTimeout time.Duration
	Clearance         Clearance
}

// ChromeSession is a Session backed by a single chromedp browser tab.
type ChromeSession struct {
	opts   Options
	logger *slog.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	requestID     int
}

// ChromeOption configures a ChromeSession.
type ChromeOption func(*ChromeSession)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(s *ChromeSession) {
		s.logger = logger
	}
}

// NewChromeSession creates a session. No browser is started until Acquire.
func NewChromeSession(opts Options, options ...ChromeOption) *ChromeSession {
	if opts.HomeURL == "" {
		opts.HomeURL = model.BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	s := &ChromeSession{opts: opts}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Acquire starts the browser, warms it up on the home page and waits for
// any challenge there to clear.
func (s *ChromeSession) Acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx != nil {
		return nil
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(s.opts.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	if s.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.opts.ExecPath))
	}

	// The browser outlives ctx; it is bound to Release instead.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	s.browserCtx, s.cancelAlloc, s.cancelBrowser = browserCtx, cancelAlloc, cancelBrowser

	s.logger.Info("starting browser", "headless", s.opts.Headless, "home", s.opts.HomeURL)

	// The first Run allocates the browser and must not carry a deadline.
	if err := chromedp.Run(browserCtx); err != nil {
		s.releaseLocked()
		return fmt.Errorf("%w: start browser: %w", ErrFetch, err)
	}

	if err := s.navigate(ctx, s.opts.HomeURL, s.opts.BrowserInitWait); err != nil {
		s.releaseLocked()
		return err
	}

	present, err := s.challengePresent(ctx)
	if err != nil {
		s.releaseLocked()
		return err
	}
	if present {
		s.logger.Warn("challenge on home page, waiting for it to clear",
			"attempts", s.opts.Clearance.Attempts,
			"interval", s.opts.Clearance.Interval,
		)
		if err := s.opts.Clearance.Await(ctx, s.challengePresent); err != nil {
			s.releaseLocked()
			return err
		}
	}
	return nil
}

// Release closes the browser.
func (s *ChromeSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	return nil
}

func (s *ChromeSession) releaseLocked() {
	if s.browserCtx == nil {
		return
	}
	_ = chromedp.Cancel(s.browserCtx) //nolint:errcheck // best-effort shutdown
	s.cancelBrowser()
	s.cancelAlloc()
	s.browserCtx, s.cancelBrowser, s.cancelAlloc = nil, nil, nil
	s.logger.Info("browser closed")
}

// Search issues the search API call from inside the page so it carries the
// session's cookies.
func (s *ChromeSession) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx == nil {
		return SearchPage{}, ErrNotAcquired
	}

	s.requestID++
	body, err := NewSearchBody(s.opts.BaseState, req, s.requestID)
	if err != nil {
		return SearchPage{}, err
	}

	status, respBody, err := s.evaluateFetch(ctx, body)
	if err != nil {
		return SearchPage{}, err
	}
	page, err := DecodeSearchResponse(status, respBody)
	if err != nil {
		return SearchPage{}, err
	}

	if page.Status == model.StatusChallenge && !s.opts.Headless && s.opts.Clearance.Attempts > 0 {
		s.logger.Warn("challenge on search, waiting for it to clear", "page", req.Page)
		if err := s.navigate(ctx, s.opts.HomeURL, s.opts.BrowserInitWait); err != nil {
			return SearchPage{}, err
		}
		if err := s.opts.Clearance.Await(ctx, s.challengePresent); err != nil {
			return page, nil //nolint:nilerr // reported through Status
		}
		status, respBody, err = s.evaluateFetch(ctx, body)
		if err != nil {
			return SearchPage{}, err
		}
		return DecodeSearchResponse(status, respBody)
	}
	return page, nil
}

// Detail navigates to url and returns the rendered page.
func (s *ChromeSession) Detail(ctx context.Context, url string) (DetailPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx == nil {
		return DetailPage{}, ErrNotAcquired
	}

	if err := s.navigate(ctx, url, s.opts.PageLoadWait); err != nil {
		return DetailPage{}, err
	}

	page, err := s.capture(ctx, url)
	if err != nil {
		return DetailPage{}, err
	}
	if page.Status == model.StatusChallenge && !s.opts.Headless && s.opts.Clearance.Attempts > 0 {
		s.logger.Warn("challenge on detail page, waiting for it to clear", "url", url)
		if err := s.opts.Clearance.Await(ctx, s.challengePresent); err != nil {
			return page, nil //nolint:nilerr // reported through Status
		}
		return s.capture(ctx, url)
	}
	return page, nil
}

// run executes actions on the browser tab under ctx's cancellation and
// the navigation timeout.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return nil
}

func (s *ChromeSession) navigate(ctx context.Context, url string, wait time.Duration) error {
	actions := []chromedp.Action{chromedp.Navigate(url)}
	if wait > 0 {
		actions = append(actions, chromedp.Sleep(wait))
	}
	return s.run(ctx, actions...)
}

func (s *ChromeSession) capture(ctx context.Context, url string) (DetailPage, error) {
	page := DetailPage{URL: url, Status: model.StatusOK}
	if err := s.run(ctx,
		chromedp.Location(&page.FinalURL),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	); err != nil {
		return DetailPage{}, err
	}
	if DetectChallenge(page.HTML) {
		page.Status = model.StatusChallenge
	}
	return page, nil
}

func (s *ChromeSession) challengePresent(ctx context.Context) (bool, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return false, err
	}
	return DetectChallenge(html), nil
}

// fetchResult is what fetchScript resolves to.
type fetchResult struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

const fetchScript = `(async () => {
	const resp = await fetch(%s, {
		method: "PUT",
		credentials: "include",
		headers: {"Content-Type": "application/json"},
		body: %s,
	});
	return {status: resp.status, body: await resp.text()};
})()`

func (s *ChromeSession) evaluateFetch(ctx context.Context, body []byte) (int, []byte, error) {
	endpoint, err := json.Marshal(model.BaseURL + SearchEndpoint)
	if err != nil {
		return 0, nil, err
	}
	payload, err := json.Marshal(string(body))
	if err != nil {
		return 0, nil, err
	}
	script := fmt.Sprintf(fetchScript, endpoint, payload)

	var res fetchResult
	if err := s.run(ctx, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	})); err != nil {
		return 0, nil, err
	}
	return res.Status, []byte(res.Body), nil
}

var _ Session = (*ChromeSession)(nil)
