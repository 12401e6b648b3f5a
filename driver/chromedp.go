package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
)

// defaultNavigateTimeout bounds how long OpenSession waits for the browser
// to launch and the first navigation to land.
const defaultNavigateTimeout = 30 * time.Second

// ChromeDriver implements Driver on top of chromedp. Each OpenSession call
// launches an independent Chrome process; sessions do not share state.
type ChromeDriver struct {
	chromeBinary    string
	navigateTimeout time.Duration
	logger          logger.Logger
}

// ChromeOption configures a ChromeDriver.
type ChromeOption func(*ChromeDriver)

// WithChromeBinary points the driver at a specific Chrome executable instead
// of relying on lookup in PATH.
func WithChromeBinary(path string) ChromeOption {
	return func(d *ChromeDriver) {
		d.chromeBinary = path
	}
}

// WithNavigateTimeout overrides the launch-and-navigate timeout.
func WithNavigateTimeout(d time.Duration) ChromeOption {
	return func(cd *ChromeDriver) {
		cd.navigateTimeout = d
	}
}

// NewChromeDriver creates a chromedp-backed driver.
func NewChromeDriver(log logger.Logger, opts ...ChromeOption) *ChromeDriver {
	d := &ChromeDriver{
		navigateTimeout: defaultNavigateTimeout,
		logger:          log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OpenSession launches Chrome, navigates to url, and returns the session
// handle. The browser kind selects headless or headed mode.
func (d *ChromeDriver) OpenSession(ctx context.Context, url, browser string) (Session, error) {
	if url == "" {
		return nil, &DriverError{Op: "open session", Err: ErrEmptyURL}
	}

	var headless bool
	switch browser {
	case BrowserChrome:
		headless = false
	case BrowserHeadlessChrome:
		headless = true
	default:
		return nil, &DriverError{Op: "open session", Err: fmt.Errorf("%w: %s", ErrUnsupportedBrowser, browser)}
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-sync", true),
	}
	if headless {
		opts = append(opts, chromedp.Headless)
	}
	if d.chromeBinary != "" {
		opts = append(opts, chromedp.ExecPath(d.chromeBinary))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	d.logger.Info(ctx, "opening browser session", map[string]interface{}{
		"url":      url,
		"browser":  browser,
		"headless": headless,
	})

	// chromedp.Run launches the browser on first use. Bound the launch and
	// initial navigation so a missing binary or dead URL cannot hang the
	// runner indefinitely.
	errCh := make(chan error, 1)
	go func() {
		errCh <- chromedp.Run(browserCtx, chromedp.Navigate(url))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			cancel()
			return nil, &DriverError{Op: "open session", Err: err}
		}
	case <-time.After(d.navigateTimeout):
		cancel()
		return nil, &DriverError{Op: "open session", Err: context.DeadlineExceeded}
	case <-ctx.Done():
		cancel()
		return nil, &DriverError{Op: "open session", Err: ctx.Err()}
	}

	return &chromeSession{
		ctx:    browserCtx,
		cancel: cancel,
		logger: d.logger.WithField("browser", browser),
	}, nil
}

// chromeSession is the chromedp-backed Session. The command delay is applied
// locally before each call that follows SetCommandDelay, matching the pacing
// semantics of record-and-replay automation tools.
type chromeSession struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	delay  time.Duration
	closed bool
	logger logger.Logger
}

// pace blocks for the configured command delay, honoring ctx cancellation.
func (s *chromeSession) pace(ctx context.Context) error {
	s.mu.Lock()
	d := s.delay
	s.mu.Unlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chromeSession) active() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNoSession
	}
	return nil
}

// Maximize sets the browser window state to maximized via CDP.
func (s *chromeSession) Maximize(ctx context.Context) error {
	if err := s.active(); err != nil {
		return &DriverError{Op: "maximize", Err: err}
	}
	if err := s.pace(ctx); err != nil {
		return &DriverError{Op: "maximize", Err: err}
	}

	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		bounds := &cdpbrowser.Bounds{WindowState: cdpbrowser.WindowStateMaximized}
		return cdpbrowser.SetWindowBounds(windowID, bounds).Do(ctx)
	}))
	if err != nil {
		return &DriverError{Op: "maximize", Err: err}
	}
	return nil
}

// SetCommandDelay stores the pacing applied before subsequent session calls.
func (s *chromeSession) SetCommandDelay(ctx context.Context, d time.Duration) error {
	if err := s.active(); err != nil {
		return &DriverError{Op: "set command delay", Err: err}
	}

	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()

	s.logger.Debug(ctx, "command delay set", map[string]interface{}{
		"delay": d.String(),
	})
	return nil
}

// CaptureScreenshot returns a PNG of the current viewport.
func (s *chromeSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if err := s.active(); err != nil {
		return nil, &DriverError{Op: "capture screenshot", Err: err}
	}
	if err := s.pace(ctx); err != nil {
		return nil, &DriverError{Op: "capture screenshot", Err: err}
	}

	var buf []byte
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, &DriverError{Op: "capture screenshot", Err: err}
	}
	return buf, nil
}

// CurrentURL returns the page URL the session is on.
func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	if err := s.active(); err != nil {
		return "", &DriverError{Op: "current url", Err: err}
	}
	if err := s.pace(ctx); err != nil {
		return "", &DriverError{Op: "current url", Err: err}
	}

	var loc string
	if err := chromedp.Run(s.ctx, chromedp.Location(&loc)); err != nil {
		return "", &DriverError{Op: "current url", Err: err}
	}
	return loc, nil
}

// Close shuts down the browser process and releases the allocator.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &DriverError{Op: "close", Err: ErrNoSession}
	}
	s.closed = true
	s.mu.Unlock()

	// Graceful browser shutdown before the contexts are cancelled.
	chromedp.Cancel(s.ctx)
	s.cancel()
	return nil
}
