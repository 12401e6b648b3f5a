package driver

import (
	"context"
	"sync"
	"time"
)

// FakeDriver is a Driver implementation for tests. It records every call and
// can be primed to fail at any step, so runner behavior can be exercised
// without a real browser.
type FakeDriver struct {
	mu       sync.Mutex
	sessions []*FakeSession

	// OpenErr, when set, is returned by OpenSession.
	OpenErr error

	// Screenshot is the image returned by CaptureScreenshot. Defaults to a
	// small non-empty payload.
	Screenshot []byte

	// MaximizeErr, DelayErr, ScreenshotErr prime the corresponding session
	// calls to fail.
	MaximizeErr   error
	DelayErr      error
	ScreenshotErr error
}

// NewFakeDriver creates a fake driver with a non-empty default screenshot.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Screenshot: []byte("\x89PNG fake image"),
	}
}

// OpenSession validates its inputs the way the chromedp driver does and
// returns a new recording session.
func (d *FakeDriver) OpenSession(ctx context.Context, url, browser string) (Session, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	if url == "" {
		return nil, &DriverError{Op: "open session", Err: ErrEmptyURL}
	}
	switch browser {
	case BrowserChrome, BrowserHeadlessChrome:
	default:
		return nil, &DriverError{Op: "open session", Err: ErrUnsupportedBrowser}
	}

	s := &FakeSession{driver: d, url: url, browser: browser}
	s.record("open:" + url)

	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.mu.Unlock()
	return s, nil
}

// Sessions returns every session opened so far.
func (d *FakeDriver) Sessions() []*FakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*FakeSession, len(d.sessions))
	copy(out, d.sessions)
	return out
}

// FakeSession records the calls made against it.
type FakeSession struct {
	mu      sync.Mutex
	driver  *FakeDriver
	url     string
	browser string
	delay   time.Duration
	calls   []string
	closed  bool
}

func (s *FakeSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the ordered call log for this session.
func (s *FakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Delay returns the last value passed to SetCommandDelay.
func (s *FakeSession) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// Closed reports whether Close has been called.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Maximize records the call and returns the primed error, if any.
func (s *FakeSession) Maximize(ctx context.Context) error {
	if err := s.activeErr("maximize"); err != nil {
		return err
	}
	if s.driver.MaximizeErr != nil {
		return s.driver.MaximizeErr
	}
	s.record("maximize")
	return nil
}

// SetCommandDelay records the forwarded value unchanged.
func (s *FakeSession) SetCommandDelay(ctx context.Context, d time.Duration) error {
	if err := s.activeErr("set command delay"); err != nil {
		return err
	}
	if s.driver.DelayErr != nil {
		return s.driver.DelayErr
	}
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
	s.record("delay:" + d.String())
	return nil
}

// CaptureScreenshot returns the driver's primed screenshot bytes.
func (s *FakeSession) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	if err := s.activeErr("capture screenshot"); err != nil {
		return nil, err
	}
	if s.driver.ScreenshotErr != nil {
		return nil, s.driver.ScreenshotErr
	}
	s.record("screenshot")
	return s.driver.Screenshot, nil
}

// CurrentURL returns the URL the session was opened with.
func (s *FakeSession) CurrentURL(ctx context.Context) (string, error) {
	if err := s.activeErr("current url"); err != nil {
		return "", err
	}
	s.record("current-url")
	return s.url, nil
}

// Close marks the session closed.
func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &DriverError{Op: "close", Err: ErrNoSession}
	}
	s.closed = true
	s.calls = append(s.calls, "close")
	return nil
}

func (s *FakeSession) activeErr(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &DriverError{Op: op, Err: ErrNoSession}
	}
	return nil
}
