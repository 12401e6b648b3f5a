// Package driver abstracts the browser automation capability behind a small
// interface so the runner and its tests do not depend on a real browser.
package driver

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyURL is returned when OpenSession is called without a URL.
	ErrEmptyURL = errors.New("url is required")

	// ErrUnsupportedBrowser is returned when the browser kind is not known
	// to the driver.
	ErrUnsupportedBrowser = errors.New("unsupported browser")

	// ErrNoSession is returned when an operation is invoked on a closed
	// session.
	ErrNoSession = errors.New("no active session")
)

// Browser kinds accepted by the chromedp driver.
const (
	BrowserChrome         = "chrome"
	BrowserHeadlessChrome = "headless-chrome"
)

// DriverError wraps a failure inside the browser driver (launch, navigation,
// window manipulation). It is distinct from I/O failures writing artifacts.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return "driver: " + e.Op + ": " + e.Err.Error()
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// IsDriverError reports whether err is (or wraps) a DriverError.
func IsDriverError(err error) bool {
	var de *DriverError
	return errors.As(err, &de)
}

// Driver opens browser sessions.
type Driver interface {
	// OpenSession starts a browser of the given kind and navigates it to
	// url. The returned session owns the browser process until Close.
	OpenSession(ctx context.Context, url, browser string) (Session, error)
}

// Session is an opaque handle to one running browser instance.
type Session interface {
	// Maximize resizes the browser window to fill the screen.
	Maximize(ctx context.Context) error

	// SetCommandDelay sets the pause applied before each subsequent call
	// on this session. The value is forwarded unchanged.
	SetCommandDelay(ctx context.Context, d time.Duration) error

	// CaptureScreenshot returns a PNG image of the current page state.
	CaptureScreenshot(ctx context.Context) ([]byte, error)

	// CurrentURL returns the URL of the page the session is on.
	CurrentURL(ctx context.Context) (string, error)

	// Close shuts down the browser process. Closing twice is an error.
	Close() error
}

// SupportedBrowsers lists the browser kinds the chromedp driver accepts.
func SupportedBrowsers() []string {
	return []string{BrowserChrome, BrowserHeadlessChrome}
}
