package suite

import (
	"errors"
	"net/url"
	"time"
)

var (
	// ErrEmptyURL is returned when a case resolves to an empty target URL.
	ErrEmptyURL = errors.New("url is required")

	// ErrInvalidURL is returned when a case's target URL cannot be parsed.
	ErrInvalidURL = errors.New("invalid url")

	// ErrEmptyBrowser is returned when a case resolves to an empty browser kind.
	ErrEmptyBrowser = errors.New("browser is required")

	// ErrNegativeDelay is returned when the inter-command delay is negative.
	ErrNegativeDelay = errors.New("delay must not be negative")

	// ErrEmptyCaseName is returned when a case has no name.
	ErrEmptyCaseName = errors.New("case name is required")

	// ErrNoCases is returned when a suite file declares no cases.
	ErrNoCases = errors.New("suite has no cases")
)

// DefaultScreenshotFile is the screenshot file name used when a case does
// not name one.
const DefaultScreenshotFile = "custom_name.png"

// Config holds the three resolved parameters of a case: the target URL, the
// browser kind to drive, and the inter-command delay applied between driver
// calls. A Config is immutable once resolution (defaults, suite file,
// environment, flags) has finished.
type Config struct {
	URL     string        `json:"url" mapstructure:"url"`
	Browser string        `json:"browser" mapstructure:"browser"`
	Delay   time.Duration `json:"delay" mapstructure:"delay"`
}

// Validate checks that the config has usable values.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrEmptyURL
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}
	if c.Browser == "" {
		return ErrEmptyBrowser
	}
	if c.Delay < 0 {
		return ErrNegativeDelay
	}
	return nil
}

// Case is one composite action: a fixed sequence of driver calls (open,
// maximize, set delay, screenshot) parameterized by its Config.
type Case struct {
	Name           string `json:"name" mapstructure:"name"`
	Config         Config `json:"config" mapstructure:",squash"`
	ScreenshotFile string `json:"screenshot_file" mapstructure:"screenshot_file"`

	// KeepOpen leaves the browser session open after the case finishes,
	// for manual inspection of the final page state.
	KeepOpen bool `json:"keep_open" mapstructure:"keep_open"`
}

// Validate checks that the case has a name and a valid config.
func (c Case) Validate() error {
	if c.Name == "" {
		return ErrEmptyCaseName
	}
	return c.Config.Validate()
}

// Suite is a named collection of cases loaded from one suite file.
type Suite struct {
	Name  string `json:"name"`
	Cases []Case `json:"cases"`
}

// Validate checks the suite and all of its cases.
func (s Suite) Validate() error {
	if len(s.Cases) == 0 {
		return ErrNoCases
	}
	for _, c := range s.Cases {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns a copy of the suite containing only the named case. The
// returned suite has no cases if the name does not match.
func (s Suite) Filter(name string) Suite {
	out := Suite{Name: s.Name}
	for _, c := range s.Cases {
		if c.Name == name {
			out.Cases = append(out.Cases, c)
		}
	}
	return out
}
