package suite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSuiteFile writes a suite YAML file into a temp directory and returns
// its path.
func writeSuiteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults folded into cases", func(t *testing.T) {
		path := writeSuiteFile(t, `
name: staff smoke
defaults:
  url: http://localhost:7272/html/staff_list.html
  browser: headless-chrome
  delay: 2s
cases:
  - name: staff list case
`)

		s, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "staff smoke", s.Name)
		require.Len(t, s.Cases, 1)

		c := s.Cases[0]
		assert.Equal(t, "staff list case", c.Name)
		assert.Equal(t, "http://localhost:7272/html/staff_list.html", c.Config.URL)
		assert.Equal(t, "headless-chrome", c.Config.Browser)
		assert.Equal(t, 2*time.Second, c.Config.Delay)
		assert.Equal(t, DefaultScreenshotFile, c.ScreenshotFile)
		assert.False(t, c.KeepOpen)
	})

	t.Run("case level overrides", func(t *testing.T) {
		path := writeSuiteFile(t, `
name: staff smoke
defaults:
  url: https://example.com
  browser: headless-chrome
  delay: 1s
cases:
  - name: override case
    url: https://example.org
    browser: chrome
    delay: 0s
    screenshot_file: staff.png
    keep_open: true
`)

		s, err := Load(path)
		require.NoError(t, err)
		require.Len(t, s.Cases, 1)

		c := s.Cases[0]
		assert.Equal(t, "https://example.org", c.Config.URL)
		assert.Equal(t, "chrome", c.Config.Browser)
		assert.Equal(t, time.Duration(0), c.Config.Delay)
		assert.Equal(t, "staff.png", c.ScreenshotFile)
		assert.True(t, c.KeepOpen)
	})

	t.Run("zero delay override of nonzero default", func(t *testing.T) {
		path := writeSuiteFile(t, `
defaults:
  url: https://example.com
  delay: 3s
cases:
  - name: fast case
    delay: 0s
`)

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), s.Cases[0].Config.Delay)
	})

	t.Run("missing url fails validation", func(t *testing.T) {
		path := writeSuiteFile(t, `
cases:
  - name: no url case
`)

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrEmptyURL)
	})

	t.Run("no cases", func(t *testing.T) {
		path := writeSuiteFile(t, `
defaults:
  url: https://example.com
`)

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrNoCases)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
