package suite

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// fileSuite mirrors the on-disk layout of a suite file before defaults are
// folded into each case.
type fileSuite struct {
	Name     string     `mapstructure:"name"`
	Defaults fileConfig `mapstructure:"defaults"`
	Cases    []fileCase `mapstructure:"cases"`
}

type fileConfig struct {
	URL     string        `mapstructure:"url"`
	Browser string        `mapstructure:"browser"`
	Delay   time.Duration `mapstructure:"delay"`
}

type fileCase struct {
	Name           string         `mapstructure:"name"`
	URL            string         `mapstructure:"url"`
	Browser        string         `mapstructure:"browser"`
	Delay          *time.Duration `mapstructure:"delay"`
	ScreenshotFile string         `mapstructure:"screenshot_file"`
	KeepOpen       bool           `mapstructure:"keep_open"`
}

// Load reads a YAML suite file, folds suite-level defaults into each case,
// and validates the result. Environment variables prefixed BROWSER_SMOKE
// override defaults (for example BROWSER_SMOKE_BROWSER).
func Load(path string) (Suite, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("defaults.browser", "headless-chrome")
	v.SetDefault("defaults.delay", "0s")

	v.SetEnvPrefix("BROWSER_SMOKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("defaults.url", "BROWSER_SMOKE_URL")
	v.BindEnv("defaults.browser", "BROWSER_SMOKE_BROWSER")
	v.BindEnv("defaults.delay", "BROWSER_SMOKE_DELAY")

	if err := v.ReadInConfig(); err != nil {
		return Suite{}, fmt.Errorf("failed to read suite file: %w", err)
	}

	var fs fileSuite
	if err := v.Unmarshal(&fs); err != nil {
		return Suite{}, fmt.Errorf("failed to parse suite file: %w", err)
	}

	s := Suite{Name: fs.Name}
	for _, fc := range fs.Cases {
		c := Case{
			Name: fc.Name,
			Config: Config{
				URL:     fs.Defaults.URL,
				Browser: fs.Defaults.Browser,
				Delay:   fs.Defaults.Delay,
			},
			ScreenshotFile: fc.ScreenshotFile,
			KeepOpen:       fc.KeepOpen,
		}
		if fc.URL != "" {
			c.Config.URL = fc.URL
		}
		if fc.Browser != "" {
			c.Config.Browser = fc.Browser
		}
		if fc.Delay != nil {
			c.Config.Delay = *fc.Delay
		}
		if c.ScreenshotFile == "" {
			c.ScreenshotFile = DefaultScreenshotFile
		}
		s.Cases = append(s.Cases, c)
	}

	if err := s.Validate(); err != nil {
		return Suite{}, err
	}

	return s, nil
}
