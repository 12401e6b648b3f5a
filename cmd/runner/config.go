package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *viper.Viper

func initConfig() error {
	cfg = viper.New()
	cfg.SetConfigName(".browser-smoke")
	cfg.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		cfg.AddConfigPath(home)
	}
	cfg.AddConfigPath(".")

	cfg.SetDefault("output_dir", "./output")
	cfg.SetDefault("log_level", "info")
	cfg.SetDefault("record", false)
	cfg.SetDefault("chrome_binary", "")

	cfg.SetDefault("history.driver", "sqlite")
	cfg.SetDefault("history.sqlite_path", "./browser-smoke.db")
	cfg.SetDefault("history.host", "localhost")
	cfg.SetDefault("history.port", 3306)
	cfg.SetDefault("history.user", "root")
	cfg.SetDefault("history.password", "password")
	cfg.SetDefault("history.database", "browser_smoke")

	cfg.SetDefault("storage.type", "local")
	cfg.SetDefault("storage.s3_bucket", "")
	cfg.SetDefault("storage.s3_region", "us-east-1")
	cfg.SetDefault("storage.s3_key_prefix", "browser-smoke")

	cfg.SetEnvPrefix("BROWSER_SMOKE")
	cfg.AutomaticEnv()

	// Read config file (ignore if not found)
	cfg.ReadInConfig()

	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage runner configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file template at ~/.browser-smoke.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}

			configPath := filepath.Join(home, ".browser-smoke.yaml")

			if _, err := os.Stat(configPath); err == nil {
				printMessage("Config file already exists at " + configPath)
				return nil
			}

			template := `# Browser smoke runner configuration
output_dir: ./output
log_level: info

# Record run history in a database
record: false
history:
  driver: sqlite
  sqlite_path: ./browser-smoke.db

# Where screenshots and reports are written
storage:
  type: local
`
			if err := os.WriteFile(configPath, []byte(template), 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			printMessage("Config file created at " + configPath)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			printMessage(fmt.Sprintf("Output dir: %s", cfg.GetString("output_dir")))
			printMessage(fmt.Sprintf("Log level:  %s", cfg.GetString("log_level")))
			printMessage(fmt.Sprintf("Record:     %t", cfg.GetBool("record")))
			printMessage(fmt.Sprintf("History:    %s", cfg.GetString("history.driver")))
			printMessage(fmt.Sprintf("Storage:    %s", cfg.GetString("storage.type")))

			if cfgFile := cfg.ConfigFileUsed(); cfgFile != "" {
				printMessage(fmt.Sprintf("Config file: %s", cfgFile))
			} else {
				printMessage("Config file: (none)")
			}

			return nil
		},
	}
}
