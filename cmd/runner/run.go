package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-smoke/database"
	"github.com/hairizuan-noorazman/browser-smoke/driver"
	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/report"
	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/runner"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
	"github.com/hairizuan-noorazman/browser-smoke/suite"
)

// logFileName is the runner log written into the output directory.
const logFileName = "run.log"

func newRunCmd() *cobra.Command {
	var (
		overrideURL     string
		overrideBrowser string
		overrideDelay   time.Duration
		caseFilter      string
		outputDir       string
		logLevel        string
		chromeBinary    string
		keepOpen        bool
		noRecord        bool
	)

	cmd := &cobra.Command{
		Use:   "run <suite-file>",
		Short: "Execute a smoke test suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if outputDir == "" {
				outputDir = cfg.GetString("output_dir")
			}
			if logLevel == "" {
				logLevel = cfg.GetString("log_level")
			}
			if flagDebug {
				logLevel = "debug"
			}
			if chromeBinary == "" {
				chromeBinary = cfg.GetString("chrome_binary")
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			logFile, err := os.Create(filepath.Join(outputDir, logFileName))
			if err != nil {
				return fmt.Errorf("failed to create log file: %w", err)
			}
			defer logFile.Close()

			log := logger.NewLogrusLoggerTo(io.MultiWriter(os.Stdout, logFile), logLevel)

			s, err := suite.Load(args[0])
			if err != nil {
				return err
			}
			if caseFilter != "" {
				s = s.Filter(caseFilter)
				if len(s.Cases) == 0 {
					return fmt.Errorf("no case named %q in suite", caseFilter)
				}
			}

			// Invocation flags beat suite file values
			for i := range s.Cases {
				if overrideURL != "" {
					s.Cases[i].Config.URL = overrideURL
				}
				if overrideBrowser != "" {
					s.Cases[i].Config.Browser = overrideBrowser
				}
				if cmd.Flags().Changed("delay") {
					s.Cases[i].Config.Delay = overrideDelay
				}
				if keepOpen {
					s.Cases[i].KeepOpen = true
				}
			}

			blob, err := newBlobStorage(outputDir)
			if err != nil {
				return err
			}

			opts := []runner.Option{}
			var artifactStore run.ArtifactStore
			var results []*runner.Result
			recording := cfg.GetBool("record") && !noRecord
			if recording {
				db, err := connectHistory()
				if err != nil {
					return err
				}
				runStore := run.NewMySQLStore(db, log)
				artifactStore = run.NewMySQLArtifactStore(db, log)
				opts = append(opts, runner.WithStores(runStore, artifactStore))
			}

			chrome := driver.NewChromeDriver(log, driver.WithChromeBinary(chromeBinary))
			r := runner.New(chrome, blob, log, opts...)

			results = r.ExecuteSuite(ctx, s)

			rep := report.Build(s.Name, results)
			if err := report.Write(ctx, blob, rep); err != nil {
				return err
			}

			if recording {
				recordLogArtifacts(ctx, log, artifactStore, results, filepath.Join(outputDir, logFileName))
			}

			printResults(rep)

			if !rep.AllPassed() {
				return fmt.Errorf("%d of %d cases failed", rep.Failed, rep.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&overrideURL, "url", "", "Override the target URL for every case")
	cmd.Flags().StringVar(&overrideBrowser, "browser", "", "Override the browser kind for every case")
	cmd.Flags().DurationVar(&overrideDelay, "delay", 0, "Override the inter-command delay for every case")
	cmd.Flags().StringVar(&caseFilter, "case", "", "Run only the named case")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for screenshots, logs, and reports")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&chromeBinary, "chrome-binary", "", "Path to the Chrome executable")
	cmd.Flags().BoolVar(&keepOpen, "keep-open", false, "Leave browser sessions open after each case")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Skip recording run history even when configured")

	return cmd
}

// newBlobStorage builds the artifact store, defaulting local storage into
// the output directory.
func newBlobStorage(outputDir string) (storage.BlobStorage, error) {
	storageCfg := storage.Config{
		Type:      cfg.GetString("storage.type"),
		BaseDir:   outputDir,
		Bucket:    cfg.GetString("storage.s3_bucket"),
		Region:    cfg.GetString("storage.s3_region"),
		KeyPrefix: cfg.GetString("storage.s3_key_prefix"),
	}
	return storage.NewBlobStorage(storageCfg)
}

// connectHistory opens the run history database. SQLite schemas are created
// in place; MySQL schemas are managed by the backend's migrate command.
func connectHistory() (*gorm.DB, error) {
	switch cfg.GetString("history.driver") {
	case "sqlite":
		db, err := database.ConnectSQLite(cfg.GetString("history.sqlite_path"))
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&run.Run{}, &run.Artifact{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil

	case "mysql":
		return database.Connect(database.Config{
			Host:     cfg.GetString("history.host"),
			Port:     cfg.GetInt("history.port"),
			User:     cfg.GetString("history.user"),
			Password: cfg.GetString("history.password"),
			Database: cfg.GetString("history.database"),
		})

	default:
		return nil, fmt.Errorf("unsupported history driver: %s", cfg.GetString("history.driver"))
	}
}

// recordLogArtifacts attaches the shared run log to every recorded run.
func recordLogArtifacts(ctx context.Context, log logger.Logger, store run.ArtifactStore, results []*runner.Result, logPath string) {
	info, err := os.Stat(logPath)
	if err != nil {
		log.Warn(ctx, "failed to stat run log", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, res := range results {
		if res.RunID == uuid.Nil {
			continue
		}
		a := &run.Artifact{
			RunID:        res.RunID,
			Kind:         run.ArtifactKindLog,
			ArtifactPath: logFileName,
			FileName:     logFileName,
			FileSize:     info.Size(),
			MimeType:     "text/plain",
		}
		if err := store.Create(ctx, a); err != nil {
			log.Warn(ctx, "failed to record log artifact", map[string]interface{}{
				"run_id": res.RunID,
				"error":  err.Error(),
			})
		}
	}
}

func printResults(rep report.Report) {
	if flagJSON {
		printJSON(rep)
		return
	}

	headers := []string{"CASE", "STATUS", "DURATION", "SCREENSHOT", "ERROR"}
	var rows [][]string
	for _, res := range rep.Results {
		screenshot := res.ScreenshotPath
		if screenshot == "" {
			screenshot = "-"
		}
		errMsg := res.Error
		if errMsg == "" {
			errMsg = "-"
		}
		rows = append(rows, []string{
			res.CaseName,
			string(res.Status),
			res.Duration.Round(time.Millisecond).String(),
			screenshot,
			errMsg,
		})
	}
	printTable(headers, rows)
	printMessage(fmt.Sprintf("%d passed, %d failed", rep.Passed, rep.Failed))
}
