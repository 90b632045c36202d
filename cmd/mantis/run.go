package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mantis/internal/capture"
	"mantis/internal/config"
	"mantis/internal/harness"
	"mantis/internal/store"
	"mantis/internal/suite"
	"mantis/internal/ux"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd executes the manual tests in a suite file or directory
var runCmd = &cobra.Command{
	Use:   "run [suite.yaml | directory]",
	Short: "Run manual tests and collect operator verdicts",
	Long: `Loads one suite file (or every suite in a directory) and presents its
tests to the operator one at a time. Each test blocks until the operator
passes it, fails it with a reason and screen capture, or the decision
timeout expires.

Example:
  mantis run suites/accessibility.yaml
  mantis run suites/ --timeout 5 --output-dir artifacts`,
	Args: cobra.ExactArgs(1),
	RunE: runSuites,
}

func runSuites(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	suites, err := loadSuites(args[0])
	if err != nil {
		return err
	}

	journal, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open verdict journal: %w", err)
	}
	defer journal.Close()

	styles := stylesFor(cfg)

	var failed int
	var total int
	for _, s := range suites {
		for _, test := range s.Tests {
			total++
			if err := runOne(cfg, journal, styles, s.Name, test); err != nil {
				failed++
				logger.Error("test concluded with failure",
					zap.String("suite", s.Name),
					zap.String("test", test.Name),
					zap.Error(err))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manual tests failed", failed, total)
	}
	logger.Info("all manual tests passed", zap.Int("count", total))
	return nil
}

// runOne shows a single test to the operator, consumes the verdict and
// records it in the journal.
func runOne(cfg *config.Config, journal *store.Journal, styles ux.Styles,
	suiteName string, test suite.Test) error {

	ctx := context.Background()

	capturer, cleanup, err := capturerFor(ctx, cfg, test)
	if err != nil {
		return err
	}
	defer cleanup()

	started := time.Now()
	await := harness.Start(harness.Options{
		TestName:     test.Name,
		HeaderText:   test.Header,
		Instructions: test.Instructions,
		Capturer:     capturer,
		Timeout:      cfg.Timeout(),
		Styles:       &styles,
		Logger:       logger,
	})
	res := await()

	capturePath, handleErr := harness.HandleResult(res, test.Name, cfg.OutputDir, logger)

	verdict := store.Verdict{
		Suite:       suiteName,
		Test:        test.Name,
		Outcome:     outcomeFor(res, handleErr),
		CapturePath: capturePath,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if res != nil {
		verdict.Reason = res.FailureDescription
	}
	if _, err := journal.Record(verdict); err != nil {
		logger.Warn("failed to record verdict", zap.Error(err))
	}

	return handleErr
}

func outcomeFor(res *harness.Result, handleErr error) string {
	switch {
	case res == nil || res.Err != nil:
		return store.OutcomeError
	case handleErr != nil:
		return store.OutcomeFail
	default:
		return store.OutcomePass
	}
}

// capturerFor picks the evidence source: the browser page for targeted
// tests, the primary display otherwise.
func capturerFor(ctx context.Context, cfg *config.Config, test suite.Test) (capture.Capturer, func(), error) {
	if test.Target == "" {
		return capture.NewDisplay(cfg.Capture.Display), func() {}, nil
	}

	page, err := capture.OpenPage(ctx, test.Target, cfg.BrowserTimeout())
	if err != nil {
		return nil, nil, fmt.Errorf("open target for %s: %w", test.Name, err)
	}
	return page, func() { _ = page.Close() }, nil
}

func loadSuites(path string) ([]*suite.Suite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		suites, err := suite.LoadDir(path)
		if err != nil {
			return nil, err
		}
		if len(suites) == 0 {
			return nil, fmt.Errorf("no suite files in %s", path)
		}
		return suites, nil
	}
	s, err := suite.Load(path)
	if err != nil {
		return nil, err
	}
	return []*suite.Suite{s}, nil
}

func stylesFor(cfg *config.Config) ux.Styles {
	switch cfg.Theme {
	case "dark":
		return ux.NewStyles(ux.DarkTheme())
	case "light":
		return ux.NewStyles(ux.LightTheme())
	default:
		return ux.DefaultStyles()
	}
}
