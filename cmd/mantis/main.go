package main

import (
	"fmt"
	"os"

	"mantis/internal/config"
	"mantis/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	configPath string

	// run flags
	timeoutMinutes int
	outputDir      string

	// results flags
	resultsLimit int

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mantis",
	Short: "mantis - interactive manual test harness",
	Long: `mantis presents manual test instructions to a human operator and
blocks until the operator reaches a Pass/Fail verdict.

On failure the operator supplies a reason and mantis captures the screen
(or the browser page under test) as evidence. Every verdict is written
to a local journal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the harness version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mantis version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mantis %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.mantis/config.yaml)")

	runCmd.Flags().IntVar(&timeoutMinutes, "timeout", 0, "operator decision timeout in minutes (overrides config)")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for failure captures (overrides config)")

	resultsCmd.Flags().IntVar(&resultsLimit, "limit", 20, "number of verdicts to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the effective configuration: file, then env, then
// command-line flags.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if timeoutMinutes > 0 {
		cfg.TimeoutMinutes = timeoutMinutes
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
