package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"mantis/internal/store"

	"github.com/spf13/cobra"
)

// resultsCmd lists recorded verdicts
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List recent manual test verdicts",
	RunE:  showResults,
}

func showResults(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	journal, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open verdict journal: %w", err)
	}
	defer journal.Close()

	verdicts, err := journal.Recent(resultsLimit)
	if err != nil {
		return err
	}
	if len(verdicts) == 0 {
		fmt.Println("No verdicts recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSUITE\tTEST\tOUTCOME\tREASON\tCAPTURE")
	for _, v := range verdicts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.FinishedAt.Local().Format("2006-01-02 15:04"),
			v.Suite, v.Test, v.Outcome, v.Reason, v.CapturePath)
	}
	return w.Flush()
}
