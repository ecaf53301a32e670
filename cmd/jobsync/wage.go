package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/wage"
)

var wageSalary float64

var wageCmd = &cobra.Command{
	Use:   "wage <title> <state>",
	Short: "Estimate a prevailing wage level for a job title and state",
	Long: `Estimates the OFLC prevailing wage level for a job title in a US state.
With --salary the predicted level for that salary is shown; otherwise the
suggested range for each level is printed. Requires wage_data in the config.`,
	Args: cobra.ExactArgs(2),
	RunE: runWage,
}

func init() {
	wageCmd.Flags().Float64Var(&wageSalary, "salary", 0, "annual salary to classify")
	rootCmd.AddCommand(wageCmd)
}

func runWage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.WageData == "" {
		fmt.Fprintln(os.Stderr, "wage_data is not set in the config")
		os.Exit(1)
	}

	estimator, err := wage.LoadWageFile(cfg.WageData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load wage table: %v\n", err)
		os.Exit(1)
	}

	title, state := args[0], args[1]

	if wageSalary > 0 {
		level := estimator.PredictLevel(title, state, wageSalary)
		lo, hi := estimator.SuggestedRange(title, state, level)
		fmt.Printf("%s in %s at $%s: level %d (typical range $%.0f - $%.0f)\n",
			title, state, strconv.FormatFloat(wageSalary, 'f', 0, 64), level, lo, hi)
		return nil
	}

	fmt.Printf("Suggested ranges for %s in %s:\n", title, state)
	for level := 1; level <= 4; level++ {
		lo, hi := estimator.SuggestedRange(title, state, level)
		fmt.Printf("  level %d: $%.0f - $%.0f\n", level, lo, hi)
	}
	return nil
}
