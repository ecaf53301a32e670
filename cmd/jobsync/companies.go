package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/store"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List target employers",
	Long:  "Prints the target employer directory along with each name's normalized matching form.",
	RunE:  runCompanies,
}

var companiesAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add target employers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompaniesAdd,
}

var companiesRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove target employers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompaniesRemove,
}

func init() {
	companiesCmd.AddCommand(companiesAddCmd)
	companiesCmd.AddCommand(companiesRemoveCmd)
	rootCmd.AddCommand(companiesCmd)
}

func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return store.NewSQLiteStore(cfg.Database)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	sqlStore, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	names, err := sqlStore.CompanyNames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list companies: %v\n", err)
		os.Exit(1)
	}

	if len(names) == 0 {
		fmt.Println("No target employers configured. Add one with: jobsync companies add <name>")
		return nil
	}

	fmt.Printf("%-30s %s\n", "Company", "Matches as")
	fmt.Println(strings.Repeat("─", 50))
	for _, name := range names {
		fmt.Printf("%-30s %s\n", name, identity.Normalize(name))
	}
	fmt.Printf("\nTotal: %d companies\n", len(names))
	return nil
}

func runCompaniesAdd(cmd *cobra.Command, args []string) error {
	sqlStore, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	for _, name := range args {
		if err := sqlStore.AddCompany(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to add %q: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("added %s\n", name)
	}
	return nil
}

func runCompaniesRemove(cmd *cobra.Command, args []string) error {
	sqlStore, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	for _, name := range args {
		if err := sqlStore.RemoveCompany(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove %q: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("removed %s\n", name)
	}
	return nil
}
